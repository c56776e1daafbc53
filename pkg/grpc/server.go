package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/scienceol/sampletrack/pkg/core/order"
	"github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/grpc/services"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/utils"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	orderImpl "github.com/scienceol/sampletrack/pkg/core/order/order"
	sampleImpl "github.com/scienceol/sampletrack/pkg/core/sample/sample"
)

// NewGRPCServer builds a server exposing the tracking operations together
// with the standard health and reflection services.
func NewGRPCServer(orderSvc order.Service, sampleSvc sample.Service) *ggrpc.Server {
	s := ggrpc.NewServer(
		ggrpc.ChainUnaryInterceptor(UnaryLogInterceptor(), UnaryErrorInterceptor()),
	)
	services.RegisterTrackingServer(s, services.NewTrackingService(orderSvc, sampleSvc))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(services.TrackingServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	reflection.Register(s)
	return s
}

func NewServer(ctx context.Context, port int) (*ggrpc.Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	s := NewGRPCServer(orderImpl.New(), sampleImpl.New())

	utils.SafelyGo(func() {
		logger.Infof(ctx, "gRPC server starting on port %d", port)
		if err := s.Serve(lis); err != nil {
			logger.Errorf(ctx, "gRPC server error: %v", err)
		}
	}, func(err error) {
		logger.Errorf(ctx, "gRPC server panic: %+v", err)
	})

	return s, nil
}
