package services

import (
	"context"
	"strings"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/core/order"
	"github.com/scienceol/sampletrack/pkg/core/sample"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const TrackingServiceName = "sampletrack.v1.TrackingService"

type Empty struct{}

// TrackingServer is the server API of TrackingService. Messages are the
// same structs the HTTP API exchanges, carried by the json codec.
type TrackingServer interface {
	CreateOrder(ctx context.Context, req *order.CreateOrderReq) (*order.OrderCreated, error)
	OrderStatus(ctx context.Context, req *order.OrderStatusReq) (*order.OrderStatusResp, error)
	SamplesToMake(ctx context.Context, req *Empty) (*sample.SamplesToMakeResp, error)
	ClaimSamples(ctx context.Context, req *sample.ClaimSamplesReq) (*sample.ClaimSamplesResp, error)
	LogQCResults(ctx context.Context, req *sample.QCResultsReq) (*sample.MessageResp, error)
	SamplesToShip(ctx context.Context, req *Empty) (*sample.SamplesToShipResp, error)
	RecordShipped(ctx context.Context, req *sample.SamplesShippedReq) (*sample.SamplesShippedResp, error)
	SampleStatus(ctx context.Context, req *sample.SampleStatusReq) (*sample.SampleStatusResp, error)
}

type TrackingService struct {
	orderSvc  order.Service
	sampleSvc sample.Service
}

func NewTrackingService(orderSvc order.Service, sampleSvc sample.Service) *TrackingService {
	return &TrackingService{orderSvc: orderSvc, sampleSvc: sampleSvc}
}

var _ TrackingServer = (*TrackingService)(nil)

func (s *TrackingService) CreateOrder(ctx context.Context, req *order.CreateOrderReq) (*order.OrderCreated, error) {
	resp, err := s.orderSvc.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Duplicated() {
		ids := make([]string, 0, len(resp.RepeatSampleUUIDs))
		for _, id := range resp.RepeatSampleUUIDs {
			ids = append(ids, id.String())
		}
		return nil, status.Errorf(codes.AlreadyExists, "%s: %s", code.SampleAlreadyExistErr, strings.Join(ids, ","))
	}
	return &order.OrderCreated{OrderUUID: resp.OrderUUID}, nil
}

func (s *TrackingService) OrderStatus(ctx context.Context, req *order.OrderStatusReq) (*order.OrderStatusResp, error) {
	return s.orderSvc.OrderStatus(ctx, req)
}

func (s *TrackingService) SamplesToMake(ctx context.Context, _ *Empty) (*sample.SamplesToMakeResp, error) {
	return s.sampleSvc.SamplesToMake(ctx)
}

func (s *TrackingService) ClaimSamples(ctx context.Context, req *sample.ClaimSamplesReq) (*sample.ClaimSamplesResp, error) {
	return s.sampleSvc.ClaimSamples(ctx, req)
}

func (s *TrackingService) LogQCResults(ctx context.Context, req *sample.QCResultsReq) (*sample.MessageResp, error) {
	return s.sampleSvc.LogQCResults(ctx, req)
}

func (s *TrackingService) SamplesToShip(ctx context.Context, _ *Empty) (*sample.SamplesToShipResp, error) {
	return s.sampleSvc.SamplesToShip(ctx)
}

func (s *TrackingService) RecordShipped(ctx context.Context, req *sample.SamplesShippedReq) (*sample.SamplesShippedResp, error) {
	return s.sampleSvc.RecordShipped(ctx, req)
}

func (s *TrackingService) SampleStatus(ctx context.Context, req *sample.SampleStatusReq) (*sample.SampleStatusResp, error) {
	return s.sampleSvc.SampleStatus(ctx, req)
}

func RegisterTrackingServer(s grpc.ServiceRegistrar, srv TrackingServer) {
	s.RegisterService(&TrackingServiceDesc, srv)
}

// unaryHandler adapts one typed method to the grpc.MethodDesc handler shape.
func unaryHandler[Req any, Resp any](method string, call func(TrackingServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decode %s request: %v", method, err)
		}
		if interceptor == nil {
			return call(srv.(TrackingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + TrackingServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TrackingServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var TrackingServiceDesc = grpc.ServiceDesc{
	ServiceName: TrackingServiceName,
	HandlerType: (*TrackingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: unaryHandler("CreateOrder", TrackingServer.CreateOrder)},
		{MethodName: "OrderStatus", Handler: unaryHandler("OrderStatus", TrackingServer.OrderStatus)},
		{MethodName: "SamplesToMake", Handler: unaryHandler("SamplesToMake", TrackingServer.SamplesToMake)},
		{MethodName: "ClaimSamples", Handler: unaryHandler("ClaimSamples", TrackingServer.ClaimSamples)},
		{MethodName: "LogQCResults", Handler: unaryHandler("LogQCResults", TrackingServer.LogQCResults)},
		{MethodName: "SamplesToShip", Handler: unaryHandler("SamplesToShip", TrackingServer.SamplesToShip)},
		{MethodName: "RecordShipped", Handler: unaryHandler("RecordShipped", TrackingServer.RecordShipped)},
		{MethodName: "SampleStatus", Handler: unaryHandler("SampleStatus", TrackingServer.SampleStatus)},
	},
	Streams: []grpc.StreamDesc{},
	// no compiled descriptor backs this service; requests use the json codec
	Metadata: "",
}
