package grpc

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// skipLog returns true for infrastructure services polled by health checkers.
func skipLog(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/grpc.reflection.") ||
		strings.HasPrefix(fullMethod, "/grpc.health.")
}

// ToStatus converts a domain error into a grpc status. The detail carried by
// the error, if any, is appended to the message as JSON.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	c, msg, data := code.Parse(err)
	if data != nil {
		if raw, mErr := json.Marshal(data); mErr == nil {
			msg = msg + " " + string(raw)
		}
	}
	return status.Error(c.GRPCCode(), msg)
}

// UnaryErrorInterceptor maps returned errors to grpc status codes and turns
// handler panics into Internal errors.
func UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		panicErr := utils.SafelyRun(func() {
			resp, err = handler(ctx, req)
		})
		if panicErr != nil {
			logger.Errorf(ctx, "grpc handler panic err: %+v", panicErr)
			return nil, status.Error(codes.Internal, "internal error")
		}
		return resp, ToStatus(err)
	}
}

func UnaryLogInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if skipLog(info.FullMethod) {
			return handler(ctx, req)
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		latency := time.Since(start)

		st, _ := status.FromError(err)
		switch {
		case err == nil:
			logger.Infof(ctx, "grpc %s OK %s", info.FullMethod, latency)
		case st.Code() == codes.Internal || st.Code() == codes.Unknown:
			logger.Errorf(ctx, "grpc %s %s %s err: %+v", info.FullMethod, st.Code(), latency, err)
		default:
			logger.Warnf(ctx, "grpc %s %s %s msg: %s", info.FullMethod, st.Code(), latency, st.Message())
		}
		return resp, err
	}
}
