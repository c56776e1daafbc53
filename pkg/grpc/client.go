package grpc

import (
	"context"

	"github.com/scienceol/sampletrack/pkg/core/order"
	"github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/grpc/services"
	ggrpc "google.golang.org/grpc"
)

// TrackingClient calls TrackingService over a connection using the json
// codec.
type TrackingClient struct {
	cc ggrpc.ClientConnInterface
}

func NewTrackingClient(cc ggrpc.ClientConnInterface) *TrackingClient {
	return &TrackingClient{cc: cc}
}

func (c *TrackingClient) invoke(ctx context.Context, method string, in, out any, opts ...ggrpc.CallOption) error {
	opts = append([]ggrpc.CallOption{ggrpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+services.TrackingServiceName+"/"+method, in, out, opts...)
}

func (c *TrackingClient) CreateOrder(ctx context.Context, in *order.CreateOrderReq, opts ...ggrpc.CallOption) (*order.OrderCreated, error) {
	out := &order.OrderCreated{}
	if err := c.invoke(ctx, "CreateOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackingClient) OrderStatus(ctx context.Context, in *order.OrderStatusReq, opts ...ggrpc.CallOption) (*order.OrderStatusResp, error) {
	out := &order.OrderStatusResp{}
	if err := c.invoke(ctx, "OrderStatus", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackingClient) SamplesToMake(ctx context.Context, opts ...ggrpc.CallOption) (*sample.SamplesToMakeResp, error) {
	out := &sample.SamplesToMakeResp{}
	if err := c.invoke(ctx, "SamplesToMake", &services.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackingClient) ClaimSamples(ctx context.Context, in *sample.ClaimSamplesReq, opts ...ggrpc.CallOption) (*sample.ClaimSamplesResp, error) {
	out := &sample.ClaimSamplesResp{}
	if err := c.invoke(ctx, "ClaimSamples", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackingClient) LogQCResults(ctx context.Context, in *sample.QCResultsReq, opts ...ggrpc.CallOption) (*sample.MessageResp, error) {
	out := &sample.MessageResp{}
	if err := c.invoke(ctx, "LogQCResults", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackingClient) SamplesToShip(ctx context.Context, opts ...ggrpc.CallOption) (*sample.SamplesToShipResp, error) {
	out := &sample.SamplesToShipResp{}
	if err := c.invoke(ctx, "SamplesToShip", &services.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackingClient) RecordShipped(ctx context.Context, in *sample.SamplesShippedReq, opts ...ggrpc.CallOption) (*sample.SamplesShippedResp, error) {
	out := &sample.SamplesShippedResp{}
	if err := c.invoke(ctx, "RecordShipped", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackingClient) SampleStatus(ctx context.Context, in *sample.SampleStatusReq, opts ...ggrpc.CallOption) (*sample.SampleStatusResp, error) {
	out := &sample.SampleStatusResp{}
	if err := c.invoke(ctx, "SampleStatus", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
