package order

import "context"

type Service interface {
	CreateOrder(ctx context.Context, req *CreateOrderReq) (*CreateOrderResp, error)
	OrderStatus(ctx context.Context, req *OrderStatusReq) (*OrderStatusResp, error)
}
