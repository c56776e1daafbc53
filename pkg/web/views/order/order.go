package order

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/sampletrack/pkg/common"
	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/core/order"
	impl "github.com/scienceol/sampletrack/pkg/core/order/order"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
)

type Handle struct {
	oService order.Service
}

func NewOrderHandle() *Handle {
	return NewOrderHandleWith(impl.New())
}

func NewOrderHandleWith(oService order.Service) *Handle {
	return &Handle{oService: oService}
}

// CreateOrder godoc
// @Summary      Place an order
// @Description  Creates an order and its samples. Samples that already exist are reported with 409 and nothing is written.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      order.CreateOrderReq  true  "samples to order"
// @Success      200   {object}  common.Resp{data=order.OrderCreated}
// @Failure      409   {object}  common.Resp{data=order.OrderRepeated}
// @Failure      400   {object}  common.Resp
// @Router       /v1/orders [post]
func (h *Handle) CreateOrder(ctx *gin.Context) {
	req := &order.CreateOrderReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateOrder param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}

	resp, err := h.oService.CreateOrder(ctx, req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	if resp.Duplicated() {
		common.ReplyWith(ctx, code.SampleAlreadyExistErr, &order.OrderRepeated{
			RepeatSampleUUIDs: resp.RepeatSampleUUIDs,
		})
		return
	}
	common.ReplyOk(ctx, &order.OrderCreated{OrderUUID: resp.OrderUUID})
}

// OrderStatus godoc
// @Summary  Status of every sample in an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body  body      order.OrderStatusReq  true  "order to inspect"
// @Success  200   {object}  common.Resp{data=order.OrderStatusResp}
// @Failure  404   {object}  common.Resp
// @Router   /v1/orders/status [post]
func (h *Handle) OrderStatus(ctx *gin.Context) {
	req := &order.OrderStatusReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse OrderStatus param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.oService.OrderStatus(ctx, req)
	common.Reply(ctx, err, resp)
}
