package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/core/notify/events"
	core "github.com/scienceol/sampletrack/pkg/core/order"
	"github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo"
	"github.com/scienceol/sampletrack/pkg/repo/model"
	"github.com/scienceol/sampletrack/pkg/repo/store"
	"github.com/scienceol/sampletrack/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type orderImpl struct {
	trackStore repo.TrackingRepo
	msgCenter  notify.MsgCenter
	created    metric.Int64Counter
	repeated   metric.Int64Counter
}

func New() core.Service {
	return NewWithStore(store.Tracking(), events.NewEvents())
}

func NewWithStore(trackStore repo.TrackingRepo, msgCenter notify.MsgCenter) core.Service {
	meter := otel.Meter("sampletrack/order")
	created, _ := meter.Int64Counter("sampletrack.orders.created",
		metric.WithDescription("orders accepted by intake"))
	repeated, _ := meter.Int64Counter("sampletrack.orders.repeated",
		metric.WithDescription("orders rejected because samples already exist"))
	return &orderImpl{
		trackStore: trackStore,
		msgCenter:  msgCenter,
		created:    created,
		repeated:   repeated,
	}
}

func (o *orderImpl) CreateOrder(ctx context.Context, req *core.CreateOrderReq) (*core.CreateOrderResp, error) {
	if req == nil || len(req.Order) == 0 {
		return nil, code.ParamErr.WithMsg("order must contain at least one sample")
	}

	sampleUUIDs := make([]uuid.UUID, 0, len(req.Order))
	for i, s := range req.Order {
		if s == nil || s.SampleUUID.IsNil() {
			return nil, code.ParamErr.WithMsgf("order[%d] has no sample_uuid", i)
		}
		if strings.TrimSpace(s.Sequence) == "" {
			return nil, code.ParamErr.WithMsgf("order[%d] has no sequence", i)
		}
		sampleUUIDs = append(sampleUUIDs, s.SampleUUID)
	}
	if dups := utils.Duplicates(sampleUUIDs); len(dups) > 0 {
		return nil, code.DuplicateInInputErr.WithData(&sample.SamplesDetail{SampleUUIDs: dups})
	}

	repeats, err := o.existingSamples(ctx, sampleUUIDs)
	if err != nil {
		return nil, err
	}
	if len(repeats) > 0 {
		o.repeated.Add(ctx, 1)
		return &core.CreateOrderResp{RepeatSampleUUIDs: repeats}, nil
	}

	now := time.Now().UTC()
	orderData := &model.Order{BaseModel: model.BaseModel{
		UUID:      uuid.NewV4(),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	err = o.trackStore.ExecTx(ctx, func(txCtx context.Context) error {
		if err := o.trackStore.CreateOrder(txCtx, orderData); err != nil {
			return err
		}

		samples := utils.FilterSlice(req.Order, func(s *core.SampleInput) (*model.Sample, bool) {
			return &model.Sample{
				BaseModel: model.BaseModel{
					UUID:      s.SampleUUID,
					CreatedAt: now,
					UpdatedAt: now,
				},
				OrderID:  orderData.ID,
				Sequence: s.Sequence,
				Status:   model.SampleOrdered,
			}, true
		})
		return o.trackStore.CreateSamples(txCtx, samples)
	})

	if errors.Is(err, code.DuplicateKeyErr) {
		// lost a race with a concurrent order for the same samples
		repeats, qErr := o.existingSamples(ctx, sampleUUIDs)
		if qErr != nil {
			return nil, qErr
		}
		if len(repeats) > 0 {
			o.repeated.Add(ctx, 1)
			return &core.CreateOrderResp{RepeatSampleUUIDs: repeats}, nil
		}
		return nil, code.OrderCreateErr.WithErr(err)
	}
	if err != nil {
		logger.Errorf(ctx, "create order fail err: %+v", err)
		return nil, err
	}

	o.created.Add(ctx, 1)
	o.publish(ctx, &notify.SendMsg{
		Channel:   notify.OrderCreated,
		OrderUUID: orderData.UUID,
		Data:      &core.OrderCreated{OrderUUID: orderData.UUID},
	})
	return &core.CreateOrderResp{OrderUUID: orderData.UUID}, nil
}

// existingSamples returns the requested uuids already present in the store,
// in request order.
func (o *orderImpl) existingSamples(ctx context.Context, sampleUUIDs []uuid.UUID) ([]uuid.UUID, error) {
	existing, err := o.trackStore.GetSamplesByUUIDs(ctx, sampleUUIDs)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}

	found := utils.SliceToMap(existing, func(s *model.Sample) uuid.UUID {
		return s.UUID
	})
	return utils.FilterSlice(sampleUUIDs, func(id uuid.UUID) (uuid.UUID, bool) {
		_, ok := found[id]
		return id, ok
	}), nil
}

func (o *orderImpl) OrderStatus(ctx context.Context, req *core.OrderStatusReq) (*core.OrderStatusResp, error) {
	if req == nil || req.OrderUUID.IsNil() {
		return nil, code.ParamErr.WithMsg("order_uuid_to_get_sample_statuses_for is required")
	}

	orderData, err := o.trackStore.GetOrderByUUID(ctx, req.OrderUUID)
	if errors.Is(err, code.RecordNotFound) {
		return nil, code.OrderNotFoundErr.WithMsgf("order with uuid %s not found", req.OrderUUID)
	}
	if err != nil {
		return nil, err
	}

	samples, err := o.trackStore.GetSamplesByOrderID(ctx, orderData.ID)
	if err != nil {
		return nil, err
	}

	return &core.OrderStatusResp{
		SampleStatuses: utils.FilterSlice(samples, func(s *model.Sample) (*core.SampleStatus, bool) {
			return &core.SampleStatus{SampleUUID: s.UUID, Status: s.Status}, true
		}),
	}, nil
}

func (o *orderImpl) publish(ctx context.Context, msg *notify.SendMsg) {
	if o.msgCenter == nil {
		return
	}
	if err := o.msgCenter.Broadcast(ctx, msg); err != nil {
		logger.Warnf(ctx, "publish %s fail err: %+v", msg.Channel, err)
	}
}
