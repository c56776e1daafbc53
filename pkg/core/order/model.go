package order

import (
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

type SampleInput struct {
	SampleUUID uuid.UUID `json:"sample_uuid"`
	Sequence   string    `json:"sequence"`
}

type CreateOrderReq struct {
	Order []*SampleInput `json:"order"`
}

// CreateOrderResp holds either the new order or, when some samples already
// exist, the colliding sample uuids and nothing was written.
type CreateOrderResp struct {
	OrderUUID         uuid.UUID
	RepeatSampleUUIDs []uuid.UUID
}

func (r *CreateOrderResp) Duplicated() bool {
	return len(r.RepeatSampleUUIDs) > 0
}

type OrderCreated struct {
	OrderUUID uuid.UUID `json:"order_uuid"`
}

type OrderRepeated struct {
	RepeatSampleUUIDs []uuid.UUID `json:"repeat_sample_uuids"`
}

type OrderStatusReq struct {
	OrderUUID uuid.UUID `json:"order_uuid_to_get_sample_statuses_for"`
}

type SampleStatus struct {
	SampleUUID uuid.UUID          `json:"sample_uuid"`
	Status     model.SampleStatus `json:"status"`
}

type OrderStatusResp struct {
	SampleStatuses []*SampleStatus `json:"sample_statuses"`
}
