package sample

import (
	"time"

	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

const (
	// ManufacturingBatchSize is one 96-well plate.
	ManufacturingBatchSize = 96

	QCMetric1Min = 10.0
	QCMetric2Min = 5.0
)

// SamplesDetail lists the samples an error refers to.
type SamplesDetail struct {
	SampleUUIDs []uuid.UUID `json:"sample_uuids"`
}

type SampleDetail struct {
	SampleUUID uuid.UUID `json:"sample_uuid"`
}

// StatusDetail names a sample whose current status blocks the operation.
type StatusDetail struct {
	SampleUUID uuid.UUID          `json:"sample_uuid"`
	Status     model.SampleStatus `json:"status"`
}

type SampleToMake struct {
	SampleUUID uuid.UUID `json:"sample_uuid"`
	Sequence   string    `json:"sequence"`
}

type SamplesToMakeResp struct {
	SamplesToMake []*SampleToMake `json:"samples_to_make"`
}

type ClaimSamplesReq struct {
	SampleUUIDs []uuid.UUID `json:"sample_uuids"`
}

type ClaimSamplesResp struct {
	Claimed []uuid.UUID `json:"claimed"`
}

type QCResultInput struct {
	SampleUUID uuid.UUID       `json:"sample_uuid"`
	PlateID    int             `json:"plate_id"`
	Well       string          `json:"well"`
	QC1        float64         `json:"qc_1"`
	QC2        float64         `json:"qc_2"`
	QC3        model.QCVerdict `json:"qc_3"`
}

// Passed reports whether the measurements clear every QC threshold.
func (q *QCResultInput) Passed() bool {
	return q.QC1 >= QCMetric1Min && q.QC2 >= QCMetric2Min && q.QC3 == model.QCPass
}

type QCResultsReq struct {
	SamplesMade []*QCResultInput `json:"samples_made"`
}

type MessageResp struct {
	Message string `json:"message"`
}

type SampleToShip struct {
	SampleUUID uuid.UUID `json:"sample_uuid"`
	PlateID    int       `json:"plate_id"`
	Well       string    `json:"well"`
}

type SamplesToShipResp struct {
	SamplesToShip []*SampleToShip `json:"samples_to_ship"`
}

type SamplesShippedReq struct {
	SamplesShipped []uuid.UUID `json:"samples_shipped"`
}

type SamplesShippedResp struct {
	Message string      `json:"message"`
	Shipped []uuid.UUID `json:"shipped"`
}

type SampleStatusReq struct {
	SampleUUID uuid.UUID `json:"sample_uuid_to_get_tat_for"`
}

// SampleStatusResp carries the turnaround timestamps of one sample.
// SampleShipped stays nil until the sample is shipped.
type SampleStatusResp struct {
	SampleUUID    uuid.UUID  `json:"sample_uuid"`
	OrderPlaced   time.Time  `json:"order_placed"`
	SampleShipped *time.Time `json:"sample_shipped"`
}
