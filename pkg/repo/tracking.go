package repo

import (
	"context"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

// SampleToShip is a PASSED_QC sample joined with the plate position it was
// checked in.
type SampleToShip struct {
	SampleUUID uuid.UUID `gorm:"column:sample_uuid"`
	PlateID    int       `gorm:"column:plate_id"`
	Well       string    `gorm:"column:well"`
}

// TrackingRepo is the record store for orders, samples, qc results and
// shipments. Lookups that find nothing return code.RecordNotFound, unique
// index violations return code.DuplicateKeyErr.
type TrackingRepo interface {
	TxExecutor

	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByUUID(ctx context.Context, orderUUID uuid.UUID) (*model.Order, error)

	CreateSamples(ctx context.Context, samples []*model.Sample) error
	GetSampleByUUID(ctx context.Context, sampleUUID uuid.UUID) (*model.Sample, error)
	GetSamplesByUUIDs(ctx context.Context, sampleUUIDs []uuid.UUID) ([]*model.Sample, error)
	// GetSamplesByOrderID returns the samples of one order in creation order.
	GetSamplesByOrderID(ctx context.Context, orderID int64) ([]*model.Sample, error)
	// ListSamplesToMake returns ORDERED samples without a qc result, oldest
	// first, at most limit of them.
	ListSamplesToMake(ctx context.Context, limit int) ([]*model.Sample, error)
	ListSamplesToShip(ctx context.Context) ([]*SampleToShip, error)
	// UpdateSampleStatus moves one sample from -> to. It returns
	// code.SampleStatusConflictErr when the sample is no longer in from.
	UpdateSampleStatus(ctx context.Context, sampleID int64, from, to model.SampleStatus, at time.Time) error

	CreateQCResults(ctx context.Context, results []*model.QCResult) error
	GetQCResultsBySampleIDs(ctx context.Context, sampleIDs []int64) ([]*model.QCResult, error)

	CreateShipments(ctx context.Context, shipments []*model.Shipment) error
}
