package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/middleware/db"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo"
	"github.com/scienceol/sampletrack/pkg/repo/model"
	"gorm.io/gorm"
)

type trackingImpl struct {
	*db.Datastore
}

func NewTrackingImpl() repo.TrackingRepo {
	return &trackingImpl{Datastore: db.DB()}
}

func NewTrackingWithStore(store *db.Datastore) repo.TrackingRepo {
	return &trackingImpl{Datastore: store}
}

func createErr(ctx context.Context, table string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return code.DuplicateKeyErr.WithErr(err)
	}
	logger.Errorf(ctx, "create %s fail err: %+v", table, err)
	return code.CreateDataErr.WithErr(err)
}

func queryErr(ctx context.Context, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return code.RecordNotFound.WithMsgf("%s not found", table)
	}
	logger.Errorf(ctx, "query %s fail err: %+v", table, err)
	return code.QueryRecordErr.WithErr(err)
}

func (t *trackingImpl) CreateOrder(ctx context.Context, order *model.Order) error {
	return createErr(ctx, "order", t.DBWithContext(ctx).Create(order).Error)
}

func (t *trackingImpl) GetOrderByUUID(ctx context.Context, orderUUID uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	if err := t.DBWithContext(ctx).Where("uuid = ?", orderUUID).Take(order).Error; err != nil {
		return nil, queryErr(ctx, "order", err)
	}
	return order, nil
}

func (t *trackingImpl) CreateSamples(ctx context.Context, samples []*model.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	return createErr(ctx, "sample", t.DBWithContext(ctx).Create(&samples).Error)
}

func (t *trackingImpl) GetSampleByUUID(ctx context.Context, sampleUUID uuid.UUID) (*model.Sample, error) {
	sample := &model.Sample{}
	if err := t.DBWithContext(ctx).Where("uuid = ?", sampleUUID).Take(sample).Error; err != nil {
		return nil, queryErr(ctx, "sample", err)
	}
	return sample, nil
}

func (t *trackingImpl) GetSamplesByUUIDs(ctx context.Context, sampleUUIDs []uuid.UUID) ([]*model.Sample, error) {
	samples := make([]*model.Sample, 0, len(sampleUUIDs))
	if len(sampleUUIDs) == 0 {
		return samples, nil
	}
	if err := t.DBWithContext(ctx).Where("uuid IN ?", sampleUUIDs).Order("id ASC").Find(&samples).Error; err != nil {
		return nil, queryErr(ctx, "sample", err)
	}
	return samples, nil
}

func (t *trackingImpl) GetSamplesByOrderID(ctx context.Context, orderID int64) ([]*model.Sample, error) {
	samples := make([]*model.Sample, 0)
	if err := t.DBWithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&samples).Error; err != nil {
		return nil, queryErr(ctx, "sample", err)
	}
	return samples, nil
}

func (t *trackingImpl) ListSamplesToMake(ctx context.Context, limit int) ([]*model.Sample, error) {
	samples := make([]*model.Sample, 0, limit)
	err := t.DBWithContext(ctx).
		Where("status = ?", model.SampleOrdered).
		Where("NOT EXISTS (SELECT 1 FROM qc_results WHERE qc_results.sample_id = sample.id)").
		Order("created_at ASC, uuid ASC").
		Limit(limit).
		Find(&samples).Error
	if err != nil {
		return nil, queryErr(ctx, "sample", err)
	}
	return samples, nil
}

func (t *trackingImpl) ListSamplesToShip(ctx context.Context) ([]*repo.SampleToShip, error) {
	rows := make([]*repo.SampleToShip, 0)
	err := t.DBWithContext(ctx).
		Table("sample").
		Select("sample.uuid AS sample_uuid, qc_results.plate_id, qc_results.well").
		Joins("JOIN qc_results ON qc_results.sample_id = sample.id").
		Where("sample.status = ?", model.SamplePassedQC).
		Order("sample.created_at ASC, sample.uuid ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr(ctx, "sample", err)
	}
	return rows, nil
}

func (t *trackingImpl) UpdateSampleStatus(ctx context.Context, sampleID int64, from, to model.SampleStatus, at time.Time) error {
	res := t.DBWithContext(ctx).
		Model(&model.Sample{}).
		Where("id = ? AND status = ?", sampleID, from).
		UpdateColumns(map[string]any{
			"status":     to,
			"updated_at": at,
		})
	if res.Error != nil {
		logger.Errorf(ctx, "update sample status fail id: %d, err: %+v", sampleID, res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.SampleStatusConflictErr.WithMsgf("sample id %d is no longer %s", sampleID, from)
	}
	return nil
}

func (t *trackingImpl) CreateQCResults(ctx context.Context, results []*model.QCResult) error {
	if len(results) == 0 {
		return nil
	}
	return createErr(ctx, "qc_results", t.DBWithContext(ctx).Create(&results).Error)
}

func (t *trackingImpl) GetQCResultsBySampleIDs(ctx context.Context, sampleIDs []int64) ([]*model.QCResult, error) {
	results := make([]*model.QCResult, 0, len(sampleIDs))
	if len(sampleIDs) == 0 {
		return results, nil
	}
	if err := t.DBWithContext(ctx).Where("sample_id IN ?", sampleIDs).Order("id ASC").Find(&results).Error; err != nil {
		return nil, queryErr(ctx, "qc_results", err)
	}
	return results, nil
}

func (t *trackingImpl) CreateShipments(ctx context.Context, shipments []*model.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	return createErr(ctx, "shipment", t.DBWithContext(ctx).Create(&shipments).Error)
}
