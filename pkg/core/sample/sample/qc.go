package sample

import (
	"context"
	"errors"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	core "github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

func checkQCInput(req *core.QCResultsReq) ([]uuid.UUID, error) {
	if req == nil || len(req.SamplesMade) == 0 {
		return nil, code.ParamErr.WithMsg("samples_made must not be empty")
	}
	ids := make([]uuid.UUID, 0, len(req.SamplesMade))
	for i, in := range req.SamplesMade {
		if in == nil {
			return nil, code.ParamErr.WithMsgf("samples_made[%d] is empty", i)
		}
		if !in.QC3.Valid() {
			return nil, code.ParamErr.WithMsgf("samples_made[%d].qc_3 must be %s or %s", i, model.QCPass, model.QCFail)
		}
		ids = append(ids, in.SampleUUID)
	}
	if err := checkUUIDs("samples_made", ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// qcBatch is a validated batch ready to be written.
type qcBatch struct {
	samples map[uuid.UUID]*model.Sample
	results []*model.QCResult
	targets []model.SampleStatus
}

// planQC resolves the batch against the store and rejects it when a sample
// already has a result or cannot move to its QC outcome.
func (s *sampleImpl) planQC(ctx context.Context, req *core.QCResultsReq, ids []uuid.UUID, now time.Time) (*qcBatch, error) {
	samples, err := s.resolveSamples(ctx, ids)
	if err != nil {
		return nil, err
	}

	sampleIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		sampleIDs = append(sampleIDs, samples[id].ID)
	}
	existing, err := s.trackStore.GetQCResultsBySampleIDs(ctx, sampleIDs)
	if err != nil {
		return nil, err
	}
	logged := make(map[int64]struct{}, len(existing))
	for _, r := range existing {
		logged[r.SampleID] = struct{}{}
	}

	batch := &qcBatch{
		samples: samples,
		results: make([]*model.QCResult, 0, len(req.SamplesMade)),
		targets: make([]model.SampleStatus, 0, len(req.SamplesMade)),
	}
	for _, in := range req.SamplesMade {
		smp := samples[in.SampleUUID]
		if _, ok := logged[smp.ID]; ok {
			return nil, code.QCAlreadyLoggedErr.WithData(&core.SampleDetail{SampleUUID: smp.UUID})
		}
		target := model.SampleFailed
		if in.Passed() {
			target = model.SamplePassedQC
		}
		if !smp.Status.CanTransitionTo(target) {
			return nil, invalidTransition(smp)
		}
		batch.targets = append(batch.targets, target)
		batch.results = append(batch.results, &model.QCResult{
			SampleID:  smp.ID,
			PlateID:   in.PlateID,
			Well:      in.Well,
			QC1:       in.QC1,
			QC2:       in.QC2,
			QC3:       in.QC3,
			CreatedAt: now,
		})
	}
	return batch, nil
}

func (s *sampleImpl) LogQCResults(ctx context.Context, req *core.QCResultsReq) (*core.MessageResp, error) {
	ids, err := checkQCInput(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	changes := make([]*notify.StatusChange, 0, len(ids))
	err = s.trackStore.ExecTx(ctx, func(txCtx context.Context) error {
		batch, err := s.planQC(txCtx, req, ids, now)
		if err != nil {
			return err
		}
		if err := s.trackStore.CreateQCResults(txCtx, batch.results); err != nil {
			return err
		}
		for i, in := range req.SamplesMade {
			change, err := s.transition(txCtx, batch.samples[in.SampleUUID], batch.targets[i], now)
			if err != nil {
				return err
			}
			changes = append(changes, change)
		}
		return nil
	})
	if lostRace(err) {
		if _, planErr := s.planQC(ctx, req, ids, now); planErr != nil {
			err = planErr
		}
	}
	if err != nil {
		if !errors.Is(err, code.QCAlreadyLoggedErr) && !errors.Is(err, code.SamplesNotFoundErr) &&
			!errors.Is(err, code.InvalidStateTransitionErr) {
			logger.Errorf(ctx, "log qc results fail err: %+v", err)
		}
		return nil, err
	}

	s.announce(ctx, changes)
	return &core.MessageResp{Message: "QC results logged successfully"}, nil
}
