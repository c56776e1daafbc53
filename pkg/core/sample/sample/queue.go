package sample

import (
	"context"
	"time"

	"github.com/scienceol/sampletrack/pkg/core/notify"
	core "github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/repo/model"
	"github.com/scienceol/sampletrack/pkg/utils"
)

func (s *sampleImpl) SamplesToMake(ctx context.Context) (*core.SamplesToMakeResp, error) {
	samples, err := s.trackStore.ListSamplesToMake(ctx, core.ManufacturingBatchSize)
	if err != nil {
		return nil, err
	}

	return &core.SamplesToMakeResp{
		SamplesToMake: utils.FilterSlice(samples, func(smp *model.Sample) (*core.SampleToMake, bool) {
			return &core.SampleToMake{SampleUUID: smp.UUID, Sequence: smp.Sequence}, true
		}),
	}, nil
}

func checkClaimable(smp *model.Sample) error {
	if !smp.Status.CanTransitionTo(model.SampleProcessing) {
		return invalidTransition(smp)
	}
	return nil
}

func (s *sampleImpl) ClaimSamples(ctx context.Context, req *core.ClaimSamplesReq) (*core.ClaimSamplesResp, error) {
	if req == nil {
		return nil, checkUUIDs("sample_uuids", nil)
	}
	if err := checkUUIDs("sample_uuids", req.SampleUUIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	changes := make([]*notify.StatusChange, 0, len(req.SampleUUIDs))
	err := s.trackStore.ExecTx(ctx, func(txCtx context.Context) error {
		samples, err := s.resolveSamples(txCtx, req.SampleUUIDs)
		if err != nil {
			return err
		}
		for _, id := range req.SampleUUIDs {
			if err := checkClaimable(samples[id]); err != nil {
				return err
			}
		}
		for _, id := range req.SampleUUIDs {
			change, err := s.transition(txCtx, samples[id], model.SampleProcessing, now)
			if err != nil {
				return err
			}
			changes = append(changes, change)
		}
		return nil
	})
	if lostRace(err) {
		err = s.explainRace(ctx, req.SampleUUIDs, err, checkClaimable)
	}
	if err != nil {
		return nil, err
	}

	s.announce(ctx, changes)
	return &core.ClaimSamplesResp{Claimed: req.SampleUUIDs}, nil
}
