package sample

import (
	"context"
	"fmt"
	"time"

	"github.com/scienceol/sampletrack/pkg/core/notify"
	core "github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/repo"
	"github.com/scienceol/sampletrack/pkg/repo/model"
	"github.com/scienceol/sampletrack/pkg/utils"
)

func (s *sampleImpl) SamplesToShip(ctx context.Context) (*core.SamplesToShipResp, error) {
	rows, err := s.trackStore.ListSamplesToShip(ctx)
	if err != nil {
		return nil, err
	}

	return &core.SamplesToShipResp{
		SamplesToShip: utils.FilterSlice(rows, func(row *repo.SampleToShip) (*core.SampleToShip, bool) {
			return &core.SampleToShip{
				SampleUUID: row.SampleUUID,
				PlateID:    row.PlateID,
				Well:       row.Well,
			}, true
		}),
	}, nil
}

func checkShippable(smp *model.Sample) error {
	if smp.Status != model.SamplePassedQC {
		return invalidTransition(smp)
	}
	return nil
}

func (s *sampleImpl) RecordShipped(ctx context.Context, req *core.SamplesShippedReq) (*core.SamplesShippedResp, error) {
	if req == nil {
		return nil, checkUUIDs("samples_shipped", nil)
	}
	if err := checkUUIDs("samples_shipped", req.SamplesShipped); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	changes := make([]*notify.StatusChange, 0, len(req.SamplesShipped))
	err := s.trackStore.ExecTx(ctx, func(txCtx context.Context) error {
		samples, err := s.resolveSamples(txCtx, req.SamplesShipped)
		if err != nil {
			return err
		}
		for _, id := range req.SamplesShipped {
			if err := checkShippable(samples[id]); err != nil {
				return err
			}
		}

		shipments := make([]*model.Shipment, 0, len(req.SamplesShipped))
		for _, id := range req.SamplesShipped {
			change, err := s.transition(txCtx, samples[id], model.SampleShipped, now)
			if err != nil {
				return err
			}
			changes = append(changes, change)
			shipments = append(shipments, &model.Shipment{SampleID: samples[id].ID, ShippedAt: now})
		}

		return s.trackStore.CreateShipments(txCtx, shipments)
	})
	if lostRace(err) {
		err = s.explainRace(ctx, req.SamplesShipped, err, checkShippable)
	}
	if err != nil {
		return nil, err
	}

	s.announce(ctx, changes)
	return &core.SamplesShippedResp{
		Message: fmt.Sprintf("Successfully shipped samples: %v", req.SamplesShipped),
		Shipped: req.SamplesShipped,
	}, nil
}
