package sample

import (
	"context"
	"errors"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/core/notify/events"
	core "github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo"
	"github.com/scienceol/sampletrack/pkg/repo/model"
	"github.com/scienceol/sampletrack/pkg/repo/store"
	"github.com/scienceol/sampletrack/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type sampleImpl struct {
	trackStore  repo.TrackingRepo
	msgCenter   notify.MsgCenter
	transitions metric.Int64Counter
}

func New() core.Service {
	return NewWithStore(store.Tracking(), events.NewEvents())
}

func NewWithStore(trackStore repo.TrackingRepo, msgCenter notify.MsgCenter) core.Service {
	transitions, _ := otel.Meter("sampletrack/sample").Int64Counter("sampletrack.samples.transitions",
		metric.WithDescription("sample status changes by target status"))
	return &sampleImpl{
		trackStore:  trackStore,
		msgCenter:   msgCenter,
		transitions: transitions,
	}
}

// checkUUIDs rejects empty lists, nil uuids and repeated uuids.
func checkUUIDs(field string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return code.ParamErr.WithMsgf("%s must not be empty", field)
	}
	for i, id := range ids {
		if id.IsNil() {
			return code.ParamErr.WithMsgf("%s[%d] is not a valid uuid", field, i)
		}
	}
	if dups := utils.Duplicates(ids); len(dups) > 0 {
		return code.DuplicateInInputErr.WithData(&core.SamplesDetail{SampleUUIDs: dups})
	}
	return nil
}

// resolveSamples loads every listed sample. Missing samples are all
// reported together.
func (s *sampleImpl) resolveSamples(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Sample, error) {
	samples, err := s.trackStore.GetSamplesByUUIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := utils.SliceToMap(samples, func(smp *model.Sample) uuid.UUID {
		return smp.UUID
	})
	missing := utils.FilterSlice(ids, func(id uuid.UUID) (uuid.UUID, bool) {
		_, ok := found[id]
		return id, !ok
	})
	if len(missing) > 0 {
		return nil, code.SamplesNotFoundErr.WithData(&core.SamplesDetail{SampleUUIDs: missing})
	}
	return found, nil
}

func invalidTransition(smp *model.Sample) error {
	return code.InvalidStateTransitionErr.WithData(&core.StatusDetail{
		SampleUUID: smp.UUID,
		Status:     smp.Status,
	})
}

// lostRace reports whether err comes from a write that lost to a
// concurrent request after the checks inside the transaction passed.
func lostRace(err error) bool {
	return errors.Is(err, code.DuplicateKeyErr) || errors.Is(err, code.SampleStatusConflictErr)
}

// explainRace re-reads the listed samples once the transaction has rolled
// back and returns the first error check reports, the same error the checks
// would have given had the competing request committed first. cause is
// returned when the committed state explains nothing.
func (s *sampleImpl) explainRace(ctx context.Context, ids []uuid.UUID, cause error, check func(*model.Sample) error) error {
	samples, err := s.resolveSamples(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := check(samples[id]); err != nil {
			return err
		}
	}
	return cause
}

// transition moves smp to next, guarded by its current status.
func (s *sampleImpl) transition(ctx context.Context, smp *model.Sample, next model.SampleStatus, at time.Time) (*notify.StatusChange, error) {
	if !smp.Status.CanTransitionTo(next) {
		return nil, invalidTransition(smp)
	}
	if err := s.trackStore.UpdateSampleStatus(ctx, smp.ID, smp.Status, next, at); err != nil {
		return nil, err
	}
	change := &notify.StatusChange{
		SampleUUID: smp.UUID,
		From:       smp.Status.String(),
		To:         next.String(),
		At:         at,
	}
	smp.Status = next
	smp.UpdatedAt = at
	return change, nil
}

// announce publishes committed status changes. Failures are logged only.
func (s *sampleImpl) announce(ctx context.Context, changes []*notify.StatusChange) {
	for _, change := range changes {
		s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", change.To)))
		if s.msgCenter == nil {
			continue
		}
		if err := s.msgCenter.Broadcast(ctx, &notify.SendMsg{
			Channel: notify.SampleStatusChanged,
			Data:    change,
		}); err != nil {
			logger.Warnf(ctx, "publish status change sample: %s, err: %+v", change.SampleUUID, err)
		}
	}
}
