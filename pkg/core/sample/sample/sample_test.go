package sample

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/core/notify/notifytest"
	core "github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/repo/memory"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

type fixture struct {
	svc   core.Service
	store *memory.Store
	rec   *notifytest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := memory.New(memory.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	rec := &notifytest.Recorder{}
	return &fixture{svc: NewWithStore(s, rec), store: s, rec: rec}
}

// order writes one order holding n samples created at the same instant.
func (f *fixture) order(t *testing.T, n int, createdAt time.Time) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	o := &model.Order{BaseModel: model.BaseModel{UUID: uuid.NewV4(), CreatedAt: createdAt}}
	ids := make([]uuid.UUID, 0, n)
	err := f.store.ExecTx(ctx, func(txCtx context.Context) error {
		if err := f.store.CreateOrder(txCtx, o); err != nil {
			return err
		}
		samples := make([]*model.Sample, 0, n)
		for i := 0; i < n; i++ {
			id := uuid.NewV4()
			ids = append(ids, id)
			samples = append(samples, &model.Sample{
				BaseModel: model.BaseModel{UUID: id, CreatedAt: createdAt},
				OrderID:   o.ID,
				Sequence:  "ACGT",
				Status:    model.SampleOrdered,
			})
		}
		return f.store.CreateSamples(txCtx, samples)
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return ids
}

func (f *fixture) status(t *testing.T, id uuid.UUID) model.SampleStatus {
	t.Helper()
	smp, err := f.store.GetSampleByUUID(context.Background(), id)
	if err != nil {
		t.Fatalf("get sample %s: %v", id, err)
	}
	return smp.Status
}

func (f *fixture) qcResult(t *testing.T, id uuid.UUID) *model.QCResult {
	t.Helper()
	ctx := context.Background()
	smp, err := f.store.GetSampleByUUID(ctx, id)
	if err != nil {
		t.Fatalf("get sample %s: %v", id, err)
	}
	results, err := f.store.GetQCResultsBySampleIDs(ctx, []int64{smp.ID})
	if err != nil || len(results) != 1 {
		t.Fatalf("expected one qc result for %s, got %d (%v)", id, len(results), err)
	}
	return results[0]
}

func passing(id uuid.UUID, well string) *core.QCResultInput {
	return &core.QCResultInput{SampleUUID: id, PlateID: 1, Well: well, QC1: 10.0, QC2: 5.0, QC3: model.QCPass}
}

func TestSamplesToMakeOrderingAndLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := f.order(t, 1, base.Add(time.Hour))
	early := f.order(t, core.ManufacturingBatchSize, base)

	resp, err := f.svc.SamplesToMake(ctx)
	if err != nil {
		t.Fatalf("samples to make: %v", err)
	}
	if len(resp.SamplesToMake) != core.ManufacturingBatchSize {
		t.Fatalf("expected a full batch, got %d", len(resp.SamplesToMake))
	}
	for i := 1; i < len(resp.SamplesToMake); i++ {
		if !uuid.Less(resp.SamplesToMake[i-1].SampleUUID, resp.SamplesToMake[i].SampleUUID) {
			t.Fatalf("samples with equal created_at must be ordered by uuid")
		}
	}
	for _, s := range resp.SamplesToMake {
		if s.SampleUUID == late[0] {
			t.Fatalf("newer sample must not displace older ones")
		}
		if s.Sequence != "ACGT" {
			t.Fatalf("sequence not carried: %+v", s)
		}
	}

	// once part of the early batch is done the late sample moves up
	if _, err := f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(early[0], "A1")}}); err != nil {
		t.Fatalf("log qc: %v", err)
	}
	resp, _ = f.svc.SamplesToMake(ctx)
	if last := resp.SamplesToMake[len(resp.SamplesToMake)-1]; last.SampleUUID != late[0] {
		t.Fatalf("expected late sample at the end of the batch")
	}
}

func TestSamplesToMakeEmpty(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.SamplesToMake(context.Background())
	if err != nil {
		t.Fatalf("samples to make: %v", err)
	}
	if resp.SamplesToMake == nil || len(resp.SamplesToMake) != 0 {
		t.Fatalf("expected an empty, non nil list")
	}
}

func TestLogQCResultsGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.order(t, 5, time.Now().UTC())

	req := &core.QCResultsReq{SamplesMade: []*core.QCResultInput{
		passing(ids[0], "A1"),
		{SampleUUID: ids[1], PlateID: 1, Well: "A2", QC1: 9.99, QC2: 5, QC3: model.QCPass},
		{SampleUUID: ids[2], PlateID: 1, Well: "A3", QC1: 10, QC2: 4.99, QC3: model.QCPass},
		{SampleUUID: ids[3], PlateID: 1, Well: "A4", QC1: 50, QC2: 50, QC3: model.QCFail},
	}}
	resp, err := f.svc.LogQCResults(ctx, req)
	if err != nil {
		t.Fatalf("log qc: %v", err)
	}
	if resp.Message != "QC results logged successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	want := []model.SampleStatus{model.SamplePassedQC, model.SampleFailed, model.SampleFailed, model.SampleFailed, model.SampleOrdered}
	for i, id := range ids {
		if got := f.status(t, id); got != want[i] {
			t.Fatalf("sample %d: got %s, want %s", i, got, want[i])
		}
	}

	msgs := f.rec.Messages(notify.SampleStatusChanged)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 status change messages, got %d", len(msgs))
	}
	first := msgs[0].Data.(*notify.StatusChange)
	if first.SampleUUID != ids[0] || first.From != "ORDERED" || first.To != "PASSED_QC" {
		t.Fatalf("unexpected change %+v", first)
	}

	toMake, _ := f.svc.SamplesToMake(ctx)
	if len(toMake.SamplesToMake) != 1 || toMake.SamplesToMake[0].SampleUUID != ids[4] {
		t.Fatalf("only the unchecked sample should remain to make")
	}
}

func TestLogQCResultsRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.order(t, 2, time.Now().UTC())
	unknown := uuid.NewV4()

	if _, err := f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(ids[0], "A1")}}); err != nil {
		t.Fatalf("first log: %v", err)
	}

	cases := []struct {
		name string
		req  *core.QCResultsReq
		want code.ErrCode
	}{
		{"empty", &core.QCResultsReq{}, code.ParamErr},
		{"bad verdict", &core.QCResultsReq{SamplesMade: []*core.QCResultInput{{SampleUUID: ids[1], QC3: "MAYBE"}}}, code.ParamErr},
		{"duplicate in batch", &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(ids[1], "A1"), passing(ids[1], "A2")}}, code.DuplicateInInputErr},
		{"unknown sample", &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(ids[1], "A1"), passing(unknown, "A2")}}, code.SamplesNotFoundErr},
		{"already logged", &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(ids[1], "A1"), passing(ids[0], "A2")}}, code.QCAlreadyLoggedErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.LogQCResults(ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// every rejected batch left ids[1] untouched
	if got := f.status(t, ids[1]); got != model.SampleOrdered {
		t.Fatalf("rejected batches must not write, status %s", got)
	}

	_, err := f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(unknown, "A1")}})
	_, _, data := code.Parse(err)
	if d, ok := data.(*core.SamplesDetail); !ok || len(d.SampleUUIDs) != 1 || d.SampleUUIDs[0] != unknown {
		t.Fatalf("expected missing sample detail, got %+v", data)
	}

	_, err = f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{
		{SampleUUID: ids[0], PlateID: 7, Well: "H12", QC1: 1, QC2: 1, QC3: model.QCFail},
	}})
	_, _, data = code.Parse(err)
	if d, ok := data.(*core.SampleDetail); !ok || d.SampleUUID != ids[0] {
		t.Fatalf("expected already logged detail, got %+v", data)
	}

	// the first result is the one kept
	stored := f.qcResult(t, ids[0])
	if stored.PlateID != 1 || stored.Well != "A1" || stored.QC1 != 10 || stored.QC2 != 5 || stored.QC3 != model.QCPass {
		t.Fatalf("stored qc result was overwritten: %+v", stored)
	}
	if got := f.status(t, ids[0]); got != model.SamplePassedQC {
		t.Fatalf("expected PASSED_QC after rejected relog, got %s", got)
	}
}

func TestClaimSamples(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.order(t, 3, time.Now().UTC())

	resp, err := f.svc.ClaimSamples(ctx, &core.ClaimSamplesReq{SampleUUIDs: ids[:2]})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(resp.Claimed) != 2 {
		t.Fatalf("expected 2 claimed, got %d", len(resp.Claimed))
	}
	if got := f.status(t, ids[0]); got != model.SampleProcessing {
		t.Fatalf("expected PROCESSING, got %s", got)
	}

	toMake, _ := f.svc.SamplesToMake(ctx)
	if len(toMake.SamplesToMake) != 1 || toMake.SamplesToMake[0].SampleUUID != ids[2] {
		t.Fatalf("claimed samples must leave the manufacturing queue")
	}

	// all or nothing: ids[2] stays ORDERED because ids[0] is already claimed
	_, err = f.svc.ClaimSamples(ctx, &core.ClaimSamplesReq{SampleUUIDs: []uuid.UUID{ids[2], ids[0]}})
	if !errors.Is(err, code.InvalidStateTransitionErr) {
		t.Fatalf("expected InvalidStateTransitionErr, got %v", err)
	}
	_, _, data := code.Parse(err)
	if d, ok := data.(*core.StatusDetail); !ok || d.SampleUUID != ids[0] || d.Status != model.SampleProcessing {
		t.Fatalf("unexpected detail %+v", data)
	}
	if got := f.status(t, ids[2]); got != model.SampleOrdered {
		t.Fatalf("failed claim must not move other samples, got %s", got)
	}

	if _, err := f.svc.ClaimSamples(ctx, &core.ClaimSamplesReq{SampleUUIDs: []uuid.UUID{uuid.NewV4()}}); !errors.Is(err, code.SamplesNotFoundErr) {
		t.Fatalf("expected SamplesNotFoundErr, got %v", err)
	}
	if _, err := f.svc.ClaimSamples(ctx, &core.ClaimSamplesReq{}); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr, got %v", err)
	}

	// a claimed sample still accepts its qc result
	if _, err := f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(ids[0], "B1")}}); err != nil {
		t.Fatalf("log qc for claimed sample: %v", err)
	}
	if got := f.status(t, ids[0]); got != model.SamplePassedQC {
		t.Fatalf("expected PASSED_QC, got %s", got)
	}
}

func TestShippingGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.order(t, 3, time.Now().UTC())

	_, err := f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{
		passing(ids[0], "C1"),
		passing(ids[1], "C2"),
		{SampleUUID: ids[2], PlateID: 1, Well: "C3", QC1: 1, QC2: 1, QC3: model.QCFail},
	}})
	if err != nil {
		t.Fatalf("log qc: %v", err)
	}

	toShip, err := f.svc.SamplesToShip(ctx)
	if err != nil {
		t.Fatalf("samples to ship: %v", err)
	}
	if len(toShip.SamplesToShip) != 2 {
		t.Fatalf("expected 2 samples to ship, got %d", len(toShip.SamplesToShip))
	}
	for _, s := range toShip.SamplesToShip {
		if s.SampleUUID == ids[2] {
			t.Fatalf("failed sample must not be shippable")
		}
		if s.PlateID != 1 || !strings.HasPrefix(s.Well, "C") {
			t.Fatalf("qc position not carried: %+v", s)
		}
	}

	// one bad sample blocks the whole batch
	_, err = f.svc.RecordShipped(ctx, &core.SamplesShippedReq{SamplesShipped: []uuid.UUID{ids[0], ids[2]}})
	if !errors.Is(err, code.InvalidStateTransitionErr) {
		t.Fatalf("expected InvalidStateTransitionErr, got %v", err)
	}
	if got := f.status(t, ids[0]); got != model.SamplePassedQC {
		t.Fatalf("rejected shipment must not change status, got %s", got)
	}
	if _, ok := f.store.Shipment(ctx, 1); ok {
		t.Fatalf("rejected shipment must not be recorded")
	}

	resp, err := f.svc.RecordShipped(ctx, &core.SamplesShippedReq{SamplesShipped: []uuid.UUID{ids[0]}})
	if err != nil {
		t.Fatalf("record shipped: %v", err)
	}
	if len(resp.Shipped) != 1 || !strings.Contains(resp.Message, ids[0].String()) {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got := f.status(t, ids[0]); got != model.SampleShipped {
		t.Fatalf("expected SHIPPED, got %s", got)
	}

	toShip, _ = f.svc.SamplesToShip(ctx)
	if len(toShip.SamplesToShip) != 1 || toShip.SamplesToShip[0].SampleUUID != ids[1] {
		t.Fatalf("shipped sample must leave the shipping queue")
	}

	cases := []struct {
		name string
		ids  []uuid.UUID
		want code.ErrCode
	}{
		{"empty", nil, code.ParamErr},
		{"duplicate", []uuid.UUID{ids[1], ids[1]}, code.DuplicateInInputErr},
		{"unknown", []uuid.UUID{ids[1], uuid.NewV4()}, code.SamplesNotFoundErr},
		{"already shipped", []uuid.UUID{ids[0]}, code.InvalidStateTransitionErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RecordShipped(ctx, &core.SamplesShippedReq{SamplesShipped: tc.ids})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleStatusTurnaround(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	placed := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	ids := f.order(t, 1, placed)

	resp, err := f.svc.SampleStatus(ctx, &core.SampleStatusReq{SampleUUID: ids[0]})
	if err != nil {
		t.Fatalf("sample status: %v", err)
	}
	if !resp.OrderPlaced.Equal(placed) || resp.SampleShipped != nil {
		t.Fatalf("unexpected unshipped status %+v", resp)
	}

	if _, err := f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{passing(ids[0], "D1")}}); err != nil {
		t.Fatalf("log qc: %v", err)
	}
	resp, _ = f.svc.SampleStatus(ctx, &core.SampleStatusReq{SampleUUID: ids[0]})
	if resp.SampleShipped != nil {
		t.Fatalf("passed but unshipped sample has no ship time")
	}

	if _, err := f.svc.RecordShipped(ctx, &core.SamplesShippedReq{SamplesShipped: ids}); err != nil {
		t.Fatalf("record shipped: %v", err)
	}
	resp, _ = f.svc.SampleStatus(ctx, &core.SampleStatusReq{SampleUUID: ids[0]})
	if resp.SampleShipped == nil || resp.SampleShipped.Before(placed) {
		t.Fatalf("expected ship time after placement, got %+v", resp.SampleShipped)
	}
	smp, err := f.store.GetSampleByUUID(ctx, ids[0])
	if err != nil {
		t.Fatalf("get sample: %v", err)
	}
	if !resp.SampleShipped.Equal(smp.UpdatedAt) {
		t.Fatalf("ship time %v differs from the shipping update %v", resp.SampleShipped, smp.UpdatedAt)
	}
	shipment, ok := f.store.Shipment(ctx, smp.ID)
	if !ok || !shipment.ShippedAt.Equal(*resp.SampleShipped) {
		t.Fatalf("ship time %v differs from the shipment record %+v", resp.SampleShipped, shipment)
	}
	if !resp.OrderPlaced.Equal(placed) {
		t.Fatalf("order placed time moved to %v", resp.OrderPlaced)
	}

	if _, err := f.svc.SampleStatus(ctx, &core.SampleStatusReq{SampleUUID: uuid.NewV4()}); !errors.Is(err, code.SampleNotFoundErr) {
		t.Fatalf("expected SampleNotFoundErr, got %v", err)
	}
}

// staleStore answers the first lookups with state from before a competing
// request committed, so the write inside the transaction loses the race.
type staleStore struct {
	*memory.Store
	hideQC    int
	staleAs   model.SampleStatus
	staleRead int
}

func (s *staleStore) GetQCResultsBySampleIDs(ctx context.Context, sampleIDs []int64) ([]*model.QCResult, error) {
	if s.hideQC > 0 {
		s.hideQC--
		return []*model.QCResult{}, nil
	}
	return s.Store.GetQCResultsBySampleIDs(ctx, sampleIDs)
}

func (s *staleStore) GetSamplesByUUIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Sample, error) {
	samples, err := s.Store.GetSamplesByUUIDs(ctx, ids)
	if err != nil || s.staleRead == 0 {
		return samples, err
	}
	s.staleRead--
	for _, smp := range samples {
		smp.Status = s.staleAs
	}
	return samples, nil
}

func TestLostRaceReportsCommittedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.order(t, 3, time.Now().UTC())

	if _, err := f.svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{
		passing(ids[0], "A1"), passing(ids[1], "A2"),
	}}); err != nil {
		t.Fatalf("log qc: %v", err)
	}
	if _, err := f.svc.RecordShipped(ctx, &core.SamplesShippedReq{SamplesShipped: ids[1:2]}); err != nil {
		t.Fatalf("record shipped: %v", err)
	}
	if _, err := f.svc.ClaimSamples(ctx, &core.ClaimSamplesReq{SampleUUIDs: ids[2:]}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	cases := []struct {
		name  string
		store *staleStore
		call  func(svc core.Service) error
		want  code.ErrCode
		check func(t *testing.T, data any)
	}{
		{
			name:  "qc logged by another request",
			store: &staleStore{Store: f.store, hideQC: 1, staleAs: model.SampleOrdered, staleRead: 1},
			call: func(svc core.Service) error {
				_, err := svc.LogQCResults(ctx, &core.QCResultsReq{SamplesMade: []*core.QCResultInput{
					{SampleUUID: ids[0], PlateID: 2, Well: "B1", QC1: 1, QC2: 1, QC3: model.QCFail},
				}})
				return err
			},
			want: code.QCAlreadyLoggedErr,
			check: func(t *testing.T, data any) {
				if d, ok := data.(*core.SampleDetail); !ok || d.SampleUUID != ids[0] {
					t.Fatalf("expected already logged detail, got %+v", data)
				}
			},
		},
		{
			name:  "shipped by another request",
			store: &staleStore{Store: f.store, staleAs: model.SamplePassedQC, staleRead: 1},
			call: func(svc core.Service) error {
				_, err := svc.RecordShipped(ctx, &core.SamplesShippedReq{SamplesShipped: ids[1:2]})
				return err
			},
			want: code.InvalidStateTransitionErr,
			check: func(t *testing.T, data any) {
				if d, ok := data.(*core.StatusDetail); !ok || d.SampleUUID != ids[1] || d.Status != model.SampleShipped {
					t.Fatalf("expected SHIPPED status detail, got %+v", data)
				}
			},
		},
		{
			name:  "claimed by another request",
			store: &staleStore{Store: f.store, staleAs: model.SampleOrdered, staleRead: 1},
			call: func(svc core.Service) error {
				_, err := svc.ClaimSamples(ctx, &core.ClaimSamplesReq{SampleUUIDs: ids[2:]})
				return err
			},
			want: code.InvalidStateTransitionErr,
			check: func(t *testing.T, data any) {
				if d, ok := data.(*core.StatusDetail); !ok || d.SampleUUID != ids[2] || d.Status != model.SampleProcessing {
					t.Fatalf("expected PROCESSING status detail, got %+v", data)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call(NewWithStore(tc.store, f.rec))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			_, _, data := code.Parse(err)
			tc.check(t, data)
		})
	}

	stored := f.qcResult(t, ids[0])
	if stored.PlateID != 1 || stored.Well != "A1" {
		t.Fatalf("losing qc write must roll back, got %+v", stored)
	}
	want := []model.SampleStatus{model.SamplePassedQC, model.SampleShipped, model.SampleProcessing}
	for i, id := range ids {
		if got := f.status(t, id); got != want[i] {
			t.Fatalf("sample %d: got %s, want %s", i, got, want[i])
		}
	}
}

func TestNotificationFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.rec.Err = errors.New("redis down")
	ids := f.order(t, 1, time.Now().UTC())

	if _, err := f.svc.ClaimSamples(context.Background(), &core.ClaimSamplesReq{SampleUUIDs: ids}); err != nil {
		t.Fatalf("claim must succeed even if publishing fails: %v", err)
	}
	if got := f.status(t, ids[0]); got != model.SampleProcessing {
		t.Fatalf("expected PROCESSING, got %s", got)
	}
}
