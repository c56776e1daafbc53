package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/repo"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

type state struct {
	orderSeq  int64
	sampleSeq int64
	qcSeq     int64
	shipSeq   int64

	orders       map[int64]model.Order
	orderByUUID  map[uuid.UUID]int64
	samples      map[int64]model.Sample
	sampleByUUID map[uuid.UUID]int64
	qcBySample   map[int64]model.QCResult
	shipBySample map[int64]model.Shipment
}

func newState() *state {
	return &state{
		orders:       make(map[int64]model.Order),
		orderByUUID:  make(map[uuid.UUID]int64),
		samples:      make(map[int64]model.Sample),
		sampleByUUID: make(map[uuid.UUID]int64),
		qcBySample:   make(map[int64]model.QCResult),
		shipBySample: make(map[int64]model.Shipment),
	}
}

// journal records how to undo the writes of one transaction.
type journal struct {
	seqs [4]int64
	undo []func()
}

func (s *state) seqs() [4]int64 {
	return [4]int64{s.orderSeq, s.sampleSeq, s.qcSeq, s.shipSeq}
}

func (j *journal) rollback(st *state) {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	st.orderSeq, st.sampleSeq, st.qcSeq, st.shipSeq = j.seqs[0], j.seqs[1], j.seqs[2], j.seqs[3]
}

// put sets m[k] and, inside a transaction, remembers the previous entry.
func put[K comparable, V any](j *journal, m map[K]V, k K, v V) {
	if j != nil {
		old, existed := m[k]
		j.undo = append(j.undo, func() {
			if existed {
				m[k] = old
			} else {
				delete(m, k)
			}
		})
	}
	m[k] = v
}

type txKey struct {
	store *Store
}

// Store keeps every record in process memory. Writers are serialised and
// apply in place; a transaction keeps an undo journal so a failed fn puts
// back exactly the entries it touched. The cost of a write is proportional
// to the rows it changes, not to the size of the store. Nothing survives a
// restart.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

type Option func(*Store)

// WithClock replaces the time source used for unset timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		st: newState(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repo.TrackingRepo = (*Store)(nil)

func (s *Store) txJournal(ctx context.Context) (*journal, bool) {
	j, ok := ctx.Value(txKey{store: s}).(*journal)
	return j, ok
}

// ExecTx holds the write lock for the whole of fn. Nested calls join the
// outer transaction.
func (s *Store) ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := s.txJournal(ctx); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j := &journal{seqs: s.st.seqs()}
	defer func() {
		if r := recover(); r != nil {
			j.rollback(s.st)
			panic(r)
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{store: s}, j)); err != nil {
		j.rollback(s.st)
		return err
	}
	return nil
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if _, ok := s.txJournal(ctx); ok {
		return fn(s.st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write applies one statement. Every statement validates before it mutates,
// so outside a transaction a rejected statement leaves nothing behind.
func (s *Store) write(ctx context.Context, fn func(st *state, j *journal) error) error {
	if j, ok := s.txJournal(ctx); ok {
		return fn(s.st, j)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st, nil)
}

func (s *Store) stamp(b *model.BaseModel) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
}

func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.write(ctx, func(st *state, j *journal) error {
		if _, ok := st.orderByUUID[order.UUID]; ok {
			return code.DuplicateKeyErr.WithMsgf("order uuid %s", order.UUID)
		}
		st.orderSeq++
		order.ID = st.orderSeq
		s.stamp(&order.BaseModel)
		put(j, st.orders, order.ID, *order)
		put(j, st.orderByUUID, order.UUID, order.ID)
		return nil
	})
}

func (s *Store) GetOrderByUUID(ctx context.Context, orderUUID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.read(ctx, func(st *state) error {
		id, ok := st.orderByUUID[orderUUID]
		if !ok {
			return code.RecordNotFound.WithMsg("order not found")
		}
		o := st.orders[id]
		order = &o
		return nil
	})
	return order, err
}

func (s *Store) CreateSamples(ctx context.Context, samples []*model.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.write(ctx, func(st *state, j *journal) error {
		batch := make(map[uuid.UUID]struct{}, len(samples))
		for _, sample := range samples {
			if _, ok := st.sampleByUUID[sample.UUID]; ok {
				return code.DuplicateKeyErr.WithMsgf("sample uuid %s", sample.UUID)
			}
			if _, ok := batch[sample.UUID]; ok {
				return code.DuplicateKeyErr.WithMsgf("sample uuid %s", sample.UUID)
			}
			batch[sample.UUID] = struct{}{}
		}

		for _, sample := range samples {
			st.sampleSeq++
			sample.ID = st.sampleSeq
			if sample.Status == "" {
				sample.Status = model.SampleOrdered
			}
			s.stamp(&sample.BaseModel)
			put(j, st.samples, sample.ID, *sample)
			put(j, st.sampleByUUID, sample.UUID, sample.ID)
		}
		return nil
	})
}

func (s *Store) GetSampleByUUID(ctx context.Context, sampleUUID uuid.UUID) (*model.Sample, error) {
	var sample *model.Sample
	err := s.read(ctx, func(st *state) error {
		id, ok := st.sampleByUUID[sampleUUID]
		if !ok {
			return code.RecordNotFound.WithMsg("sample not found")
		}
		found := st.samples[id]
		sample = &found
		return nil
	})
	return sample, err
}

func sortByID(samples []*model.Sample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].ID < samples[j].ID
	})
}

func (s *Store) GetSamplesByUUIDs(ctx context.Context, sampleUUIDs []uuid.UUID) ([]*model.Sample, error) {
	samples := make([]*model.Sample, 0, len(sampleUUIDs))
	err := s.read(ctx, func(st *state) error {
		seen := make(map[int64]struct{}, len(sampleUUIDs))
		for _, id := range sampleUUIDs {
			sampleID, ok := st.sampleByUUID[id]
			if !ok {
				continue
			}
			if _, dup := seen[sampleID]; dup {
				continue
			}
			seen[sampleID] = struct{}{}
			found := st.samples[sampleID]
			samples = append(samples, &found)
		}
		return nil
	})
	sortByID(samples)
	return samples, err
}

func (s *Store) GetSamplesByOrderID(ctx context.Context, orderID int64) ([]*model.Sample, error) {
	samples := make([]*model.Sample, 0)
	err := s.read(ctx, func(st *state) error {
		for _, sample := range st.samples {
			if sample.OrderID == orderID {
				found := sample
				samples = append(samples, &found)
			}
		}
		return nil
	})
	sortByID(samples)
	return samples, err
}

func byCreatedThenUUID(samples []*model.Sample) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := samples[i], samples[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return uuid.Less(a.UUID, b.UUID)
	}
}

func (s *Store) ListSamplesToMake(ctx context.Context, limit int) ([]*model.Sample, error) {
	samples := make([]*model.Sample, 0)
	err := s.read(ctx, func(st *state) error {
		for id, sample := range st.samples {
			if sample.Status != model.SampleOrdered {
				continue
			}
			if _, ok := st.qcBySample[id]; ok {
				continue
			}
			found := sample
			samples = append(samples, &found)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(samples, byCreatedThenUUID(samples))
	if limit >= 0 && len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

func (s *Store) ListSamplesToShip(ctx context.Context) ([]*repo.SampleToShip, error) {
	samples := make([]*model.Sample, 0)
	qc := make(map[int64]model.QCResult)
	err := s.read(ctx, func(st *state) error {
		for id, sample := range st.samples {
			if sample.Status != model.SamplePassedQC {
				continue
			}
			result, ok := st.qcBySample[id]
			if !ok {
				continue
			}
			found := sample
			samples = append(samples, &found)
			qc[id] = result
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(samples, byCreatedThenUUID(samples))
	rows := make([]*repo.SampleToShip, 0, len(samples))
	for _, sample := range samples {
		result := qc[sample.ID]
		rows = append(rows, &repo.SampleToShip{
			SampleUUID: sample.UUID,
			PlateID:    result.PlateID,
			Well:       result.Well,
		})
	}
	return rows, nil
}

func (s *Store) UpdateSampleStatus(ctx context.Context, sampleID int64, from, to model.SampleStatus, at time.Time) error {
	return s.write(ctx, func(st *state, j *journal) error {
		sample, ok := st.samples[sampleID]
		if !ok || sample.Status != from {
			return code.SampleStatusConflictErr.WithMsgf("sample id %d is no longer %s", sampleID, from)
		}
		sample.Status = to
		sample.UpdatedAt = at
		put(j, st.samples, sampleID, sample)
		return nil
	})
}

func (s *Store) CreateQCResults(ctx context.Context, results []*model.QCResult) error {
	if len(results) == 0 {
		return nil
	}
	return s.write(ctx, func(st *state, j *journal) error {
		batch := make(map[int64]struct{}, len(results))
		for _, result := range results {
			if _, ok := st.qcBySample[result.SampleID]; ok {
				return code.DuplicateKeyErr.WithMsgf("qc result for sample id %d", result.SampleID)
			}
			if _, ok := batch[result.SampleID]; ok {
				return code.DuplicateKeyErr.WithMsgf("qc result for sample id %d", result.SampleID)
			}
			batch[result.SampleID] = struct{}{}
		}

		for _, result := range results {
			st.qcSeq++
			result.ID = st.qcSeq
			if result.CreatedAt.IsZero() {
				result.CreatedAt = s.now()
			}
			put(j, st.qcBySample, result.SampleID, *result)
		}
		return nil
	})
}

func (s *Store) GetQCResultsBySampleIDs(ctx context.Context, sampleIDs []int64) ([]*model.QCResult, error) {
	results := make([]*model.QCResult, 0, len(sampleIDs))
	err := s.read(ctx, func(st *state) error {
		for _, id := range sampleIDs {
			if result, ok := st.qcBySample[id]; ok {
				found := result
				results = append(results, &found)
			}
		}
		return nil
	})
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results, err
}

func (s *Store) CreateShipments(ctx context.Context, shipments []*model.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	return s.write(ctx, func(st *state, j *journal) error {
		batch := make(map[int64]struct{}, len(shipments))
		for _, shipment := range shipments {
			if _, ok := st.shipBySample[shipment.SampleID]; ok {
				return code.DuplicateKeyErr.WithMsgf("shipment for sample id %d", shipment.SampleID)
			}
			if _, ok := batch[shipment.SampleID]; ok {
				return code.DuplicateKeyErr.WithMsgf("shipment for sample id %d", shipment.SampleID)
			}
			batch[shipment.SampleID] = struct{}{}
		}

		for _, shipment := range shipments {
			st.shipSeq++
			shipment.ID = st.shipSeq
			if shipment.ShippedAt.IsZero() {
				shipment.ShippedAt = s.now()
			}
			put(j, st.shipBySample, shipment.SampleID, *shipment)
		}
		return nil
	})
}

// Shipment returns the shipment recorded for a sample, if any.
func (s *Store) Shipment(ctx context.Context, sampleID int64) (*model.Shipment, bool) {
	var (
		shipment model.Shipment
		ok       bool
	)
	_ = s.read(ctx, func(st *state) error {
		shipment, ok = st.shipBySample[sampleID]
		return nil
	})
	return &shipment, ok
}
