package relay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/core/notify/events"
	"github.com/scienceol/sampletrack/pkg/repo"
)

type recordingHook struct {
	mu     sync.Mutex
	events []*repo.WebhookEvent
	fail   int
}

func (h *recordingHook) Post(_ context.Context, event *repo.WebhookEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail > 0 {
		h.fail--
		return errors.New("webhook down")
	}
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) delivered() []*repo.WebhookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*repo.WebhookEvent(nil), h.events...)
}

func newTestRelay(t *testing.T, hook *recordingHook) (*relayImpl, *events.Events) {
	t.Helper()
	center := events.NewWithClient(nil)
	svc, err := NewWith(center, hook, 2)
	if err != nil {
		t.Fatalf("NewWith: %v", err)
	}
	r := svc.(*relayImpl)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r, center
}

func TestRelayForwardsStatusChange(t *testing.T) {
	hook := &recordingHook{}
	r, center := newTestRelay(t, hook)
	ctx := context.Background()

	sampleUUID := uuid.NewV4()
	msg := &notify.SendMsg{
		Channel: notify.SampleStatusChanged,
		Data:    &notify.StatusChange{SampleUUID: sampleUUID, From: "ORDERED", To: "PROCESSING"},
	}
	if err := center.Broadcast(ctx, msg); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	// the same message delivered again is dropped
	if err := center.Broadcast(ctx, msg); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	r.Close(ctx)

	got := hook.delivered()
	if len(got) != 1 {
		t.Fatalf("expected exactly one delivery, got %d", len(got))
	}
	if got[0].UUID != msg.UUID || got[0].Action != string(notify.SampleStatusChanged) {
		t.Fatalf("unexpected event %+v", got[0])
	}
	if !strings.Contains(string(got[0].Data), sampleUUID.String()) {
		t.Fatalf("payload lost the sample uuid: %s", got[0].Data)
	}
}

func TestRelayRetriesAfterFailedPost(t *testing.T) {
	hook := &recordingHook{fail: 1}
	r, _ := newTestRelay(t, hook)
	defer r.Close(context.Background())
	ctx := context.Background()

	id := uuid.NewV4()
	payload := `{"action":"order-created","uuid":"` + id.String() + `","data":{}}`
	if err := r.onMessage(ctx, payload); err != nil {
		t.Fatalf("onMessage: %v", err)
	}
	waitFor(t, func() bool {
		_, ok := r.seen.Get(id.String())
		return !ok
	})

	if err := r.onMessage(ctx, payload); err != nil {
		t.Fatalf("onMessage: %v", err)
	}
	waitFor(t, func() bool { return len(hook.delivered()) == 1 })
}

func TestRelayRejectsBadPayload(t *testing.T) {
	r, _ := newTestRelay(t, &recordingHook{})
	defer r.Close(context.Background())

	if err := r.onMessage(context.Background(), "not json"); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := r.onMessage(context.Background(), `{"action":"order-created"}`); err == nil {
		t.Fatalf("expected missing uuid error")
	}
}

func TestSweepForgetsOldIDs(t *testing.T) {
	r, _ := newTestRelay(t, &recordingHook{})
	defer r.Close(context.Background())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	old, fresh := uuid.NewV4(), uuid.NewV4()
	r.seen.Set(old.String(), now.Add(-2*seenTTL).Unix())
	r.seen.Set(fresh.String(), now.Unix())

	r.sweep()
	if _, ok := r.seen.Get(old.String()); ok {
		t.Fatalf("expected old id to be swept")
	}
	if _, ok := r.seen.Get(fresh.String()); !ok {
		t.Fatalf("expected fresh id to be kept")
	}
}

func TestStartFailsWhenActionTaken(t *testing.T) {
	center := events.NewWithClient(nil)
	if err := center.Registry(context.Background(), notify.OrderCreated, func(context.Context, string) error { return nil }); err != nil {
		t.Fatalf("Registry: %v", err)
	}
	svc, err := NewWith(center, &recordingHook{}, 1)
	if err != nil {
		t.Fatalf("NewWith: %v", err)
	}
	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("expected registration conflict")
	}
	svc.Close(context.Background())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
