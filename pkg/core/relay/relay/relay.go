package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/panjf2000/ants/v2"
	"github.com/scienceol/sampletrack/internal/config"
	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/core/notify/events"
	core "github.com/scienceol/sampletrack/pkg/core/relay"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo"
	"github.com/scienceol/sampletrack/pkg/repo/webhook"
	"github.com/scienceol/sampletrack/pkg/utils"
)

const (
	// seenTTL bounds how long a delivered message id is remembered.
	seenTTL       = 10 * time.Minute
	sweepInterval = time.Minute
	releaseWait   = 30 * time.Second
)

var relayActions = []notify.Action{notify.OrderCreated, notify.SampleStatusChanged}

// message mirrors notify.SendMsg with the payload kept raw.
type message struct {
	Channel   notify.Action   `json:"action"`
	OrderUUID uuid.UUID       `json:"order_uuid"`
	Data      json.RawMessage `json:"data"`
	UUID      uuid.UUID       `json:"uuid"`
	Timestamp int64           `json:"timestamp"`
}

type relayImpl struct {
	msgCenter notify.MsgCenter
	hook      repo.WebhookRepo
	pool      *ants.Pool
	seen      *haxmap.Map[string, int64]
	now       func() time.Time
	cancel    context.CancelFunc
	wait      sync.WaitGroup
}

func New() (core.Service, error) {
	return NewWith(events.NewEvents(), webhook.NewWebhookRepo(), config.Global().Relay.Workers)
}

func NewWith(msgCenter notify.MsgCenter, hook repo.WebhookRepo, workers int) (core.Service, error) {
	if workers <= 0 {
		workers = ants.DefaultAntsPoolSize
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &relayImpl{
		msgCenter: msgCenter,
		hook:      hook,
		pool:      pool,
		seen:      haxmap.New[string, int64](),
		now:       time.Now,
	}, nil
}

func (r *relayImpl) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)
	for _, action := range relayActions {
		if err := r.msgCenter.Registry(ctx, action, r.onMessage); err != nil {
			r.cancel()
			return err
		}
	}

	r.wait.Add(1)
	utils.SafelyGo(func() {
		defer r.wait.Done()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}, func(err error) {
		logger.Errorf(ctx, "relay sweep err: %+v", err)
	})

	logger.Infof(ctx, "relay started actions: %v", relayActions)
	return nil
}

// onMessage hands a notification to the worker pool. Redelivered messages
// with an id already forwarded are dropped.
func (r *relayImpl) onMessage(ctx context.Context, payload string) error {
	msg := &message{}
	if err := json.Unmarshal([]byte(payload), msg); err != nil {
		return code.UnmarshalWSDataErr.WithErr(err)
	}
	if msg.UUID.IsNil() {
		return code.ParamErr.WithMsg("notification without uuid")
	}
	if _, loaded := r.seen.GetOrSet(msg.UUID.String(), r.now().Unix()); loaded {
		logger.Debugf(ctx, "relay skip duplicate msg: %s", msg.UUID)
		return nil
	}

	event := &repo.WebhookEvent{
		UUID:      msg.UUID,
		Action:    string(msg.Channel),
		OrderUUID: msg.OrderUUID,
		Data:      msg.Data,
		Timestamp: msg.Timestamp,
	}
	err := r.pool.Submit(func() {
		if err := r.hook.Post(context.WithoutCancel(ctx), event); err != nil {
			logger.Errorf(ctx, "relay msg: %s action: %s err: %+v", event.UUID, event.Action, err)
			// forget it so a redelivery gets another chance
			r.seen.Del(event.UUID.String())
		}
	})
	if err != nil {
		r.seen.Del(msg.UUID.String())
		return err
	}
	return nil
}

func (r *relayImpl) sweep() {
	cutoff := r.now().Add(-seenTTL).Unix()
	expired := make([]string, 0)
	r.seen.ForEach(func(id string, at int64) bool {
		if at < cutoff {
			expired = append(expired, id)
		}
		return true
	})
	if len(expired) > 0 {
		r.seen.Del(expired...)
	}
}

func (r *relayImpl) Close(ctx context.Context) {
	if r.cancel != nil {
		r.cancel()
	}
	if err := r.msgCenter.Close(ctx); err != nil {
		logger.Warnf(ctx, "relay close msg center err: %+v", err)
	}
	r.wait.Wait()
	if err := r.pool.ReleaseTimeout(releaseWait); err != nil {
		logger.Warnf(ctx, "relay release pool err: %+v", err)
	}
}
