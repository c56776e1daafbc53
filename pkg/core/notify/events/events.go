package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/common/uuid"
	"github.com/scienceol/sampletrack/pkg/core/notify"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/middleware/redis"
	"github.com/scienceol/sampletrack/pkg/utils"
)

// Events broadcasts between processes over redis pub/sub. Without a redis
// client messages are handed to the handlers of this process only.

var (
	once   sync.Once
	center *Events
)

type Events struct {
	actions *haxmap.Map[notify.Action, notify.HandleFunc]
	subs    *haxmap.Map[notify.Action, *r.PubSub]
	client  *r.Client
	wait    sync.WaitGroup
}

func NewEvents() notify.MsgCenter {
	once.Do(func() {
		center = NewWithClient(redis.GetClient())
	})

	return center
}

func NewWithClient(client *r.Client) *Events {
	return &Events{
		actions: haxmap.New[notify.Action, notify.HandleFunc](),
		subs:    haxmap.New[notify.Action, *r.PubSub](),
		client:  client,
	}
}

func (e *Events) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, loaded := e.actions.GetOrSet(msgName, handleFunc); loaded {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}
	if e.client == nil {
		return nil
	}

	sub := e.client.Subscribe(ctx, string(msgName))
	e.subs.Set(msgName, sub)

	e.wait.Add(1)
	utils.SafelyGo(func() {
		defer e.wait.Done()
		defer e.unsubscribe(ctx, msgName, sub)

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					logger.Infof(ctx, "exit redis channel name: %s", string(msgName))
					return
				}
				if msg == nil {
					continue
				}
				if err := handleFunc(ctx, msg.Payload); err != nil {
					logger.Errorf(ctx, "handle redis msg fail name: %s, err: %+v", msgName, err)
				}
			case <-ctx.Done():
				logger.Infof(ctx, "exit redis channel name: %s", string(msgName))
				return
			}
		}
	}, func(err error) {
		logger.Errorf(ctx, "Registry handle msg err: %+v", err)
	})
	return nil
}

func (e *Events) unsubscribe(ctx context.Context, msgName notify.Action, sub *r.PubSub) {
	if err := sub.Unsubscribe(context.WithoutCancel(ctx), string(msgName)); err != nil {
		logger.Errorf(ctx, "unsubscribe fail msg name: %s, err: %+v", msgName, err)
	}
	_ = sub.Close()
	e.subs.Del(msgName)
	e.actions.Del(msgName)
}

func (e *Events) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}

	if e.client == nil {
		handle, ok := e.actions.Get(msg.Channel)
		if !ok {
			return nil
		}
		if err := handle(ctx, string(data)); err != nil {
			logger.Errorf(ctx, "handle local msg fail name: %s, err: %+v", msg.Channel, err)
		}
		return nil
	}

	if err := e.client.Publish(ctx, string(msg.Channel), data).Err(); err != nil {
		logger.Errorf(ctx, "send msg fail action: %s, err: %+v", msg.Channel, err)
		return code.NotifySendMsgErr.WithErr(err)
	}
	return nil
}

func (e *Events) Close(ctx context.Context) error {
	e.subs.ForEach(func(name notify.Action, sub *r.PubSub) bool {
		if err := sub.Close(); err != nil {
			logger.Warnf(ctx, "close subscription %s err: %+v", name, err)
		}
		return true
	})
	e.wait.Wait()
	return nil
}
