// Package notifytest provides a notify.MsgCenter that records broadcasts.
package notifytest

import (
	"context"
	"sync"

	"github.com/scienceol/sampletrack/pkg/core/notify"
)

type Recorder struct {
	mu   sync.Mutex
	msgs []*notify.SendMsg
	// Err is returned from every Broadcast when set.
	Err error
}

var _ notify.MsgCenter = (*Recorder)(nil)

func (r *Recorder) Registry(context.Context, notify.Action, notify.HandleFunc) error {
	return nil
}

func (r *Recorder) Broadcast(_ context.Context, msg *notify.SendMsg) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.Err
}

func (r *Recorder) Close(context.Context) error {
	return nil
}

// Messages returns the recorded broadcasts for action, all of them when
// action is empty.
func (r *Recorder) Messages(action notify.Action) []*notify.SendMsg {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*notify.SendMsg, 0, len(r.msgs))
	for _, m := range r.msgs {
		if action == "" || m.Channel == action {
			res = append(res, m)
		}
	}
	return res
}
