package notify

import (
	"context"
	"time"

	"github.com/scienceol/sampletrack/pkg/common/uuid"
)

type Action string

const (
	SampleStatusChanged Action = "sample-status-changed"
	OrderCreated        Action = "order-created"
)

type SendMsg struct {
	Channel   Action    `json:"action"`
	OrderUUID uuid.UUID `json:"order_uuid,omitempty"`
	Data      any       `json:"data"`
	UUID      uuid.UUID `json:"uuid"`
	Timestamp int64     `json:"timestamp"`
}

// StatusChange is the payload of SampleStatusChanged.
type StatusChange struct {
	SampleUUID uuid.UUID `json:"sample_uuid"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	At         time.Time `json:"at"`
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}
