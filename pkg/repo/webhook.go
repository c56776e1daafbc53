package repo

import (
	"context"
	"encoding/json"

	"github.com/scienceol/sampletrack/pkg/common/uuid"
)

// WebhookEvent is the body posted to the configured webhook.
type WebhookEvent struct {
	UUID      uuid.UUID       `json:"uuid"`
	Action    string          `json:"action"`
	OrderUUID uuid.UUID       `json:"order_uuid,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type WebhookRepo interface {
	Post(ctx context.Context, event *WebhookEvent) error
}
