package relay

import "context"

// Service forwards tracking notifications to an external webhook.
type Service interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
}
