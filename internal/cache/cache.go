package cache

import (
	"context"
	"time"
)

// OutcomeCache stores successful dispatch outcomes for quick lookup by
// delivery-report consumers
type OutcomeCache interface {
	StoreOutcome(ctx context.Context, smsKey int, messageID string, sentAt time.Time) error
	GetOutcome(ctx context.Context, smsKey int) (*Outcome, error)
}

// Outcome is the cached view of a successful dispatch
type Outcome struct {
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}
