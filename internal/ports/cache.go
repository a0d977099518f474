package ports

import (
	"context"
	"time"
)

// EventDedupStore remembers processed webhook event ids so at-least-once
// delivery collapses to exactly-once processing.
type EventDedupStore interface {
	// MarkIfFirst records the event id and reports whether this was the
	// first time it was seen within the TTL.
	MarkIfFirst(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// Forget drops a previously marked event id. Used when processing
	// failed after the mark so the gateway's redelivery is not ignored.
	Forget(ctx context.Context, eventID string) error
}

// RateLimitStore counts occurrences of a key within a rolling window.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
