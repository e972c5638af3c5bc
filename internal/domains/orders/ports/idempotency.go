package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyKeyExists is returned when a key is inserted twice.
var ErrIdempotencyKeyExists = errors.New("idempotency key already exists")

// IdempotencyRecord captures the association between a client-supplied key and the order it placed.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

// IdempotencyRepository persists idempotency keys so retried placements can be replayed safely.
type IdempotencyRepository interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Create inserts the record or fails with ErrIdempotencyKeyExists.
	Create(ctx context.Context, record IdempotencyRecord) error
	// PurgeBefore deletes records created before cutoff and reports how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
