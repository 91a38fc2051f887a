package queue

import (
	"context"
	"time"

	"go-autoapply/internal/models"
)

// Repository is the durable store of record for queue items. It is the
// sole mutator of persisted state.
type Repository interface {
	Create(ctx context.Context, item *models.QueueItem) error
	// Get returns (nil, nil) when the item does not exist.
	Get(ctx context.Context, id string) (*models.QueueItem, error)
	Update(ctx context.Context, item *models.QueueItem) error
	Delete(ctx context.Context, id string) error
	// GetByUser lists a user's items, optionally filtered by status
	// (nil means all).
	GetByUser(ctx context.Context, userID string, status *models.QueueStatus) ([]*models.QueueItem, error)
	// UpdateStatusBulk moves every item of a user from one status to
	// another and reports how many rows changed.
	UpdateStatusBulk(ctx context.Context, userID string, from, to models.QueueStatus) (int64, error)
}

// CounterStore holds the rate-limit counters. Increments must be atomic
// per key; durability beyond the rate-limit window is not required.
type CounterStore interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// TaskScheduler registers deferred executions. The scheduled callback
// receives only the item id and must reload state before acting.
type TaskScheduler interface {
	Schedule(ctx context.Context, itemID string, at time.Time) error
	Revoke(ctx context.Context, itemID string) error
}
