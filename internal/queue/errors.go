package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitExceeded is returned when admission would exceed the
	// user's tier allowance.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrNotFound is returned when a queue item does not exist.
	ErrNotFound = errors.New("queue item not found")

	// ErrNotAuthorized is returned when a caller touches an item owned by
	// a different user.
	ErrNotAuthorized = errors.New("not authorized for this queue item")

	// ErrSchedulerUnavailable is returned when the deferred execution
	// could not be registered. Admission is all-or-nothing, so the item
	// is not admitted when this is returned.
	ErrSchedulerUnavailable = errors.New("task scheduler unavailable")
)

// RateLimitError carries which window was exceeded for which tier.
// errors.Is(err, ErrRateLimitExceeded) holds for every instance.
type RateLimitError struct {
	Tier    string
	Window  string // "daily", "weekly", or "tier" for zero-allowance tiers
	Limit   int
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s application limit reached for tier %s (%d)", e.Window, e.Tier, e.Limit)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}
