package executor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go-autoapply/internal/models"
	"go-autoapply/internal/queue"
)

// AttemptRunner performs one end-to-end application attempt.
type AttemptRunner interface {
	RunAttempt(ctx context.Context, item *models.QueueItem) (*models.AttemptResult, error)
}

// Notifier pushes terminal outcomes to the operator. Optional.
type Notifier interface {
	NotifyOutcome(item *models.QueueItem) error
}

// AttemptFailedError aggregates everything that went wrong in one attempt.
type AttemptFailedError struct {
	Reasons []string
}

func (e *AttemptFailedError) Error() string {
	if len(e.Reasons) == 0 {
		return "attempt failed"
	}
	return "attempt failed: " + strings.Join(e.Reasons, "; ")
}

const maxRetryDelay = 30 * time.Minute

// Executor re-enters queue items at their scheduled time, runs the
// browser attempt and manages retry-on-failure. Attempts for one item are
// strictly sequential; items of different users run in parallel.
type Executor struct {
	repo      queue.Repository
	scheduler queue.TaskScheduler
	runner    AttemptRunner
	notifier  Notifier
	logger    *slog.Logger
	baseDelay time.Duration

	now func() time.Time
}

func New(repo queue.Repository, scheduler queue.TaskScheduler, runner AttemptRunner, notifier Notifier, logger *slog.Logger, baseDelay time.Duration) *Executor {
	if baseDelay <= 0 {
		baseDelay = time.Minute
	}
	return &Executor{
		repo:      repo,
		scheduler: scheduler,
		runner:    runner,
		notifier:  notifier,
		logger:    logger,
		baseDelay: baseDelay,
		now:       time.Now,
	}
}

// Execute is the scheduled callback. It receives only the item id and
// reloads state before acting: a cancellation requested before this point
// is honored here, one racing with the attempt is not.
func (e *Executor) Execute(ctx context.Context, itemID string) {
	item, err := e.repo.Get(ctx, itemID)
	if err != nil {
		e.logger.Error("could not load queue item", "queue_id", itemID, "error", err)
		return
	}
	if item == nil {
		e.logger.Debug("scheduled item no longer exists", "queue_id", itemID)
		return
	}
	if item.Status != models.StatusScheduled {
		e.logger.Info("skipping item not in schedulable state",
			"queue_id", itemID, "status", item.Status)
		return
	}

	now := e.now()
	if err := item.Transition(models.StatusInProgress); err != nil {
		e.logger.Error("illegal transition into attempt", "queue_id", itemID, "error", err)
		return
	}
	item.AttemptCount++
	item.LastAttemptAt = &now
	if err := e.repo.Update(ctx, item); err != nil {
		e.logger.Error("could not mark item in progress", "queue_id", itemID, "error", err)
		return
	}

	result, runErr := e.runner.RunAttempt(ctx, item)
	if result != nil && result.ScreenshotPath != "" {
		item.Screenshot = &result.ScreenshotPath
	}

	if runErr == nil && result != nil && result.Success {
		e.complete(ctx, item, result)
		return
	}
	e.fail(ctx, item, result, runErr)
}

func (e *Executor) complete(ctx context.Context, item *models.QueueItem, result *models.AttemptResult) {
	if err := item.Transition(models.StatusCompleted); err != nil {
		e.logger.Error("illegal completion transition", "queue_id", item.ID, "error", err)
		return
	}
	item.LastError = nil
	if err := e.repo.Update(ctx, item); err != nil {
		e.logger.Error("could not persist completion", "queue_id", item.ID, "error", err)
		return
	}

	e.logger.Info("application completed",
		"queue_id", item.ID,
		"attempt", item.AttemptCount,
		"fields_filled", len(result.FilledFields),
		"pages", result.PagesTraversed)
	e.notify(item)
}

func (e *Executor) fail(ctx context.Context, item *models.QueueItem, result *models.AttemptResult, runErr error) {
	attemptErr := &AttemptFailedError{}
	if runErr != nil {
		attemptErr.Reasons = append(attemptErr.Reasons, runErr.Error())
	}
	if result != nil {
		attemptErr.Reasons = append(attemptErr.Reasons, result.Errors...)
	}
	msg := attemptErr.Error()
	item.LastError = &msg

	if err := item.Transition(models.StatusFailed); err != nil {
		e.logger.Error("illegal failure transition", "queue_id", item.ID, "error", err)
		return
	}

	if item.AttemptCount >= item.MaxAttempts {
		if err := e.repo.Update(ctx, item); err != nil {
			e.logger.Error("could not persist terminal failure", "queue_id", item.ID, "error", err)
			return
		}
		e.logger.Warn("application failed permanently",
			"queue_id", item.ID,
			"attempts", item.AttemptCount,
			"error", msg)
		e.notify(item)
		return
	}

	// Retries remain: straight back to SCHEDULED with exponential backoff.
	// FAILED is never persisted while attempts are left.
	retryAt := e.now().Add(e.backoff(item.AttemptCount))
	if err := item.Transition(models.StatusScheduled); err != nil {
		e.logger.Error("illegal retry transition", "queue_id", item.ID, "error", err)
		return
	}
	item.ScheduledAt = &retryAt
	if err := e.repo.Update(ctx, item); err != nil {
		e.logger.Error("could not persist retry schedule", "queue_id", item.ID, "error", err)
		return
	}
	if err := e.scheduler.Schedule(ctx, item.ID, retryAt); err != nil {
		// The row stays SCHEDULED, so startup recovery re-registers it.
		e.logger.Error("could not register retry", "queue_id", item.ID, "error", err)
	}

	e.logger.Info("attempt failed, retry scheduled",
		"queue_id", item.ID,
		"attempt", item.AttemptCount,
		"retry_at", retryAt,
		"error", msg)
}

func (e *Executor) backoff(attempt int) time.Duration {
	delay := e.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func (e *Executor) notify(item *models.QueueItem) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.NotifyOutcome(item); err != nil {
		e.logger.Warn("outcome notification failed", "queue_id", item.ID, "error", err)
	}
}
