package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-autoapply/internal/models"
)

// Manager owns admission, rate limiting, optimal-time scheduling and the
// pre-execution lifecycle of queue items. All collaborators are injected;
// the manager holds no global state and no cross-call locks.
type Manager struct {
	repo      Repository
	counters  CounterStore
	scheduler TaskScheduler
	logger    *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewManager(repo Repository, counters CounterStore, scheduler TaskScheduler, logger *slog.Logger) *Manager {
	return &Manager{
		repo:      repo,
		counters:  counters,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// AddRequest carries everything needed to admit one application.
type AddRequest struct {
	UserID        string `json:"user_id"`
	JobID         string `json:"job_id"`
	ResumeID      string `json:"resume_id"`
	CoverLetterID string `json:"cover_letter_id"`
	Tier          string `json:"tier"`
	City          string `json:"city"`
	Country       string `json:"country"`
	Priority      int    `json:"priority"`
}

// AddToQueue admits one application: enforces the tier's daily and weekly
// ceilings, computes the optimal submission time, persists the item as
// SCHEDULED and registers the deferred execution. Admission is
// all-or-nothing: if the scheduler registration fails the item is removed
// again and ErrSchedulerUnavailable is returned.
func (m *Manager) AddToQueue(ctx context.Context, req AddRequest) (*models.QueueItem, error) {
	limits := LimitsForTier(req.Tier)
	if limits.Daily == 0 {
		return nil, &RateLimitError{
			Tier:    req.Tier,
			Window:  "tier",
			Message: "auto-apply is not included in your plan - upgrade to queue applications",
		}
	}

	now := m.now()
	dayKey, weekKey := CounterKeys(req.UserID, now)

	daily, _, err := m.counters.Get(ctx, dayKey)
	if err != nil {
		return nil, fmt.Errorf("reading daily counter: %w", err)
	}
	if daily >= int64(limits.Daily) {
		return nil, &RateLimitError{Tier: req.Tier, Window: "daily", Limit: limits.Daily}
	}

	weekly, _, err := m.counters.Get(ctx, weekKey)
	if err != nil {
		return nil, fmt.Errorf("reading weekly counter: %w", err)
	}
	if weekly >= int64(limits.Weekly) {
		return nil, &RateLimitError{Tier: req.Tier, Window: "weekly", Limit: limits.Weekly}
	}

	scheduledAt := OptimalSubmitTime(now, req.City, req.Country)

	item := &models.QueueItem{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		JobID:         req.JobID,
		ResumeID:      req.ResumeID,
		CoverLetterID: req.CoverLetterID,
		Priority:      req.Priority,
		Status:        models.StatusScheduled,
		ScheduledAt:   &scheduledAt,
		AttemptCount:  0,
		MaxAttempts:   3,
		CreatedAt:     now,
	}

	if err := m.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("persisting queue item: %w", err)
	}

	if err := m.scheduler.Schedule(ctx, item.ID, scheduledAt); err != nil {
		// Roll the durable write back; a missing row is also tolerated by
		// the executor, so a failed delete cannot cause a phantom attempt.
		if delErr := m.repo.Delete(ctx, item.ID); delErr != nil {
			m.logger.Warn("could not roll back unscheduled item",
				"queue_id", item.ID, "error", delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrSchedulerUnavailable, err)
	}

	// Counters move only after the admission is fully committed.
	for _, key := range []string{dayKey, weekKey} {
		if _, err := m.counters.Incr(ctx, key); err != nil {
			m.logger.Warn("counter increment failed", "key", key, "error", err)
		}
	}

	m.logger.Info("application queued",
		"queue_id", item.ID,
		"user_id", item.UserID,
		"job_id", item.JobID,
		"scheduled_at", scheduledAt)

	return item, nil
}

// CancelApplication cancels a pending or scheduled item. Items already in
// progress or terminal are returned unchanged; cancellation there is a
// no-op, not an error. The scheduler revocation is best-effort since the
// executor re-checks status before starting browser work.
func (m *Manager) CancelApplication(ctx context.Context, userID, queueID string) (*models.QueueItem, error) {
	item, err := m.repo.Get(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if item.UserID != userID {
		return nil, ErrNotAuthorized
	}

	if item.Status != models.StatusPending && item.Status != models.StatusScheduled {
		return item, nil
	}

	if err := item.Transition(models.StatusCancelled); err != nil {
		return nil, err
	}
	if err := m.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("persisting cancellation: %w", err)
	}

	if err := m.scheduler.Revoke(ctx, queueID); err != nil {
		m.logger.Warn("scheduler revoke failed", "queue_id", queueID, "error", err)
	}

	m.logger.Info("application cancelled", "queue_id", queueID, "user_id", userID)
	return item, nil
}

// GetUserQueue is a read-only projection of a user's items, optionally
// filtered by status. Ordering is the caller's concern.
func (m *Manager) GetUserQueue(ctx context.Context, userID string, status *models.QueueStatus) ([]*models.QueueItem, error) {
	return m.repo.GetByUser(ctx, userID, status)
}

// PauseUserQueue places every pending/scheduled item of a user on manual
// hold and reports how many were paused.
func (m *Manager) PauseUserQueue(ctx context.Context, userID string) (int64, error) {
	n, err := m.repo.UpdateStatusBulk(ctx, userID, models.StatusScheduled, models.StatusPaused)
	if err != nil {
		return 0, err
	}
	p, err := m.repo.UpdateStatusBulk(ctx, userID, models.StatusPending, models.StatusPaused)
	if err != nil {
		return n, err
	}
	return n + p, nil
}

// CounterKeys returns the per-day and per-ISO-week counter keys for a user.
// The week key is anchored on Monday so the weekly window matches the
// calendar week.
func CounterKeys(userID string, now time.Time) (day string, week string) {
	utc := now.UTC()
	weekStart := utc.AddDate(0, 0, -mondayOffset(utc.Weekday()))
	day = fmt.Sprintf("apps:%s:day:%s", userID, utc.Format("2006-01-02"))
	week = fmt.Sprintf("apps:%s:week:%s", userID, weekStart.Format("2006-01-02"))
	return day, week
}

func mondayOffset(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}
