// Deferred execution of queue items: time-keyed entries fired by a cron
// tick. Registrations live in memory; the durable queue row is the source
// of truth, so LoadPending rebuilds the entry map after a restart.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"go-autoapply/internal/models"
)

// Handler is invoked with only the item id; it must reload state before
// acting.
type Handler func(ctx context.Context, itemID string)

// PendingSource lists items whose deferred execution must be re-registered
// after a restart.
type PendingSource interface {
	GetScheduledBefore(ctx context.Context, cutoff time.Time) ([]*models.QueueItem, error)
}

type entry struct {
	itemID string
	at     time.Time
}

// CronScheduler fires registered entries once their time has passed,
// checking on a one-minute tick.
type CronScheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]entry
	handler Handler
	running bool
}

func New(logger *slog.Logger) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		logger:  logger,
		entries: make(map[string]entry),
	}
}

// SetHandler wires the execution callback. Must be called before Start.
func (s *CronScheduler) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *CronScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.handler == nil {
		return fmt.Errorf("scheduler has no handler")
	}
	if _, err := s.cron.AddFunc("* * * * *", s.tick); err != nil {
		return fmt.Errorf("failed to add cron tick: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("task scheduler started")
	return nil
}

func (s *CronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("task scheduler stopped")
}

// Schedule registers a deferred execution for an item.
func (s *CronScheduler) Schedule(ctx context.Context, itemID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[itemID] = entry{itemID: itemID, at: at}
	s.logger.Debug("execution scheduled", "queue_id", itemID, "at", at)
	return nil
}

// Revoke drops a registration. Revoking an unknown id is not an error;
// the executor re-checks item status before acting anyway.
func (s *CronScheduler) Revoke(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, itemID)
	return nil
}

// LoadPending re-registers every due or future SCHEDULED item from the
// durable store. Call once at startup, before Start.
func (s *CronScheduler) LoadPending(ctx context.Context, src PendingSource) error {
	// A generous horizon; anything scheduled further out is re-registered
	// on its own admission path next time the service restarts before then.
	items, err := src.GetScheduledBefore(ctx, time.Now().AddDate(0, 0, 14))
	if err != nil {
		return fmt.Errorf("loading pending schedules: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item.ScheduledAt == nil {
			continue
		}
		s.entries[item.ID] = entry{itemID: item.ID, at: *item.ScheduledAt}
	}
	s.logger.Info("pending schedules restored", "count", len(items))
	return nil
}

func (s *CronScheduler) tick() {
	now := time.Now()

	s.mu.Lock()
	var due []entry
	for id, e := range s.entries {
		if !e.at.After(now) {
			due = append(due, e)
			delete(s.entries, id)
		}
	}
	handler := s.handler
	s.mu.Unlock()

	for _, e := range due {
		// One goroutine per attempt; items of different users run fully
		// in parallel.
		go func(e entry) {
			handler(context.Background(), e.itemID)
		}(e)
	}
}
