package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-autoapply/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collector records fired ids, safe for the per-entry goroutines.
type collector struct {
	mu    sync.Mutex
	fired []string
	done  chan struct{}
}

func newCollector(expected int) *collector {
	c := &collector{done: make(chan struct{})}
	if expected == 0 {
		close(c.done)
	}
	go func() {
		for expected > 0 {
			time.Sleep(5 * time.Millisecond)
			c.mu.Lock()
			n := len(c.fired)
			c.mu.Unlock()
			if n >= expected {
				close(c.done)
				return
			}
		}
	}()
	return c
}

func (c *collector) handle(ctx context.Context, itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fired = append(c.fired, itemID)
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked in time")
	}
}

func TestTickFiresDueEntriesOnce(t *testing.T) {
	s := New(testLogger())
	c := newCollector(2)
	s.SetHandler(c.handle)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	require.NoError(t, s.Schedule(context.Background(), "due-1", past))
	require.NoError(t, s.Schedule(context.Background(), "due-2", past))
	require.NoError(t, s.Schedule(context.Background(), "later", future))

	s.tick()
	c.wait(t)

	c.mu.Lock()
	assert.ElementsMatch(t, []string{"due-1", "due-2"}, c.fired)
	c.mu.Unlock()

	// Fired entries are consumed; another tick must not replay them.
	s.tick()
	time.Sleep(20 * time.Millisecond)
	c.mu.Lock()
	assert.Len(t, c.fired, 2)
	c.mu.Unlock()

	s.mu.Lock()
	_, stillThere := s.entries["later"]
	s.mu.Unlock()
	assert.True(t, stillThere, "future entries survive the tick")
}

func TestRevokeDropsEntry(t *testing.T) {
	s := New(testLogger())
	c := newCollector(0)
	s.SetHandler(c.handle)

	require.NoError(t, s.Schedule(context.Background(), "q1", time.Now().Add(-time.Minute)))
	require.NoError(t, s.Revoke(context.Background(), "q1"))
	require.NoError(t, s.Revoke(context.Background(), "never-existed"))

	s.tick()
	time.Sleep(20 * time.Millisecond)

	c.mu.Lock()
	assert.Empty(t, c.fired)
	c.mu.Unlock()
}

type stubSource struct {
	items []*models.QueueItem
}

func (s *stubSource) GetScheduledBefore(ctx context.Context, cutoff time.Time) ([]*models.QueueItem, error) {
	return s.items, nil
}

func TestLoadPendingRestoresEntries(t *testing.T) {
	s := New(testLogger())
	c := newCollector(1)
	s.SetHandler(c.handle)

	overdue := time.Now().Add(-time.Hour)
	src := &stubSource{items: []*models.QueueItem{
		{ID: "q1", Status: models.StatusScheduled, ScheduledAt: &overdue},
		{ID: "no-time", Status: models.StatusScheduled},
	}}

	require.NoError(t, s.LoadPending(context.Background(), src))
	s.tick()
	c.wait(t)

	c.mu.Lock()
	assert.Equal(t, []string{"q1"}, c.fired)
	c.mu.Unlock()
}

func TestStartRequiresHandler(t *testing.T) {
	s := New(testLogger())
	assert.Error(t, s.Start(), "starting without a handler must fail")

	s.SetHandler(func(ctx context.Context, itemID string) {})
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Error(t, s.Start(), "double start must fail")
}
