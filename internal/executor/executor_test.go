package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-autoapply/internal/models"
)

// mockRepository is an in-memory item store.
type mockRepository struct {
	items map[string]*models.QueueItem
}

func newMockRepository(items ...*models.QueueItem) *mockRepository {
	m := &mockRepository{items: make(map[string]*models.QueueItem)}
	for _, item := range items {
		cp := *item
		m.items[item.ID] = &cp
	}
	return m
}

func (m *mockRepository) Create(ctx context.Context, item *models.QueueItem) error {
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockRepository) Get(ctx context.Context, id string) (*models.QueueItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (m *mockRepository) Update(ctx context.Context, item *models.QueueItem) error {
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepository) GetByUser(ctx context.Context, userID string, status *models.QueueStatus) ([]*models.QueueItem, error) {
	return nil, nil
}

func (m *mockRepository) UpdateStatusBulk(ctx context.Context, userID string, from, to models.QueueStatus) (int64, error) {
	return 0, nil
}

type mockScheduler struct {
	scheduled map[string]time.Time
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{scheduled: make(map[string]time.Time)}
}

func (m *mockScheduler) Schedule(ctx context.Context, itemID string, at time.Time) error {
	m.scheduled[itemID] = at
	return nil
}

func (m *mockScheduler) Revoke(ctx context.Context, itemID string) error {
	delete(m.scheduled, itemID)
	return nil
}

// scriptedRunner plays back one outcome per attempt.
type scriptedRunner struct {
	outcomes []func() (*models.AttemptResult, error)
	calls    int
}

func (r *scriptedRunner) RunAttempt(ctx context.Context, item *models.QueueItem) (*models.AttemptResult, error) {
	if r.calls >= len(r.outcomes) {
		return nil, errors.New("no scripted outcome left")
	}
	out, err := r.outcomes[r.calls]()
	r.calls++
	return out, err
}

func succeed() func() (*models.AttemptResult, error) {
	return func() (*models.AttemptResult, error) {
		return &models.AttemptResult{Success: true, PagesTraversed: 1, ScreenshotPath: "shot.png"}, nil
	}
}

func failWith(msg string) func() (*models.AttemptResult, error) {
	return func() (*models.AttemptResult, error) {
		result := &models.AttemptResult{Success: false}
		result.AddError(msg)
		return result, nil
	}
}

type recordingNotifier struct {
	notified []models.QueueStatus
}

func (n *recordingNotifier) NotifyOutcome(item *models.QueueItem) error {
	n.notified = append(n.notified, item.Status)
	return nil
}

func scheduledItem(id string) *models.QueueItem {
	at := time.Now().Add(-time.Minute)
	return &models.QueueItem{
		ID:          id,
		UserID:      "user-1",
		JobID:       "job-1",
		Status:      models.StatusScheduled,
		ScheduledAt: &at,
		MaxAttempts: 3,
	}
}

func newTestExecutor(repo *mockRepository, sched *mockScheduler, runner AttemptRunner, notifier Notifier) *Executor {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, sched, runner, notifier, log, time.Minute)
}

func TestExecuteSuccessFirstAttempt(t *testing.T) {
	repo := newMockRepository(scheduledItem("q1"))
	runner := &scriptedRunner{outcomes: []func() (*models.AttemptResult, error){succeed()}}
	notifier := &recordingNotifier{}
	exec := newTestExecutor(repo, newMockScheduler(), runner, notifier)

	exec.Execute(context.Background(), "q1")

	item, _ := repo.Get(context.Background(), "q1")
	require.NotNil(t, item)
	assert.Equal(t, models.StatusCompleted, item.Status)
	assert.Equal(t, 1, item.AttemptCount)
	assert.Nil(t, item.LastError)
	require.NotNil(t, item.Screenshot)
	assert.Equal(t, "shot.png", *item.Screenshot)
	require.NotNil(t, item.LastAttemptAt)
	assert.Equal(t, []models.QueueStatus{models.StatusCompleted}, notifier.notified)
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	repo := newMockRepository(scheduledItem("q1"))
	sched := newMockScheduler()
	runner := &scriptedRunner{outcomes: []func() (*models.AttemptResult, error){
		failWith("captcha wall"),
		failWith("timeout"),
		succeed(),
	}}
	exec := newTestExecutor(repo, sched, runner, nil)

	// Each failure re-schedules; the tick is simulated by calling Execute
	// again, exactly what the real scheduler does.
	for i := 0; i < 3; i++ {
		exec.Execute(context.Background(), "q1")
	}

	item, _ := repo.Get(context.Background(), "q1")
	assert.Equal(t, models.StatusCompleted, item.Status)
	assert.Equal(t, 3, item.AttemptCount)
	assert.Equal(t, 3, runner.calls)
}

func TestExecuteFailsPermanentlyAfterMaxAttempts(t *testing.T) {
	repo := newMockRepository(scheduledItem("q1"))
	sched := newMockScheduler()
	runner := &scriptedRunner{outcomes: []func() (*models.AttemptResult, error){
		failWith("first"),
		failWith("second"),
		failWith("third"),
	}}
	notifier := &recordingNotifier{}
	exec := newTestExecutor(repo, sched, runner, notifier)

	for i := 0; i < 3; i++ {
		exec.Execute(context.Background(), "q1")
	}

	item, _ := repo.Get(context.Background(), "q1")
	assert.Equal(t, models.StatusFailed, item.Status)
	assert.Equal(t, 3, item.AttemptCount)
	require.NotNil(t, item.LastError)
	assert.Contains(t, *item.LastError, "third")
	assert.Empty(t, sched.scheduled, "no retry after the last attempt")
	assert.Equal(t, []models.QueueStatus{models.StatusFailed}, notifier.notified,
		"only the terminal failure is reported")

	// A stray extra tick cannot revive a finished item.
	exec.Execute(context.Background(), "q1")
	assert.Equal(t, 3, runner.calls)
}

func TestExecuteRetryUsesExponentialBackoff(t *testing.T) {
	repo := newMockRepository(scheduledItem("q1"))
	sched := newMockScheduler()
	runner := &scriptedRunner{outcomes: []func() (*models.AttemptResult, error){
		failWith("boom"),
		failWith("boom"),
	}}
	exec := newTestExecutor(repo, sched, runner, nil)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	exec.now = func() time.Time { return base }

	exec.Execute(context.Background(), "q1")
	assert.Equal(t, base.Add(time.Minute), sched.scheduled["q1"], "first retry after base delay")

	exec.Execute(context.Background(), "q1")
	assert.Equal(t, base.Add(2*time.Minute), sched.scheduled["q1"], "second retry doubles")
}

func TestExecuteSkipsCancelledAndMissingItems(t *testing.T) {
	cancelled := scheduledItem("q1")
	cancelled.Status = models.StatusCancelled
	repo := newMockRepository(cancelled)
	runner := &scriptedRunner{}
	exec := newTestExecutor(repo, newMockScheduler(), runner, nil)

	exec.Execute(context.Background(), "q1")
	exec.Execute(context.Background(), "no-such-item")

	assert.Equal(t, 0, runner.calls, "browser work must never start")
	item, _ := repo.Get(context.Background(), "q1")
	assert.Equal(t, models.StatusCancelled, item.Status)
}

func TestExecuteRecordsRunnerError(t *testing.T) {
	repo := newMockRepository(scheduledItem("q1"))
	runner := &failingRunner{err: errors.New("net::ERR_CONNECTION_REFUSED")}
	exec := newTestExecutor(repo, newMockScheduler(), runner, nil)

	exec.Execute(context.Background(), "q1")

	item, _ := repo.Get(context.Background(), "q1")
	assert.Equal(t, models.StatusScheduled, item.Status, "retries remain")
	require.NotNil(t, item.LastError)
	assert.Contains(t, *item.LastError, "ERR_CONNECTION_REFUSED")
}

type failingRunner struct {
	err error
}

func (r *failingRunner) RunAttempt(ctx context.Context, item *models.QueueItem) (*models.AttemptResult, error) {
	return nil, r.err
}

func TestBackoffCaps(t *testing.T) {
	exec := newTestExecutor(newMockRepository(), newMockScheduler(), &scriptedRunner{}, nil)

	assert.Equal(t, time.Minute, exec.backoff(1))
	assert.Equal(t, 2*time.Minute, exec.backoff(2))
	assert.Equal(t, 4*time.Minute, exec.backoff(3))
	assert.Equal(t, 16*time.Minute, exec.backoff(5))
	assert.Equal(t, 30*time.Minute, exec.backoff(6), "capped")
	assert.Equal(t, 30*time.Minute, exec.backoff(20))
}
