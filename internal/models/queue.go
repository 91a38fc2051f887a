package models

import (
	"time"
)

type QueueStatus string

const (
	StatusPending    QueueStatus = "PENDING"
	StatusScheduled  QueueStatus = "SCHEDULED"
	StatusInProgress QueueStatus = "IN_PROGRESS"
	StatusCompleted  QueueStatus = "COMPLETED"
	StatusFailed     QueueStatus = "FAILED"
	StatusCancelled  QueueStatus = "CANCELLED"
	StatusPaused     QueueStatus = "PAUSED"
)

// validTransitions is the queue item lifecycle. PAUSED is a manual hold
// reachable from the pre-execution states only. FAILED may go back to
// SCHEDULED while retries remain.
var validTransitions = map[QueueStatus][]QueueStatus{
	StatusPending:    {StatusScheduled, StatusPaused, StatusCancelled},
	StatusScheduled:  {StatusInProgress, StatusPaused, StatusCancelled},
	StatusPaused:     {StatusScheduled, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusFailed},
	StatusFailed:     {StatusScheduled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether moving from s to next is a legal step.
func (s QueueStatus) CanTransition(next QueueStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status never changes again.
// FAILED is only terminal once attempts are exhausted, which the item
// itself knows; see QueueItem.IsTerminal.
func (s QueueStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// QueueItem is one user's request to apply to one job.
type QueueItem struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	JobID         string      `json:"job_id"`
	ResumeID      string      `json:"resume_id"`
	CoverLetterID string      `json:"cover_letter_id,omitempty"`
	Priority      int         `json:"priority"`
	Status        QueueStatus `json:"status"`
	ScheduledAt   *time.Time  `json:"scheduled_at,omitempty"`
	AttemptCount  int         `json:"attempt_count"`
	MaxAttempts   int         `json:"max_attempts"`
	LastAttemptAt *time.Time  `json:"last_attempt_at,omitempty"`
	LastError     *string     `json:"last_error,omitempty"`
	Screenshot    *string     `json:"screenshot_path,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Transition moves the item to next, rejecting illegal steps.
func (q *QueueItem) Transition(next QueueStatus) error {
	if !q.Status.CanTransition(next) {
		return &InvalidTransitionError{From: q.Status, To: next}
	}
	q.Status = next
	return nil
}

// IsTerminal reports whether the item can never be attempted again.
func (q *QueueItem) IsTerminal() bool {
	if q.Status.IsTerminal() {
		return true
	}
	return q.Status == StatusFailed && q.AttemptCount >= q.MaxAttempts
}

// InvalidTransitionError reports an illegal state machine step.
type InvalidTransitionError struct {
	From QueueStatus
	To   QueueStatus
}

func (e *InvalidTransitionError) Error() string {
	return "invalid queue status transition " + string(e.From) + " -> " + string(e.To)
}
