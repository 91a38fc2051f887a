package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-autoapply/internal/models"
)

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode (PgBouncer/Supabase) choke on
	// prepared statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// ---------------- QUEUE ITEM OPERATIONS ----------------

const queueItemColumns = `id, user_id, job_id, resume_id, cover_letter_id, priority, status,
	scheduled_at, attempt_count, max_attempts, last_attempt_at, last_error, screenshot_path, created_at`

func scanQueueItem(row pgx.Row) (*models.QueueItem, error) {
	var item models.QueueItem
	err := row.Scan(&item.ID, &item.UserID, &item.JobID, &item.ResumeID, &item.CoverLetterID,
		&item.Priority, &item.Status, &item.ScheduledAt, &item.AttemptCount, &item.MaxAttempts,
		&item.LastAttemptAt, &item.LastError, &item.Screenshot, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) Create(ctx context.Context, item *models.QueueItem) error {
	query := `
		INSERT INTO queue_items (id, user_id, job_id, resume_id, cover_letter_id, priority, status,
			scheduled_at, attempt_count, max_attempts, last_attempt_at, last_error, screenshot_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query, item.ID, item.UserID, item.JobID, item.ResumeID, item.CoverLetterID,
		item.Priority, item.Status, item.ScheduledAt, item.AttemptCount, item.MaxAttempts,
		item.LastAttemptAt, item.LastError, item.Screenshot, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create queue item: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*models.QueueItem, error) {
	query := `SELECT ` + queueItemColumns + ` FROM queue_items WHERE id = $1`
	item, err := scanQueueItem(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue item: %w", err)
	}
	return item, nil
}

func (r *Repository) Update(ctx context.Context, item *models.QueueItem) error {
	query := `
		UPDATE queue_items
		SET status = $2, scheduled_at = $3, attempt_count = $4, last_attempt_at = $5,
			last_error = $6, screenshot_path = $7
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, item.ID, item.Status, item.ScheduledAt, item.AttemptCount,
		item.LastAttemptAt, item.LastError, item.Screenshot)
	if err != nil {
		return fmt.Errorf("failed to update queue item: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM queue_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete queue item: %w", err)
	}
	return nil
}

func (r *Repository) GetByUser(ctx context.Context, userID string, status *models.QueueStatus) ([]*models.QueueItem, error) {
	query := `SELECT ` + queueItemColumns + ` FROM queue_items WHERE user_id = $1`
	args := []any{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue items: %w", err)
	}
	defer rows.Close()

	var items []*models.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) UpdateStatusBulk(ctx context.Context, userID string, from, to models.QueueStatus) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"UPDATE queue_items SET status = $3 WHERE user_id = $1 AND status = $2",
		userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetScheduledBefore lists SCHEDULED items due up to the cutoff, used by
// the scheduler's startup recovery.
func (r *Repository) GetScheduledBefore(ctx context.Context, cutoff time.Time) ([]*models.QueueItem, error) {
	query := `SELECT ` + queueItemColumns + ` FROM queue_items
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2`

	rows, err := r.db.Query(ctx, query, models.StatusScheduled, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled items: %w", err)
	}
	defer rows.Close()

	var items []*models.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ---------------- JOB OPERATIONS ----------------

// GetJobURL resolves a job id to the posting URL the browser should open.
func (r *Repository) GetJobURL(ctx context.Context, jobID string) (string, error) {
	var url string
	err := r.db.QueryRow(ctx, "SELECT url FROM jobs WHERE id = $1", jobID).Scan(&url)
	if err == pgx.ErrNoRows {
		return "", fmt.Errorf("job %s not found", jobID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get job: %w", err)
	}
	return url, nil
}

// ---------------- PROFILE OPERATIONS ----------------

func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, first_name, last_name, email, phone, address, city, state, zip_code,
			country, linkedin, website, salary_expectation, available_start_date, visa_status
		FROM profiles WHERE user_id = $1`

	var p models.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.FirstName, &p.LastName,
		&p.Email, &p.Phone, &p.Address, &p.City, &p.State, &p.ZipCode, &p.Country,
		&p.LinkedIn, &p.Website, &p.Salary, &p.StartDate, &p.VisaStatus)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no profile for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// ---------------- DOCUMENT OPERATIONS ----------------

// GetDocumentPath resolves a stored resume or cover letter id to its file
// path on disk. Returns "" (not an error) for an empty id so optional
// cover letters stay optional.
func (r *Repository) GetDocumentPath(ctx context.Context, docID string) (string, error) {
	if docID == "" {
		return "", nil
	}
	var path string
	err := r.db.QueryRow(ctx, "SELECT file_path FROM documents WHERE id = $1", docID).Scan(&path)
	if err == pgx.ErrNoRows {
		return "", fmt.Errorf("document %s not found", docID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get document: %w", err)
	}
	return path, nil
}
