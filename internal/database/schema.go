package database

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS queue_items (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	job_id          TEXT NOT NULL,
	resume_id       TEXT NOT NULL,
	cover_letter_id TEXT NOT NULL DEFAULT '',
	priority        INT  NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	scheduled_at    TIMESTAMPTZ,
	attempt_count   INT  NOT NULL DEFAULT 0,
	max_attempts    INT  NOT NULL DEFAULT 3,
	last_attempt_at TIMESTAMPTZ,
	last_error      TEXT,
	screenshot_path TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_queue_items_user_status ON queue_items (user_id, status);
CREATE INDEX IF NOT EXISTS idx_queue_items_scheduled_at ON queue_items (scheduled_at);

CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	company     TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id              TEXT PRIMARY KEY,
	first_name           TEXT NOT NULL DEFAULT '',
	last_name            TEXT NOT NULL DEFAULT '',
	email                TEXT NOT NULL DEFAULT '',
	phone                TEXT NOT NULL DEFAULT '',
	address              TEXT NOT NULL DEFAULT '',
	city                 TEXT NOT NULL DEFAULT '',
	state                TEXT NOT NULL DEFAULT '',
	zip_code             TEXT NOT NULL DEFAULT '',
	country              TEXT NOT NULL DEFAULT '',
	linkedin             TEXT NOT NULL DEFAULT '',
	website              TEXT NOT NULL DEFAULT '',
	salary_expectation   TEXT NOT NULL DEFAULT '',
	available_start_date TEXT NOT NULL DEFAULT '',
	visa_status          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	file_path  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables and indexes if they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
