// internal/store/schema.go
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the tables used by the Postgres implementations.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS applications (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		biodata         JSONB NOT NULL DEFAULT '{}'::jsonb,
		location        JSONB NOT NULL DEFAULT '{}'::jsonb,
		professional    JSONB NOT NULL DEFAULT '{}'::jsonb,
		intro           JSONB NOT NULL DEFAULT '{}'::jsonb,
		social_link     JSONB,
		found_from      TEXT NOT NULL DEFAULT '',
		role            TEXT NOT NULL DEFAULT '',
		image_url       TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		score           INTEGER NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		last_updated_at TIMESTAMPTZ,
		feedback        TEXT,
		reviewer_name   TEXT,
		nudge_count     INTEGER NOT NULL DEFAULT 0,
		last_nudge_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS applications_user_id_idx ON applications (user_id)`,
	`CREATE INDEX IF NOT EXISTS applications_status_created_idx ON applications (status, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id            BIGSERIAL PRIMARY KEY,
		event_type    TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id   TEXT NOT NULL,
		details       JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates missing tables and indexes. Every statement is
// idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
