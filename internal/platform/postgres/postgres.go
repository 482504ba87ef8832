// Package postgres opens the shared PostgreSQL pool used by the rule catalog
// and the diagnosis store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"neuroease/internal/platform/config"
)

// Open connects with lib/pq and verifies the connection. Returns nil when no
// DSN is configured.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Schema creates the screening tables when missing. Migrations proper are
// managed outside the service; this keeps local and test databases usable.
const Schema = `
CREATE TABLE IF NOT EXISTS diagnostic_rules (
	id                       BIGINT PRIMARY KEY,
	code                     TEXT NOT NULL UNIQUE,
	title                    TEXT NOT NULL,
	description              TEXT NOT NULL DEFAULT '',
	minimum_matches_required INTEGER NOT NULL CHECK (minimum_matches_required >= 1),
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rule_conditions (
	rule_id     BIGINT NOT NULL REFERENCES diagnostic_rules(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	question_id TEXT NOT NULL,
	operator    TEXT NOT NULL,
	value       TEXT NOT NULL DEFAULT '',
	value_set   TEXT[] NOT NULL DEFAULT '{}',
	min_value   DOUBLE PRECISION,
	max_value   DOUBLE PRECISION,
	PRIMARY KEY (rule_id, position)
);

CREATE TABLE IF NOT EXISTS diagnoses (
	id          UUID PRIMARY KEY,
	session_id  UUID NOT NULL,
	user_id     UUID NOT NULL,
	rule_id     BIGINT NOT NULL,
	code        TEXT NOT NULL,
	title       TEXT NOT NULL,
	result      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, rule_id)
);

CREATE TABLE IF NOT EXISTS audit_events (
	id            UUID PRIMARY KEY,
	category      TEXT NOT NULL,
	action        TEXT NOT NULL,
	user_id       UUID,
	session_id    UUID,
	subject       TEXT NOT NULL DEFAULT '',
	request_id    TEXT NOT NULL DEFAULT '',
	client_ip     TEXT NOT NULL DEFAULT '',
	client_device TEXT NOT NULL DEFAULT '',
	occurred_at   TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
