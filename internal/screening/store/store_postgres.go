package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	"neuroease/pkg/platform/sentinel"
	txcontext "neuroease/pkg/platform/tx"
)

// Postgres stores diagnoses in the diagnoses table. The (session_id,
// rule_id) unique constraint makes concurrent inserts race-free.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) CreateIfAbsent(ctx context.Context, d *models.Diagnosis) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO diagnoses (id, session_id, user_id, rule_id, code, title, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, rule_id) DO NOTHING
	`,
		uuid.UUID(d.ID),
		uuid.UUID(d.SessionID),
		uuid.UUID(d.UserID),
		int64(d.RuleID),
		d.Code,
		d.Title,
		d.Result,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert diagnosis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert diagnosis rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) Exists(ctx context.Context, sessionID id.SessionID, ruleID id.RuleID) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM diagnoses WHERE session_id = $1 AND rule_id = $2)
	`, uuid.UUID(sessionID), int64(ruleID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check diagnosis exists: %w", err)
	}
	return exists, nil
}

func (s *Postgres) ListBySession(ctx context.Context, sessionID id.SessionID) ([]*models.Diagnosis, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, session_id, user_id, rule_id, code, title, result, created_at
		FROM diagnoses
		WHERE session_id = $1
		ORDER BY created_at, rule_id
	`, uuid.UUID(sessionID))
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	defer rows.Close()

	out := []*models.Diagnosis{}
	for rows.Next() {
		var (
			d                      models.Diagnosis
			diagID, sessID, userID uuid.UUID
			ruleID                 int64
		)
		if err := rows.Scan(&diagID, &sessID, &userID, &ruleID, &d.Code, &d.Title, &d.Result, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diagnosis: %w", err)
		}
		d.ID = id.DiagnosisID(diagID)
		d.SessionID = id.SessionID(sessID)
		d.UserID = id.UserID(userID)
		d.RuleID = id.RuleID(ruleID)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnoses: %w", err)
	}
	return out, nil
}
