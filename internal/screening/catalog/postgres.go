package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	txcontext "neuroease/pkg/platform/tx"
)

// Postgres loads the catalog from the diagnostic_rules and rule_conditions
// tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) LoadRules(ctx context.Context) ([]models.DiagnosticRule, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, code, title, description, minimum_matches_required, created_at
		FROM diagnostic_rules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []models.DiagnosticRule
	index := make(map[id.RuleID]int)
	for rows.Next() {
		var r models.DiagnosticRule
		if err := rows.Scan(&r.ID, &r.Code, &r.Title, &r.Description, &r.MinimumMatchesRequired, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		index[r.ID] = len(rules)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}

	condRows, err := p.db.QueryContext(ctx, `
		SELECT rule_id, question_id, operator, value, value_set, min_value, max_value
		FROM rule_conditions
		ORDER BY rule_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query rule conditions: %w", err)
	}
	defer condRows.Close()

	for condRows.Next() {
		var (
			ruleID   id.RuleID
			c        models.RuleCondition
			question string
			operator string
			minValue sql.NullFloat64
			maxValue sql.NullFloat64
		)
		if err := condRows.Scan(&ruleID, &question, &operator, &c.Value, pq.Array(&c.Values), &minValue, &maxValue); err != nil {
			return nil, fmt.Errorf("scan rule condition: %w", err)
		}
		c.QuestionID = id.QuestionID(question)
		c.Operator = models.Operator(operator)
		if minValue.Valid {
			c.Min = &minValue.Float64
		}
		if maxValue.Valid {
			c.Max = &maxValue.Float64
		}
		i, ok := index[ruleID]
		if !ok {
			continue
		}
		rules[i].Conditions = append(rules[i].Conditions, c)
	}
	if err := condRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule conditions: %w", err)
	}

	return prepare(rules)
}

// SaveRule upserts a rule and replaces its conditions in one transaction,
// joining the caller's transaction when ctx carries one.
func (p *Postgres) SaveRule(ctx context.Context, rule models.DiagnosticRule) error {
	return txcontext.RunInTx(ctx, p.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diagnostic_rules (id, code, title, description, minimum_matches_required, created_at)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, now()))
			ON CONFLICT (id) DO UPDATE SET
				code = EXCLUDED.code,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				minimum_matches_required = EXCLUDED.minimum_matches_required
		`, rule.ID, rule.Code, rule.Title, rule.Description, rule.MinimumMatchesRequired, nullTime(rule))
		if err != nil {
			return fmt.Errorf("upsert rule %d: %w", rule.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM rule_conditions WHERE rule_id = $1`, rule.ID); err != nil {
			return fmt.Errorf("clear conditions for rule %d: %w", rule.ID, err)
		}
		for pos, c := range rule.Conditions {
			var minValue, maxValue sql.NullFloat64
			if c.Min != nil {
				minValue = sql.NullFloat64{Float64: *c.Min, Valid: true}
			}
			if c.Max != nil {
				maxValue = sql.NullFloat64{Float64: *c.Max, Valid: true}
			}
			values := c.Values
			if values == nil {
				values = []string{}
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO rule_conditions (rule_id, position, question_id, operator, value, value_set, min_value, max_value)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, rule.ID, pos, c.QuestionID.String(), string(c.EffectiveOperator()), c.Value, pq.Array(values), minValue, maxValue)
			if err != nil {
				return fmt.Errorf("insert condition %d for rule %d: %w", pos, rule.ID, err)
			}
		}
		return nil
	})
}

// SaveAll replaces the catalog contents with rules atomically. Rules absent
// from the list are deleted with their conditions. Codes may move between
// rules within one call, so kept rules are parked on a placeholder code
// before the upserts run.
func (p *Postgres) SaveAll(ctx context.Context, rules []models.DiagnosticRule) error {
	return txcontext.RunInTx(ctx, p.db, func(ctx context.Context, tx *sql.Tx) error {
		keep := make([]int64, 0, len(rules))
		for _, rule := range rules {
			keep = append(keep, int64(rule.ID))
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM diagnostic_rules WHERE NOT (id = ANY($1))`, pq.Array(keep)); err != nil {
			return fmt.Errorf("prune rules: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE diagnostic_rules SET code = '__reseed_' || id::text
			WHERE id = ANY($1)
		`, pq.Array(keep)); err != nil {
			return fmt.Errorf("park rule codes: %w", err)
		}
		for _, rule := range rules {
			if err := p.SaveRule(ctx, rule); err != nil {
				return err
			}
		}
		return nil
	})
}

func nullTime(rule models.DiagnosticRule) any {
	if rule.CreatedAt.IsZero() {
		return nil
	}
	return rule.CreatedAt
}
