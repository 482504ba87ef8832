// Package catalog supplies the diagnostic rule catalog. Providers load rules
// from a source; Cached keeps an immutable snapshot in memory so evaluation
// never sees a half-loaded catalog.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
)

// Provider loads the full rule catalog.
type Provider interface {
	LoadRules(ctx context.Context) ([]models.DiagnosticRule, error)
}

// Static serves a fixed rule set. Used in tests and as an embedded fallback.
type Static []models.DiagnosticRule

func (s Static) LoadRules(_ context.Context) ([]models.DiagnosticRule, error) {
	return prepare(s)
}

// prepare normalizes condition values and orders rules by id. Rules that fail
// validation are kept; the engine skips them and reports them. Duplicate ids
// or codes make the whole catalog unusable because matches would be
// ambiguous.
func prepare(rules []models.DiagnosticRule) ([]models.DiagnosticRule, error) {
	out := make([]models.DiagnosticRule, 0, len(rules))
	ids := make(map[id.RuleID]struct{}, len(rules))
	codes := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		r.Code = strings.TrimSpace(r.Code)
		if _, dup := ids[r.ID]; dup {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("duplicate rule id %d", r.ID))
		}
		ids[r.ID] = struct{}{}
		if r.Code != "" {
			if _, dup := codes[r.Code]; dup {
				return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("duplicate rule code %q", r.Code))
			}
			codes[r.Code] = struct{}{}
		}
		out = append(out, r.Normalize())
	}
	slices.SortFunc(out, func(a, b models.DiagnosticRule) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}
