package engine

import (
	"cmp"
	"slices"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
)

// RuleScore is the per-rule outcome of one evaluation pass.
type RuleScore struct {
	RuleID    id.RuleID
	Code      string
	Satisfied int
	Required  int
	Matched   bool
}

// InvalidRule is a catalog entry that was skipped because it can never be
// matched.
type InvalidRule struct {
	Rule models.DiagnosticRule
	Err  error
}

// Evaluation is the result of matching an answer set against a catalog.
type Evaluation struct {
	// Matched holds matched rules ordered by ID, independent of catalog order.
	Matched []models.DiagnosticRule
	Scores  []RuleScore
	Invalid []InvalidRule
}

// Evaluate matches answers against every rule independently. A rule matches
// iff its satisfied-condition count reaches MinimumMatchesRequired. Rules that
// fail validation (no conditions, unreachable threshold) are reported in
// Invalid and never matched.
func Evaluate(answers models.AnswerSet, rules []models.DiagnosticRule) Evaluation {
	var ev Evaluation
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			ev.Invalid = append(ev.Invalid, InvalidRule{Rule: rule, Err: err})
			continue
		}
		satisfied := CountSatisfied(rule, answers)
		matched := satisfied >= rule.MinimumMatchesRequired
		ev.Scores = append(ev.Scores, RuleScore{
			RuleID:    rule.ID,
			Code:      rule.Code,
			Satisfied: satisfied,
			Required:  rule.MinimumMatchesRequired,
			Matched:   matched,
		})
		if matched {
			ev.Matched = append(ev.Matched, rule)
		}
	}

	slices.SortStableFunc(ev.Matched, func(a, b models.DiagnosticRule) int {
		if c := cmp.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	slices.SortStableFunc(ev.Scores, func(a, b RuleScore) int {
		if c := cmp.Compare(a.RuleID, b.RuleID); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return ev
}
