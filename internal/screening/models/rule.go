package models

import (
	"fmt"
	"math"
	"time"

	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
	"neuroease/pkg/platform/strings"
)

// Operator selects how a condition compares the recorded answer value.
type Operator string

const (
	// OperatorEquals matches when the folded answer equals Value.
	OperatorEquals Operator = "equals"
	// OperatorIn matches when the folded answer is one of Values.
	OperatorIn Operator = "in"
	// OperatorRange matches when the answer parses as a number within
	// [Min, Max]. Either bound may be omitted.
	OperatorRange Operator = "range"
)

// RuleCondition is an atomic test of one answer. It belongs to exactly one
// rule and is never shared.
type RuleCondition struct {
	QuestionID id.QuestionID `json:"question_id" yaml:"question_id"`
	Operator   Operator      `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value      string        `json:"value,omitempty" yaml:"value,omitempty"`
	Values     []string      `json:"values,omitempty" yaml:"values,omitempty"`
	Min        *float64      `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64      `json:"max,omitempty" yaml:"max,omitempty"`
}

// EffectiveOperator defaults an empty operator to equality, which is how
// hand-written catalogs usually express "Q1 == yes".
func (c RuleCondition) EffectiveOperator() Operator {
	if c.Operator == "" {
		return OperatorEquals
	}
	return c.Operator
}

// Normalize folds comparison values so matching can compare folded answers
// directly.
func (c RuleCondition) Normalize() RuleCondition {
	c.Operator = c.EffectiveOperator()
	c.Value = strings.Fold(c.Value)
	c.Values = strings.DedupeFold(c.Values)
	return c
}

// Validate checks that the predicate is well formed.
func (c RuleCondition) Validate() error {
	if c.QuestionID.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "condition question_id is required")
	}
	switch c.EffectiveOperator() {
	case OperatorEquals:
		if strings.Fold(c.Value) == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("condition on %s: equals requires a value", c.QuestionID))
		}
	case OperatorIn:
		if len(strings.DedupeFold(c.Values)) == 0 {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("condition on %s: in requires values", c.QuestionID))
		}
	case OperatorRange:
		if c.Min == nil && c.Max == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("condition on %s: range requires min or max", c.QuestionID))
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("condition on %s: min exceeds max", c.QuestionID))
		}
		if (c.Min != nil && math.IsNaN(*c.Min)) || (c.Max != nil && math.IsNaN(*c.Max)) {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("condition on %s: NaN bound", c.QuestionID))
		}
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("condition on %s: unknown operator %q", c.QuestionID, c.Operator))
	}
	return nil
}

// DiagnosticRule is a catalog entry: it matches once at least
// MinimumMatchesRequired of its conditions are satisfied.
//
// Invariants:
//   - MinimumMatchesRequired >= 1
//   - MinimumMatchesRequired <= len(Conditions)
//   - every condition is well formed
//
// Condition order only fixes iteration order (question selection); it does
// not affect matching.
type DiagnosticRule struct {
	ID                     id.RuleID       `json:"id" yaml:"id"`
	Code                   string          `json:"code" yaml:"code"`
	Title                  string          `json:"title" yaml:"title"`
	Description            string          `json:"description" yaml:"description"`
	MinimumMatchesRequired int             `json:"minimum_matches_required" yaml:"minimum_matches_required"`
	Conditions             []RuleCondition `json:"conditions" yaml:"conditions"`
	CreatedAt              time.Time       `json:"created_at" yaml:"created_at"`
}

// Validate reports configuration errors. A rule failing validation is never
// matched.
func (r DiagnosticRule) Validate() error {
	if r.ID <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "rule id must be positive")
	}
	if r.Code == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("rule %d: code is required", r.ID))
	}
	if len(r.Conditions) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("rule %s has no conditions", r.Code))
	}
	if r.MinimumMatchesRequired < 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("rule %s: minimum_matches_required must be at least 1", r.Code))
	}
	if r.MinimumMatchesRequired > len(r.Conditions) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("rule %s: minimum_matches_required %d exceeds %d conditions", r.Code, r.MinimumMatchesRequired, len(r.Conditions)))
	}
	for _, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, fmt.Sprintf("rule %s", r.Code))
		}
	}
	return nil
}

// Normalize returns a copy with folded condition values. The input is not
// modified.
func (r DiagnosticRule) Normalize() DiagnosticRule {
	conds := make([]RuleCondition, len(r.Conditions))
	for i, c := range r.Conditions {
		conds[i] = c.Normalize()
	}
	r.Conditions = conds
	return r
}
