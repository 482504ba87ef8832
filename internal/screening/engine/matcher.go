// Package engine holds the pure screening logic: condition matching, rule
// evaluation, next-question selection and result building. Nothing here
// performs I/O or keeps state between calls.
package engine

import (
	"math"
	"slices"
	"strconv"

	"neuroease/internal/screening/models"
	"neuroease/pkg/platform/strings"
)

// Satisfies reports whether the answers satisfy cond. An unanswered question
// is simply unsatisfied.
func Satisfies(cond models.RuleCondition, answers models.AnswerSet) bool {
	answer, ok := answers.Lookup(cond.QuestionID)
	if !ok {
		return false
	}
	value := strings.Fold(answer.Value)

	switch cond.EffectiveOperator() {
	case models.OperatorEquals:
		expected := strings.Fold(cond.Value)
		return expected != "" && value == expected
	case models.OperatorIn:
		return slices.Contains(strings.DedupeFold(cond.Values), value)
	case models.OperatorRange:
		return inRange(value, cond.Min, cond.Max)
	default:
		return false
	}
}

func inRange(value string, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return false
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	if lo != nil && n < *lo {
		return false
	}
	if hi != nil && n > *hi {
		return false
	}
	return true
}

// CountSatisfied returns how many of rule's conditions hold.
func CountSatisfied(rule models.DiagnosticRule, answers models.AnswerSet) int {
	n := 0
	for _, c := range rule.Conditions {
		if Satisfies(c, answers) {
			n++
		}
	}
	return n
}
