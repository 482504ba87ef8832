package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
)

var testUser = id.UserID(uuid.New())

func answers(pairs ...string) models.AnswerSet {
	var list []models.UserAnswer
	for i := 0; i+1 < len(pairs); i += 2 {
		list = append(list, models.UserAnswer{
			UserID:     testUser,
			QuestionID: id.QuestionID(pairs[i]),
			Value:      pairs[i+1],
		})
	}
	return models.NewAnswerSet(list...)
}

func eq(q, v string) models.RuleCondition {
	return models.RuleCondition{QuestionID: id.QuestionID(q), Operator: models.OperatorEquals, Value: v}
}

func ptr(f float64) *float64 { return &f }

func ruleA() models.DiagnosticRule {
	return models.DiagnosticRule{
		ID: 1, Code: "A", Title: "Rule A", MinimumMatchesRequired: 2,
		Conditions: []models.RuleCondition{eq("Q1", "yes"), eq("Q2", "yes"), eq("Q3", "yes")},
	}
}

func ruleB() models.DiagnosticRule {
	return models.DiagnosticRule{
		ID: 2, Code: "B", Title: "Rule B", MinimumMatchesRequired: 1,
		Conditions: []models.RuleCondition{eq("Q4", "no")},
	}
}

func codes(rules []models.DiagnosticRule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Code)
	}
	return out
}

func TestSatisfies(t *testing.T) {
	set := answers("Q1", " Yes ", "Q2", "often", "Q3", "7", "Q4", "seven")

	tests := []struct {
		name string
		cond models.RuleCondition
		want bool
	}{
		{"equals folds case and space", eq("Q1", "yes"), true},
		{"equals mismatch", eq("Q1", "no"), false},
		{"unanswered question never counts", eq("Q9", "yes"), false},
		{"default operator is equals", models.RuleCondition{QuestionID: "Q1", Value: "YES"}, true},
		{"membership hit", models.RuleCondition{QuestionID: "Q2", Operator: models.OperatorIn, Values: []string{"Sometimes", "Often"}}, true},
		{"membership miss", models.RuleCondition{QuestionID: "Q2", Operator: models.OperatorIn, Values: []string{"never"}}, false},
		{"range inclusive lower", models.RuleCondition{QuestionID: "Q3", Operator: models.OperatorRange, Min: ptr(7)}, true},
		{"range inclusive upper", models.RuleCondition{QuestionID: "Q3", Operator: models.OperatorRange, Min: ptr(0), Max: ptr(7)}, true},
		{"range outside", models.RuleCondition{QuestionID: "Q3", Operator: models.OperatorRange, Max: ptr(6.5)}, false},
		{"range on non-numeric answer", models.RuleCondition{QuestionID: "Q4", Operator: models.OperatorRange, Min: ptr(0)}, false},
		{"range without bounds", models.RuleCondition{QuestionID: "Q3", Operator: models.OperatorRange}, false},
		{"unknown operator", models.RuleCondition{QuestionID: "Q1", Operator: "regex", Value: "yes"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Satisfies(tt.cond, set))
		})
	}
}

// TestEvaluate_ThresholdExhaustive checks every threshold t and satisfied
// count s for a rule with n conditions: matched iff s >= t.
func TestEvaluate_ThresholdExhaustive(t *testing.T) {
	const n = 5
	conds := make([]models.RuleCondition, n)
	for i := range conds {
		conds[i] = eq(fmt.Sprintf("Q%d", i+1), "yes")
	}

	for threshold := 1; threshold <= n; threshold++ {
		rule := models.DiagnosticRule{ID: 1, Code: "R", MinimumMatchesRequired: threshold, Conditions: conds}
		for satisfied := 0; satisfied <= n; satisfied++ {
			var pairs []string
			for i := 0; i < n; i++ {
				v := "no"
				if i < satisfied {
					v = "yes"
				}
				pairs = append(pairs, fmt.Sprintf("Q%d", i+1), v)
			}
			ev := Evaluate(answers(pairs...), []models.DiagnosticRule{rule})
			matched := len(ev.Matched) == 1
			assert.Equal(t, satisfied >= threshold, matched, "threshold=%d satisfied=%d", threshold, satisfied)
			require.Len(t, ev.Scores, 1)
			assert.Equal(t, satisfied, ev.Scores[0].Satisfied)
		}
	}
}

func TestEvaluate_StableUnderReordering(t *testing.T) {
	c := models.DiagnosticRule{ID: 3, Code: "C", MinimumMatchesRequired: 1, Conditions: []models.RuleCondition{eq("Q1", "yes")}}
	set := answers("Q1", "yes", "Q2", "yes", "Q4", "no")

	forward := Evaluate(set, []models.DiagnosticRule{ruleA(), ruleB(), c})
	reversed := Evaluate(set, []models.DiagnosticRule{c, ruleB(), ruleA()})

	assert.Equal(t, []string{"A", "B", "C"}, codes(forward.Matched))
	assert.Equal(t, codes(forward.Matched), codes(reversed.Matched))
	assert.Equal(t, forward.Scores, reversed.Scores)
}

func TestEvaluate_InvalidRulesAreSkipped(t *testing.T) {
	empty := models.DiagnosticRule{ID: 7, Code: "EMPTY", MinimumMatchesRequired: 1}
	unreachable := models.DiagnosticRule{ID: 8, Code: "UNREACHABLE", MinimumMatchesRequired: 3,
		Conditions: []models.RuleCondition{eq("Q1", "yes")}}

	ev := Evaluate(answers("Q1", "yes"), []models.DiagnosticRule{empty, unreachable})
	assert.Empty(t, ev.Matched)
	require.Len(t, ev.Invalid, 2)
	assert.Equal(t, "EMPTY", ev.Invalid[0].Rule.Code)
	assert.Error(t, ev.Invalid[0].Err)
}

func TestEvaluate_EmptyCatalog(t *testing.T) {
	ev := Evaluate(answers("Q1", "yes"), nil)
	assert.Empty(t, ev.Matched)
	assert.Empty(t, ev.Invalid)

	q, done := NextQuestion(answers(), nil)
	assert.True(t, done)
	assert.Empty(t, q)
}

func TestScenario_IncrementalMatching(t *testing.T) {
	catalog := []models.DiagnosticRule{ruleA(), ruleB()}

	ev := Evaluate(answers("Q1", "yes"), catalog)
	assert.Empty(t, ev.Matched, "one of three conditions is below threshold 2")

	ev = Evaluate(answers("Q1", "yes", "Q2", "yes"), catalog)
	assert.Equal(t, []string{"A"}, codes(ev.Matched))

	ev = Evaluate(answers("Q1", "yes", "Q2", "yes", "Q4", "no"), catalog)
	assert.Equal(t, []string{"A", "B"}, codes(ev.Matched))
}

func TestNextQuestion(t *testing.T) {
	catalog := []models.DiagnosticRule{
		ruleA(),
		{ID: 2, Code: "B", MinimumMatchesRequired: 1, Conditions: []models.RuleCondition{eq("Q2", "no"), eq("Q4", "no")}},
	}

	t.Run("catalog order with first appearance", func(t *testing.T) {
		assert.Equal(t, []id.QuestionID{"Q1", "Q2", "Q3", "Q4"}, Questions(catalog))
	})

	t.Run("skips answered and is stable", func(t *testing.T) {
		set := answers("Q1", "yes", "Q3", "no")
		first, done := NextQuestion(set, catalog)
		require.False(t, done)
		assert.Equal(t, id.QuestionID("Q2"), first)

		again, _ := NextQuestion(set, catalog)
		assert.Equal(t, first, again)
	})

	t.Run("never returns an answered question", func(t *testing.T) {
		set := answers()
		for range Questions(catalog) {
			q, done := NextQuestion(set, catalog)
			require.False(t, done)
			require.False(t, set.Has(q))
			set = set.With(models.UserAnswer{UserID: testUser, QuestionID: q, Value: "x"})
		}
		_, done := NextQuestion(set, catalog)
		assert.True(t, done, "done once every referenced question is answered")
	})

	t.Run("not done while any question is open", func(t *testing.T) {
		_, done := NextQuestion(answers("Q1", "a", "Q2", "b", "Q3", "c"), catalog)
		assert.False(t, done)
	})
}

func TestNextQuestionNearest(t *testing.T) {
	wide := models.DiagnosticRule{ID: 1, Code: "WIDE", MinimumMatchesRequired: 3,
		Conditions: []models.RuleCondition{eq("Q1", "yes"), eq("Q2", "yes"), eq("Q3", "yes")}}
	nearer := models.DiagnosticRule{ID: 2, Code: "CLOSE", MinimumMatchesRequired: 2,
		Conditions: []models.RuleCondition{eq("Q4", "yes"), eq("Q5", "yes")}}
	catalog := []models.DiagnosticRule{wide, nearer}

	t.Run("prefers the rule nearest its threshold", func(t *testing.T) {
		q, done := NextQuestionNearest(answers("Q4", "yes"), catalog)
		require.False(t, done)
		assert.Equal(t, id.QuestionID("Q5"), q)
	})

	t.Run("skips rules that can no longer match", func(t *testing.T) {
		q, done := NextQuestionNearest(answers("Q4", "no"), catalog)
		require.False(t, done)
		assert.Equal(t, id.QuestionID("Q1"), q)
	})

	t.Run("falls back to breadth order and reports done", func(t *testing.T) {
		set := answers("Q1", "no", "Q2", "no", "Q4", "no", "Q5", "no")
		q, done := NextQuestionNearest(set, catalog)
		require.False(t, done)
		assert.Equal(t, id.QuestionID("Q3"), q)

		_, done = NextQuestionNearest(set.With(models.UserAnswer{UserID: testUser, QuestionID: "Q3", Value: "no"}), catalog)
		assert.True(t, done)
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyBreadth, s)

	s, err = ParseStrategy("nearest")
	require.NoError(t, err)
	assert.Equal(t, StrategyNearest, s)

	_, err = ParseStrategy("random")
	assert.Error(t, err)
}

func TestBuildResultsAndDiagnosis(t *testing.T) {
	results := BuildResults([]models.DiagnosticRule{ruleA(), {ID: 9, Code: "NOTITLE"}})
	require.Len(t, results, 2)
	assert.Equal(t, "Rule A", results[0].Diagnosis)
	assert.Equal(t, "Diagnosis: Rule A. Please consult a physician for more information.", results[0].Detail)
	assert.Equal(t, "NOTITLE", results[1].Diagnosis)

	now := time.Now()
	session := id.NewSessionID()
	d := NewDiagnosis(session, testUser, ruleA(), now)
	assert.Equal(t, session, d.SessionID)
	assert.Equal(t, id.RuleID(1), d.RuleID)
	assert.Equal(t, "A", d.Code)
	assert.Equal(t, now, d.CreatedAt)
	assert.Equal(t, results[0].Detail, d.Result)
}
