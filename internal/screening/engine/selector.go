package engine

import (
	"fmt"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
)

// Strategy selects how the next question is chosen.
type Strategy string

const (
	// StrategyBreadth asks every catalog question once, in catalog order.
	StrategyBreadth Strategy = "breadth"
	// StrategyNearest first asks questions of the unmatched rule closest to
	// its threshold, then falls back to breadth order.
	StrategyNearest Strategy = "nearest"
)

// ParseStrategy maps a config value onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyBreadth:
		return StrategyBreadth, nil
	case StrategyNearest:
		return StrategyNearest, nil
	default:
		return "", fmt.Errorf("unknown selection strategy %q", s)
	}
}

// Questions returns the distinct question ids referenced by the catalog, in
// order of first appearance scanning rules in catalog order and conditions in
// declared order.
func Questions(rules []models.DiagnosticRule) []id.QuestionID {
	seen := make(map[id.QuestionID]struct{})
	var out []id.QuestionID
	for _, rule := range rules {
		for _, c := range rule.Conditions {
			if _, ok := seen[c.QuestionID]; ok {
				continue
			}
			seen[c.QuestionID] = struct{}{}
			out = append(out, c.QuestionID)
		}
	}
	return out
}

// NextQuestion returns the first unanswered catalog question, or done=true
// when every referenced question has an answer. Match state is not consulted,
// so two sessions with the same history see the same sequence.
func NextQuestion(answers models.AnswerSet, rules []models.DiagnosticRule) (q id.QuestionID, done bool) {
	for _, candidate := range Questions(rules) {
		if !answers.Has(candidate) {
			return candidate, false
		}
	}
	return "", true
}

// NextQuestionNearest prefers the unmatched, still reachable rule needing
// the fewest additional satisfied conditions (ties broken by catalog order)
// and returns its first unanswered question. It returns the same done signal
// as NextQuestion and never returns an answered question.
func NextQuestionNearest(answers models.AnswerSet, rules []models.DiagnosticRule) (id.QuestionID, bool) {
	best := -1
	bestGap := 0
	var bestQuestion id.QuestionID

	for i, rule := range rules {
		if rule.Validate() != nil {
			continue
		}
		satisfied := 0
		var firstOpen id.QuestionID
		open := 0
		for _, c := range rule.Conditions {
			switch {
			case Satisfies(c, answers):
				satisfied++
			case !answers.Has(c.QuestionID):
				open++
				if firstOpen == "" {
					firstOpen = c.QuestionID
				}
			}
		}
		gap := rule.MinimumMatchesRequired - satisfied
		if gap <= 0 || open < gap {
			continue // already matched, or cannot reach its threshold
		}
		if best == -1 || gap < bestGap {
			best, bestGap, bestQuestion = i, gap, firstOpen
		}
	}

	if best != -1 {
		return bestQuestion, false
	}
	return NextQuestion(answers, rules)
}

// Select dispatches on strategy.
func Select(strategy Strategy, answers models.AnswerSet, rules []models.DiagnosticRule) (id.QuestionID, bool) {
	if strategy == StrategyNearest {
		return NextQuestionNearest(answers, rules)
	}
	return NextQuestion(answers, rules)
}
