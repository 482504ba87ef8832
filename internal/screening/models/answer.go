package models

import (
	"strings"
	"time"

	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
)

// maxAnswerValueLength bounds stored answer values.
const maxAnswerValueLength = 512

// UserAnswer is one submitted answer. Immutable once recorded.
type UserAnswer struct {
	UserID      id.UserID     `json:"user_id"`
	SessionID   id.SessionID  `json:"session_id"`
	QuestionID  id.QuestionID `json:"question_id"`
	Value       string        `json:"value"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// Validate rejects malformed submissions with CodeInvalidAnswer.
func (a UserAnswer) Validate() error {
	if a.UserID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidAnswer, "user_id is required")
	}
	if a.QuestionID.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAnswer, "question_id is required")
	}
	if strings.TrimSpace(a.Value) == "" {
		return dErrors.New(dErrors.CodeInvalidAnswer, "value is required")
	}
	if len(a.Value) > maxAnswerValueLength {
		return dErrors.New(dErrors.CodeInvalidAnswer, "value is too long")
	}
	return nil
}

// AnswerSet is the deduplicated answer collection of one session: at most
// one answer per question, the latest submission wins, and each question
// keeps the position of its first submission.
//
// AnswerSet is a value; use NewAnswerSet or With to build one.
type AnswerSet struct {
	answers []UserAnswer
	index   map[id.QuestionID]int
}

// NewAnswerSet applies the supersede rule to answers in submission order.
func NewAnswerSet(answers ...UserAnswer) AnswerSet {
	s := AnswerSet{
		answers: make([]UserAnswer, 0, len(answers)),
		index:   make(map[id.QuestionID]int, len(answers)),
	}
	for _, a := range answers {
		s.put(a)
	}
	return s
}

func (s *AnswerSet) put(a UserAnswer) {
	if i, ok := s.index[a.QuestionID]; ok {
		s.answers[i] = a
		return
	}
	s.index[a.QuestionID] = len(s.answers)
	s.answers = append(s.answers, a)
}

// With returns a new set containing a, superseding any earlier answer to the
// same question. s is left untouched.
func (s AnswerSet) With(a UserAnswer) AnswerSet {
	next := NewAnswerSet(s.answers...)
	next.put(a)
	return next
}

// Lookup returns the answer for question q.
func (s AnswerSet) Lookup(q id.QuestionID) (UserAnswer, bool) {
	i, ok := s.index[q]
	if !ok {
		return UserAnswer{}, false
	}
	return s.answers[i], true
}

func (s AnswerSet) Has(q id.QuestionID) bool {
	_, ok := s.index[q]
	return ok
}

func (s AnswerSet) Len() int {
	return len(s.answers)
}

// Answers returns a copy of the answers in first-submission order.
func (s AnswerSet) Answers() []UserAnswer {
	return append([]UserAnswer(nil), s.answers...)
}
