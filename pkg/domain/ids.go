package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "neuroease/pkg/domain-errors"
)

// Typed identifiers. Distinct types keep a SessionID from being passed where
// a UserID is expected.
type (
	UserID      uuid.UUID
	SessionID   uuid.UUID
	DiagnosisID uuid.UUID
)

// RuleID identifies a diagnostic rule in the catalog.
type RuleID int64

// QuestionID identifies a questionnaire item referenced by rule conditions.
type QuestionID string

func (u UserID) String() string      { return uuid.UUID(u).String() }
func (s SessionID) String() string   { return uuid.UUID(s).String() }
func (d DiagnosisID) String() string { return uuid.UUID(d).String() }
func (r RuleID) String() string      { return strconv.FormatInt(int64(r), 10) }
func (q QuestionID) String() string  { return string(q) }

func (u UserID) IsNil() bool    { return uuid.UUID(u) == uuid.Nil }
func (s SessionID) IsNil() bool { return uuid.UUID(s) == uuid.Nil }

// IsZero reports whether the question id is empty after trimming.
func (q QuestionID) IsZero() bool { return strings.TrimSpace(string(q)) == "" }

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewDiagnosisID returns a random diagnosis identifier.
func NewDiagnosisID() DiagnosisID { return DiagnosisID(uuid.New()) }

// ParseUserID parses a non-nil UUID user identifier.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseSessionID parses a non-nil UUID session identifier.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseRuleID parses a positive rule identifier.
func ParseRuleID(s string) (RuleID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "rule_id must be a positive integer")
	}
	return RuleID(n), nil
}

// ParseQuestionID trims and validates a question identifier.
func ParseQuestionID(s string) (QuestionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "question_id is required")
	}
	if len(s) > 64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "question_id must be at most 64 characters")
	}
	return QuestionID(s), nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}
