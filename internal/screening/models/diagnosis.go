package models

import (
	"fmt"
	"time"

	id "neuroease/pkg/domain"
)

// Diagnosis is the persisted record of a rule matching within a session.
// At most one exists per (SessionID, RuleID); rows are never updated.
type Diagnosis struct {
	ID        id.DiagnosisID `json:"id"`
	SessionID id.SessionID   `json:"session_id"`
	UserID    id.UserID      `json:"user_id"`
	RuleID    id.RuleID      `json:"rule_id"`
	Code      string         `json:"code"`
	Title     string         `json:"title"`
	Result    string         `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}

// DiagnosisResult is returned to the caller of an evaluation; it is not
// persisted.
type DiagnosisResult struct {
	Code      string `json:"code"`
	Diagnosis string `json:"diagnosis"`
	Detail    string `json:"detail"`
}

// DetailFor renders the explanation shown next to a diagnosis label.
func DetailFor(label string) string {
	return fmt.Sprintf("Diagnosis: %s. Please consult a physician for more information.", label)
}
