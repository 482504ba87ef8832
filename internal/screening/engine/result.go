package engine

import (
	"time"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
)

// BuildResults renders one DiagnosisResult per matched rule, preserving
// order.
func BuildResults(matched []models.DiagnosticRule) []models.DiagnosisResult {
	results := make([]models.DiagnosisResult, 0, len(matched))
	for _, rule := range matched {
		label := rule.Title
		if label == "" {
			label = rule.Code
		}
		results = append(results, models.DiagnosisResult{
			Code:      rule.Code,
			Diagnosis: label,
			Detail:    models.DetailFor(label),
		})
	}
	return results
}

// NewDiagnosis builds the audit record for rule matching in a session.
func NewDiagnosis(sessionID id.SessionID, userID id.UserID, rule models.DiagnosticRule, now time.Time) *models.Diagnosis {
	label := rule.Title
	if label == "" {
		label = rule.Code
	}
	return &models.Diagnosis{
		ID:        id.NewDiagnosisID(),
		SessionID: sessionID,
		UserID:    userID,
		RuleID:    rule.ID,
		Code:      rule.Code,
		Title:     rule.Title,
		Result:    models.DetailFor(label),
		CreatedAt: now,
	}
}
