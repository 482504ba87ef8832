package handler

import (
	"time"

	"neuroease/internal/screening/models"
	"neuroease/internal/screening/service"
)

type StartSessionResponse struct {
	SessionID        string `json:"session_id"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

type DiagnosisResultResponse struct {
	Code      string `json:"code"`
	Diagnosis string `json:"diagnosis"`
	Detail    string `json:"detail"`
}

type SubmitAnswerResponse struct {
	SessionID string                    `json:"session_id"`
	Matched   []DiagnosisResultResponse `json:"matched"`
}

// NextQuestionResponse carries either question_id or done with a message.
type NextQuestionResponse struct {
	QuestionID string `json:"question_id,omitempty"`
	Done       bool   `json:"done,omitempty"`
	Message    string `json:"message,omitempty"`
}

type DiagnosisResponse struct {
	ID        string    `json:"id"`
	RuleID    int64     `json:"rule_id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type ListDiagnosesResponse struct {
	Diagnoses []DiagnosisResponse `json:"diagnoses"`
}

type ReloadCatalogResponse struct {
	Rules int `json:"rules"`
}

func fromSubmitResult(res *service.SubmitAnswerResult) SubmitAnswerResponse {
	out := SubmitAnswerResponse{
		SessionID: res.SessionID.String(),
		Matched:   make([]DiagnosisResultResponse, 0, len(res.Matched)),
	}
	for _, m := range res.Matched {
		out.Matched = append(out.Matched, DiagnosisResultResponse{
			Code:      m.Code,
			Diagnosis: m.Diagnosis,
			Detail:    m.Detail,
		})
	}
	return out
}

func fromNextQuestion(next *service.NextQuestion) NextQuestionResponse {
	if next.Done {
		return NextQuestionResponse{Done: true, Message: next.Message}
	}
	return NextQuestionResponse{QuestionID: next.QuestionID.String()}
}

func fromDiagnoses(list []*models.Diagnosis) ListDiagnosesResponse {
	out := ListDiagnosesResponse{Diagnoses: make([]DiagnosisResponse, 0, len(list))}
	for _, d := range list {
		out.Diagnoses = append(out.Diagnoses, DiagnosisResponse{
			ID:        d.ID.String(),
			RuleID:    int64(d.RuleID),
			Code:      d.Code,
			Title:     d.Title,
			Result:    d.Result,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}
