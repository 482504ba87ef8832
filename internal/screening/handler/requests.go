package handler

import (
	"strings"

	"neuroease/internal/screening/service"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
)

// SubmitAnswerRequest is the HTTP request body for POST /screening/answers.
type SubmitAnswerRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`

	parsedSessionID  id.SessionID
	parsedQuestionID id.QuestionID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitAnswerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.SessionID = strings.TrimSpace(r.SessionID)
	if r.SessionID != "" {
		sessionID, err := id.ParseSessionID(r.SessionID)
		if err != nil {
			return err
		}
		r.parsedSessionID = sessionID
	}

	questionID, err := id.ParseQuestionID(r.QuestionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidAnswer, "invalid question_id")
	}
	r.parsedQuestionID = questionID

	r.Value = strings.TrimSpace(r.Value)
	if r.Value == "" {
		return dErrors.New(dErrors.CodeInvalidAnswer, "value is required")
	}
	return nil
}

func (r *SubmitAnswerRequest) toService(userID id.UserID) service.SubmitAnswerRequest {
	return service.SubmitAnswerRequest{
		UserID:     userID,
		SessionID:  r.parsedSessionID,
		QuestionID: r.parsedQuestionID,
		Value:      r.Value,
	}
}
