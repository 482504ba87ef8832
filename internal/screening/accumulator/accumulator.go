// Package accumulator owns per-session answer state. It is the only shared
// mutable state in the screening engine; writes for one session are
// serialized, writes for different sessions are not.
package accumulator

import (
	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
)

// sessionExpired is returned for unknown sessions and sessions idle past the
// timeout. Callers must start a new session.
func sessionExpired() error {
	return dErrors.New(dErrors.CodeSessionExpired, "screening session expired or not found")
}

func forbidden() error {
	return dErrors.New(dErrors.CodeForbidden, "session belongs to another user")
}

// checkAnswer validates an answer against the session it targets.
func checkAnswer(sessionID id.SessionID, answer models.UserAnswer) error {
	if err := answer.Validate(); err != nil {
		return err
	}
	if answer.SessionID != sessionID {
		return dErrors.New(dErrors.CodeInvalidAnswer, "answer session does not match target session")
	}
	return nil
}
