package models

import (
	"time"

	id "neuroease/pkg/domain"
)

// Session scopes answer accumulation for one user. It expires after an idle
// period; an expired session cannot be resumed.
type Session struct {
	ID         id.SessionID `json:"id"`
	UserID     id.UserID    `json:"user_id"`
	CreatedAt  time.Time    `json:"created_at"`
	LastSeenAt time.Time    `json:"last_seen_at"`
}

// ExpiresAt is the instant the session lapses if not touched again.
func (s Session) ExpiresAt(idle time.Duration) time.Time {
	return s.LastSeenAt.Add(idle)
}

// IsExpired reports whether the session has been idle longer than idle.
func (s Session) IsExpired(now time.Time, idle time.Duration) bool {
	return now.Sub(s.LastSeenAt) > idle
}
