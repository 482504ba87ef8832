package accumulator

import (
	"context"
	"sync"
	"time"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
	"neuroease/pkg/requestcontext"
)

// numShards spreads sessions over independent locks so concurrent sessions
// do not contend while writes to one session stay serialized.
const numShards = 64

type sessionState struct {
	session models.Session
	answers []models.UserAnswer
}

type shard struct {
	mu       sync.Mutex
	sessions map[id.SessionID]*sessionState
}

// InMemory keeps sessions in process memory.
type InMemory struct {
	shards      [numShards]shard
	idleTimeout time.Duration
}

// New creates an in-memory accumulator with the given idle timeout.
func New(idleTimeout time.Duration) *InMemory {
	a := &InMemory{idleTimeout: idleTimeout}
	for i := range a.shards {
		a.shards[i].sessions = make(map[id.SessionID]*sessionState)
	}
	return a
}

// shardFor hashes the session id with FNV-1a.
func (a *InMemory) shardFor(sessionID id.SessionID) *shard {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, b := range sessionID {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return &a.shards[h%numShards]
}

// IdleTimeout reports the configured idle timeout.
func (a *InMemory) IdleTimeout() time.Duration {
	return a.idleTimeout
}

// Start opens a new session for userID.
func (a *InMemory) Start(ctx context.Context, userID id.UserID) (models.Session, error) {
	if userID.IsNil() {
		return models.Session{}, dErrors.New(dErrors.CodeUnauthorized, "user is required")
	}
	now := requestcontext.Now(ctx)
	session := models.Session{
		ID:         id.NewSessionID(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	sh := a.shardFor(session.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.sessions[session.ID] = &sessionState{session: session}
	return session, nil
}

// lookup returns the live state for sessionID, evicting it when idle past
// the timeout. Caller holds sh.mu.
func (a *InMemory) lookup(sh *shard, sessionID id.SessionID, now time.Time) (*sessionState, error) {
	st, ok := sh.sessions[sessionID]
	if !ok {
		return nil, sessionExpired()
	}
	if st.session.IsExpired(now, a.idleTimeout) {
		delete(sh.sessions, sessionID)
		return nil, sessionExpired()
	}
	return st, nil
}

// Record appends answer, superseding an earlier answer to the same question,
// and returns the resulting answer set. The write and the snapshot are taken
// under the session's lock.
func (a *InMemory) Record(ctx context.Context, sessionID id.SessionID, answer models.UserAnswer) (models.AnswerSet, error) {
	if err := checkAnswer(sessionID, answer); err != nil {
		return models.AnswerSet{}, err
	}
	now := requestcontext.Now(ctx)

	sh := a.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, err := a.lookup(sh, sessionID, now)
	if err != nil {
		return models.AnswerSet{}, err
	}
	if st.session.UserID != answer.UserID {
		return models.AnswerSet{}, forbidden()
	}

	replaced := false
	for i := range st.answers {
		if st.answers[i].QuestionID == answer.QuestionID {
			st.answers[i] = answer
			replaced = true
			break
		}
	}
	if !replaced {
		st.answers = append(st.answers, answer)
	}
	st.session.LastSeenAt = now
	return models.NewAnswerSet(st.answers...), nil
}

// Answers returns the session's current answer set and refreshes its idle
// timer.
func (a *InMemory) Answers(ctx context.Context, userID id.UserID, sessionID id.SessionID) (models.AnswerSet, error) {
	now := requestcontext.Now(ctx)

	sh := a.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, err := a.lookup(sh, sessionID, now)
	if err != nil {
		return models.AnswerSet{}, err
	}
	if st.session.UserID != userID {
		return models.AnswerSet{}, forbidden()
	}
	st.session.LastSeenAt = now
	return models.NewAnswerSet(st.answers...), nil
}

// Sweep evicts every expired session and returns how many were removed.
func (a *InMemory) Sweep(ctx context.Context) int {
	now := requestcontext.Now(ctx)
	removed := 0
	for i := range a.shards {
		sh := &a.shards[i]
		sh.mu.Lock()
		for sid, st := range sh.sessions {
			if st.session.IsExpired(now, a.idleTimeout) {
				delete(sh.sessions, sid)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Active counts sessions currently held, expired or not.
func (a *InMemory) Active() int {
	n := 0
	for i := range a.shards {
		sh := &a.shards[i]
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}
