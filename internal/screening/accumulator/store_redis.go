package accumulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
	"neuroease/pkg/requestcontext"
)

const (
	sessionKeyPrefix = "screening:session:"
	// maxTxRetries bounds optimistic-lock retries when two writers race on
	// the same session.
	maxTxRetries = 10
)

// redisSession is the JSON document stored per session. The key TTL is the
// idle timeout and is refreshed on every touch, so Redis performs expiry.
type redisSession struct {
	Session models.Session      `json:"session"`
	Answers []models.UserAnswer `json:"answers"`
}

// Redis keeps sessions in Redis so several instances can serve one
// questionnaire. Writes use WATCH/MULTI on the session key: per-session
// serialization without a global lock.
type Redis struct {
	client      *redis.Client
	idleTimeout time.Duration
}

// NewRedis constructs a Redis-backed accumulator.
func NewRedis(client *redis.Client, idleTimeout time.Duration) *Redis {
	return &Redis{client: client, idleTimeout: idleTimeout}
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func (r *Redis) IdleTimeout() time.Duration {
	return r.idleTimeout
}

func (r *Redis) Start(ctx context.Context, userID id.UserID) (models.Session, error) {
	if userID.IsNil() {
		return models.Session{}, dErrors.New(dErrors.CodeUnauthorized, "user is required")
	}
	now := requestcontext.Now(ctx)
	doc := redisSession{Session: models.Session{
		ID:         id.NewSessionID(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}}
	payload, err := json.Marshal(doc)
	if err != nil {
		return models.Session{}, fmt.Errorf("marshal session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, sessionKey(doc.Session.ID), payload, r.idleTimeout).Result()
	if err != nil {
		return models.Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start session")
	}
	if !ok {
		return models.Session{}, dErrors.New(dErrors.CodeConflict, "session id collision")
	}
	return doc.Session, nil
}

func (r *Redis) Record(ctx context.Context, sessionID id.SessionID, answer models.UserAnswer) (models.AnswerSet, error) {
	if err := checkAnswer(sessionID, answer); err != nil {
		return models.AnswerSet{}, err
	}
	key := sessionKey(sessionID)
	now := requestcontext.Now(ctx)

	var result models.AnswerSet
	txf := func(tx *redis.Tx) error {
		doc, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}
		if doc.Session.UserID != answer.UserID {
			return forbidden()
		}
		set := models.NewAnswerSet(doc.Answers...).With(answer)
		doc.Answers = set.Answers()
		doc.Session.LastSeenAt = now

		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.idleTimeout)
			return nil
		})
		if err != nil {
			return err
		}
		result = set
		return nil
	}

	for range maxTxRetries {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return models.AnswerSet{}, err
		}
		return models.AnswerSet{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record answer")
	}
	return models.AnswerSet{}, dErrors.New(dErrors.CodeConflict, "too many concurrent writes to session")
}

func (r *Redis) Answers(ctx context.Context, userID id.UserID, sessionID id.SessionID) (models.AnswerSet, error) {
	key := sessionKey(sessionID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.AnswerSet{}, sessionExpired()
	}
	if err != nil {
		return models.AnswerSet{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	var doc redisSession
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.AnswerSet{}, dErrors.Wrap(err, dErrors.CodeInternal, "corrupt session document")
	}
	// Only the owner's reads keep the session alive.
	if doc.Session.UserID != userID {
		return models.AnswerSet{}, forbidden()
	}
	touched, err := r.client.Expire(ctx, key, r.idleTimeout).Result()
	if err != nil {
		return models.AnswerSet{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to refresh session")
	}
	if !touched {
		return models.AnswerSet{}, sessionExpired()
	}
	return models.NewAnswerSet(doc.Answers...), nil
}

func (r *Redis) load(ctx context.Context, tx *redis.Tx, key string) (*redisSession, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sessionExpired()
	}
	if err != nil {
		return nil, err
	}
	var doc redisSession
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &doc, nil
}
