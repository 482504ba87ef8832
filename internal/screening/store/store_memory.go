// Package store persists diagnoses. Both implementations enforce at most one
// diagnosis per (session, rule) and report a second insert as
// sentinel.ErrConflict.
package store

import (
	"context"
	"slices"
	"sync"

	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	"neuroease/pkg/platform/sentinel"
)

type diagnosisKey struct {
	session id.SessionID
	rule    id.RuleID
}

// InMemory stores diagnoses in process memory.
type InMemory struct {
	mu        sync.RWMutex
	byKey     map[diagnosisKey]*models.Diagnosis
	bySession map[id.SessionID][]*models.Diagnosis
}

func NewInMemory() *InMemory {
	return &InMemory{
		byKey:     make(map[diagnosisKey]*models.Diagnosis),
		bySession: make(map[id.SessionID][]*models.Diagnosis),
	}
}

// CreateIfAbsent inserts d unless a diagnosis already exists for its session
// and rule.
func (s *InMemory) CreateIfAbsent(_ context.Context, d *models.Diagnosis) error {
	key := diagnosisKey{session: d.SessionID, rule: d.RuleID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[key]; ok {
		return sentinel.ErrConflict
	}
	stored := *d
	s.byKey[key] = &stored
	s.bySession[d.SessionID] = append(s.bySession[d.SessionID], &stored)
	return nil
}

// Exists reports whether the session already has a diagnosis for the rule.
func (s *InMemory) Exists(_ context.Context, sessionID id.SessionID, ruleID id.RuleID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byKey[diagnosisKey{session: sessionID, rule: ruleID}]
	return ok, nil
}

// ListBySession returns the session's diagnoses ordered by creation time,
// then rule id.
func (s *InMemory) ListBySession(_ context.Context, sessionID id.SessionID) ([]*models.Diagnosis, error) {
	s.mu.RLock()
	stored := s.bySession[sessionID]
	out := make([]*models.Diagnosis, 0, len(stored))
	for _, d := range stored {
		c := *d
		out = append(out, &c)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, compareDiagnoses)
	return out, nil
}

func compareDiagnoses(a, b *models.Diagnosis) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.RuleID < b.RuleID:
		return -1
	case a.RuleID > b.RuleID:
		return 1
	}
	return 0
}
