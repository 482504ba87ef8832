//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"neuroease/internal/screening/models"
	"neuroease/internal/screening/store"
	id "neuroease/pkg/domain"
	"neuroease/pkg/platform/sentinel"
	txcontext "neuroease/pkg/platform/tx"
	"neuroease/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "diagnoses"))
}

func diagnosisFor(sessionID id.SessionID, ruleID id.RuleID) *models.Diagnosis {
	return &models.Diagnosis{
		ID:        id.NewDiagnosisID(),
		SessionID: sessionID,
		UserID:    id.UserID(uuid.New()),
		RuleID:    ruleID,
		Code:      "GAD",
		Title:     "Generalized anxiety disorder",
		Result:    models.DetailFor("Generalized anxiety disorder"),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// TestConcurrentCreateSingleWinner verifies the unique constraint admits one
// diagnosis per (session, rule) under contention.
func (s *PostgresStoreSuite) TestConcurrentCreateSingleWinner() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	const goroutines = 20

	var wg sync.WaitGroup
	var created, conflicts atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateIfAbsent(ctx, diagnosisFor(sessionID, 1))
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())

	list, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresStoreSuite) TestListRoundTrip() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	d := diagnosisFor(sessionID, 4)
	s.Require().NoError(s.store.CreateIfAbsent(ctx, d))

	list, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(d.ID, list[0].ID)
	s.Equal(d.Result, list[0].Result)
	s.True(d.CreatedAt.Equal(list[0].CreatedAt))
}

func (s *PostgresStoreSuite) TestCreateJoinsContextTransaction() {
	ctx := context.Background()
	sessionID := id.NewSessionID()

	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateIfAbsent(txcontext.WithTx(ctx, tx), diagnosisFor(sessionID, 1)))
	s.Require().NoError(tx.Rollback())

	list, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *PostgresStoreSuite) TestExists() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(s.store.CreateIfAbsent(ctx, diagnosisFor(sessionID, 2)))

	ok, err := s.store.Exists(ctx, sessionID, 2)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.Exists(ctx, sessionID, 3)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.store.Exists(ctx, id.NewSessionID(), 2)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PostgresStoreSuite) TestExistsSeesContextTransaction() {
	ctx := context.Background()
	sessionID := id.NewSessionID()

	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	defer func() { _ = tx.Rollback() }()
	txCtx := txcontext.WithTx(ctx, tx)
	s.Require().NoError(s.store.CreateIfAbsent(txCtx, diagnosisFor(sessionID, 1)))

	inTx, err := s.store.Exists(txCtx, sessionID, 1)
	s.Require().NoError(err)
	s.True(inTx)

	outside, err := s.store.Exists(ctx, sessionID, 1)
	s.Require().NoError(err)
	s.False(outside)
}
