package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"neuroease/internal/ratelimit/models"
	"neuroease/internal/ratelimit/store/bucket"
	"neuroease/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("redis: connection refused")
}

type RateLimitSuite struct {
	suite.Suite
	logger *slog.Logger
	next   http.Handler
	userID string
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.next = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.userID = uuid.NewString()
}

func (s *RateLimitSuite) request() *http.Request {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/screening/sessions/x/next")
	return testutil.WithUserID(req, s.userID)
}

func (s *RateLimitSuite) TestRejectsOverBudget() {
	mw := New(bucket.New(), models.Limit{RequestsPerWindow: 2, Window: time.Minute}, s.logger)
	h := mw.RateLimitAuthenticated(s.next)

	for i := range 2 {
		rr := testutil.DoRequest(h, s.request())
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
		s.Equal("2", rr.Header().Get("X-RateLimit-Limit"))
		s.Equal([]string{"1", "0"}[i], rr.Header().Get("X-RateLimit-Remaining"))
	}

	rr := testutil.DoRequest(h, s.request())
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "user_rate_limit_exceeded")
	s.NotEmpty(rr.Header().Get("Retry-After"))
}

func (s *RateLimitSuite) TestBudgetsArePerUser() {
	mw := New(bucket.New(), models.Limit{RequestsPerWindow: 1, Window: time.Minute}, s.logger)
	h := mw.RateLimitAuthenticated(s.next)

	testutil.AssertStatus(s.T(), testutil.DoRequest(h, s.request()), http.StatusNoContent)

	other := testutil.WithUserID(testutil.NewRequest(s.T(), http.MethodGet, "/"), uuid.NewString())
	testutil.AssertStatus(s.T(), testutil.DoRequest(h, other), http.StatusNoContent)
}

func (s *RateLimitSuite) TestAnonymousPassesThrough() {
	mw := New(bucket.New(), models.Limit{RequestsPerWindow: 1, Window: time.Minute}, s.logger)
	h := mw.RateLimitAuthenticated(s.next)

	for range 3 {
		rr := testutil.DoRequest(h, testutil.NewRequest(s.T(), http.MethodGet, "/"))
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	}
}

func (s *RateLimitSuite) TestFailsOpenOnStoreError() {
	mw := New(failingStore{}, models.Limit{RequestsPerWindow: 1, Window: time.Minute}, s.logger)
	rr := testutil.DoRequest(mw.RateLimitAuthenticated(s.next), s.request())
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	s.Empty(rr.Header().Get("X-RateLimit-Limit"))
}

func (s *RateLimitSuite) TestZeroLimitDisables() {
	mw := New(failingStore{}, models.Limit{}, s.logger)
	for range 3 {
		rr := testutil.DoRequest(mw.RateLimitAuthenticated(s.next), s.request())
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	}
}
