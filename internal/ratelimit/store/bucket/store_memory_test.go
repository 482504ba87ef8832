package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"neuroease/internal/ratelimit/models"
	"neuroease/pkg/requestcontext"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	now   time.Time
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.store = New()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryBucketStoreSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.at(0), "allow:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("requests up to limit allowed", func() {
		var result *models.RateLimitResult
		var err error
		for range testLimit {
			result, err = s.store.Allow(s.at(0), "allow:limit", testLimit, testWindow)
		}
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("request over limit denied with retry hint", func() {
		for i := range testLimit {
			_, err := s.store.Allow(s.at(time.Duration(i)*time.Second), "allow:over", testLimit, testWindow)
			s.Require().NoError(err)
		}
		result, err := s.store.Allow(s.at(30*time.Second), "allow:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Equal(testLimit, result.Limit)
		s.Equal(30, result.RetryAfter)
	})

	s.Run("window slides past the oldest request", func() {
		_, err := s.store.Allow(s.at(0), "allow:slide", 1, testWindow)
		s.Require().NoError(err)

		denied, err := s.store.Allow(s.at(59*time.Second), "allow:slide", 1, testWindow)
		s.Require().NoError(err)
		s.False(denied.Allowed)

		allowed, err := s.store.Allow(s.at(testWindow), "allow:slide", 1, testWindow)
		s.Require().NoError(err)
		s.True(allowed.Allowed)
	})

	s.Run("keys are independent", func() {
		_, err := s.store.Allow(s.at(0), "allow:a", 1, testWindow)
		s.Require().NoError(err)
		result, err := s.store.Allow(s.at(0), "allow:b", 1, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	_, err := s.store.Allow(s.at(0), "reset", 1, testWindow)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(s.at(0), "reset"))

	result, err := s.store.Allow(s.at(0), "reset", 1, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *InMemoryBucketStoreSuite) TestSweepDropsIdleBuckets() {
	_, err := s.store.Allow(s.at(0), "prune:old", 1, testWindow)
	s.Require().NoError(err)
	_, err = s.store.Allow(s.at(50*time.Second), "prune:recent", 1, testWindow)
	s.Require().NoError(err)

	s.Equal(1, s.store.Sweep(s.at(90*time.Second)))
	s.Equal(1, s.store.Active())
}

func (s *InMemoryBucketStoreSuite) TestConcurrentAllowNeverExceedsLimit() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.at(0), "concurrent", testLimit, testWindow)
			s.NoError(err)
			if result != nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
