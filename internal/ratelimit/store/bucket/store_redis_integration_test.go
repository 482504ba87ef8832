//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"neuroease/internal/ratelimit/store/bucket"
	"neuroease/pkg/requestcontext"
	"neuroease/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedis(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketStoreSuite) TestDeniesOverLimitUntilWindowSlides() {
	base := time.Now().Truncate(time.Second)
	at := func(offset time.Duration) context.Context {
		return requestcontext.WithTime(context.Background(), base.Add(offset))
	}

	for i := range 3 {
		result, err := s.store.Allow(at(time.Duration(i)*time.Millisecond), "ratelimit:user:a", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(2-i, result.Remaining)
	}

	denied, err := s.store.Allow(at(time.Second), "ratelimit:user:a", 3, time.Minute)
	s.Require().NoError(err)
	s.False(denied.Allowed)
	s.True(base.Add(time.Minute).Equal(denied.ResetAt))
	s.Equal(59, denied.RetryAfter)

	allowed, err := s.store.Allow(at(time.Minute+time.Millisecond), "ratelimit:user:a", 3, time.Minute)
	s.Require().NoError(err)
	s.True(allowed.Allowed)
}

func (s *RedisBucketStoreSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "ratelimit:user:b", 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "ratelimit:user:b"))

	result, err := s.store.Allow(ctx, "ratelimit:user:b", 1, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketStoreSuite) TestWindowKeyExpiresWithWindow() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "ratelimit:user:c", 5, 30*time.Second)
	s.Require().NoError(err)

	ttl, err := s.redis.TTL(ctx, "ratelimit:user:c")
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, 30*time.Second)

	s.Require().NoError(s.store.Reset(ctx, "ratelimit:user:c"))
	keys, err := s.redis.Keys(ctx, "ratelimit:user:*")
	s.Require().NoError(err)
	s.Empty(keys)
}
