//go:build integration

package lockout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clubdesk/internal/member/lockout"
	"clubdesk/pkg/testutil/containers"
)

type RedisLockoutSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *lockout.RedisStore
}

func TestRedisLockoutSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockoutSuite))
}

func (s *RedisLockoutSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = lockout.NewRedisStore(s.redis.Client, 2*time.Second)
}

func (s *RedisLockoutSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockoutSuite) TestRecordFailureIncrements() {
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, err := s.store.RecordFailure(ctx, "a@clube.pt")
		s.Require().NoError(err)
		s.Equal(i, count)
	}

	count, err := s.store.Failures(ctx, "a@clube.pt")
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *RedisLockoutSuite) TestFailuresExpireWithWindow() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "a@clube.pt")
	s.Require().NoError(err)

	time.Sleep(2500 * time.Millisecond)

	count, err := s.store.Failures(ctx, "a@clube.pt")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RedisLockoutSuite) TestResetClearsCounter() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "a@clube.pt")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "a@clube.pt"))

	count, err := s.store.Failures(ctx, "a@clube.pt")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RedisLockoutSuite) TestKeysAreIndependent() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "a@clube.pt")
	s.Require().NoError(err)

	count, err := s.store.Failures(ctx, "b@clube.pt")
	s.Require().NoError(err)
	s.Zero(count)
}
