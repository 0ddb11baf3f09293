package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/session"
	"tickerdesk/internal/user"
	id "tickerdesk/pkg/domain"
)

type RedisSessionStoreSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	store *RedisStore
}

func (s *RedisSessionStoreSuite) SetupTest() {
	mr, err := miniredis.Run()
	require.NoError(s.T(), err)
	s.mr = mr
	s.store = NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func (s *RedisSessionStoreSuite) TearDownTest() {
	s.mr.Close()
}

func (s *RedisSessionStoreSuite) newSession(ttl time.Duration) *session.Session {
	now := time.Now()
	u := user.New("redis@example.com", "$2a$10$fakehash", now)
	return &session.Session{
		ID:                id.NewSessionID(),
		Identity:          session.Serialize(u),
		DeviceDisplayName: "Firefox on Linux",
		CreatedAt:         now,
		ExpiresAt:         now.Add(ttl),
	}
}

func (s *RedisSessionStoreSuite) TestCreateAndFind() {
	sess := s.newSession(time.Hour)
	require.NoError(s.T(), s.store.Create(context.Background(), sess))

	found, err := s.store.FindByID(context.Background(), sess.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), sess.ID, found.ID)
	assert.Equal(s.T(), sess.Identity.UserID, found.Identity.UserID)
	assert.Equal(s.T(), sess.Identity.Email, found.Identity.Email)
	assert.Equal(s.T(), "Firefox on Linux", found.DeviceDisplayName)
}

func (s *RedisSessionStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), id.NewSessionID())
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestDelete() {
	sess := s.newSession(time.Hour)
	require.NoError(s.T(), s.store.Create(context.Background(), sess))

	require.NoError(s.T(), s.store.Delete(context.Background(), sess.ID))

	_, err := s.store.FindByID(context.Background(), sess.ID)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)

	err = s.store.Delete(context.Background(), sess.ID)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestKeyExpiresWithSession() {
	sess := s.newSession(time.Minute)
	require.NoError(s.T(), s.store.Create(context.Background(), sess))

	s.mr.FastForward(2 * time.Minute)

	_, err := s.store.FindByID(context.Background(), sess.ID)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func TestRedisSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisSessionStoreSuite))
}
