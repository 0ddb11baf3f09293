package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/user"
	dErrors "tickerdesk/pkg/domain-errors"
	"tickerdesk/pkg/secrets"
)

func (s *AuthSuite) TestLocalAuthenticateSuccess() {
	stored := user.New("alice@example.com", "$2a$10$storedhash", s.now)
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(stored, nil)
	s.mockHasher.EXPECT().Verify("hunter22", "$2a$10$storedhash").Return(nil)

	got, err := s.local.Authenticate(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), stored.ID, got.ID)
}

func (s *AuthSuite) TestLocalAuthenticateUnknownUser() {
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").
		Return(nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound))

	_, err := s.local.Authenticate(context.Background(), Credentials{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.True(s.T(), IsAuthFailure(err))
}

func (s *AuthSuite) TestLocalAuthenticateWrongPassword() {
	stored := user.New("alice@example.com", "$2a$10$storedhash", s.now)
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(stored, nil)
	s.mockHasher.EXPECT().Verify("wrong", "$2a$10$storedhash").
		Return(dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

	_, err := s.local.Authenticate(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	// A mismatch for an existing user is Invalid, never NotFound.
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.False(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.True(s.T(), IsAuthFailure(err))
}

func (s *AuthSuite) TestLocalAuthenticateVerificationError() {
	stored := user.New("alice@example.com", "not-a-bcrypt-hash", s.now)
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(stored, nil)
	s.mockHasher.EXPECT().Verify("hunter22", "not-a-bcrypt-hash").
		Return(dErrors.New(dErrors.CodeInternal, "could not verify password"))

	_, err := s.local.Authenticate(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	// A hash library failure is a hard error, not a negative result.
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInternal))
	assert.False(s.T(), IsAuthFailure(err))
}

func (s *AuthSuite) TestLocalAuthenticateStoreError() {
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").
		Return(nil, errors.New("connection refused"))

	_, err := s.local.Authenticate(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *AuthSuite) TestLocalAuthenticateStoreTimeout() {
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").
		Return(nil, fmt.Errorf("find user by email: %w", context.DeadlineExceeded))

	_, err := s.local.Authenticate(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *AuthSuite) TestLocalAuthenticateRejectsSentinelWithoutCompare() {
	// OAuth-only account: the hasher must never be consulted.
	stored := user.New("oauth@example.com", secrets.SentinelPassword, s.now)
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "oauth@example.com").Return(stored, nil)

	_, err := s.local.Authenticate(context.Background(), Credentials{
		Email:    "oauth@example.com",
		Password: secrets.SentinelPassword,
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthSuite) TestLocalAuthenticateMissingCredentials() {
	_, err := s.local.Authenticate(context.Background(), Credentials{Email: "alice@example.com"})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// TestLocalRoundTripWithRealHasher exercises the strategy against the real
// bcrypt hasher instead of a mock.
func (s *AuthSuite) TestLocalRoundTripWithRealHasher() {
	hasher := secrets.NewHasher(4) // minimum cost, keeps the test fast
	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(s.T(), err)

	stored := user.New("real@example.com", hash, s.now)
	s.mockUsers.EXPECT().FindByEmail(gomock.Any(), "real@example.com").Return(stored, nil).Times(2)

	local := NewLocalStrategy(s.mockUsers, hasher, WithClock(func() time.Time { return s.now }))

	got, err := local.Authenticate(context.Background(), Credentials{
		Email:    "real@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), stored.ID, got.ID)

	_, err = local.Authenticate(context.Background(), Credentials{
		Email:    "real@example.com",
		Password: "incorrect horse",
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
