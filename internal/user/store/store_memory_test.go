package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/user"
	id "tickerdesk/pkg/domain"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryUserStoreSuite) TestCreateAndFind() {
	u := user.New("jane.doe@example.com", "$2a$10$fakehash", time.Now())

	err := s.store.Create(context.Background(), u)
	require.NoError(s.T(), err)

	foundByID, err := s.store.FindByID(context.Background(), u.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), u, foundByID)

	foundByEmail, err := s.store.FindByEmail(context.Background(), u.Email)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), u, foundByEmail)
}

func (s *InMemoryUserStoreSuite) TestFindNotFound() {
	_, err := s.store.FindByID(context.Background(), id.NewUserID())
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)

	_, err = s.store.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryUserStoreSuite) TestCreateDuplicateEmail() {
	first := user.New("dup@example.com", "$2a$10$fakehash", time.Now())
	require.NoError(s.T(), s.store.Create(context.Background(), first))

	second := user.New("dup@example.com", "$2a$10$otherhash", time.Now())
	err := s.store.Create(context.Background(), second)
	assert.ErrorIs(s.T(), err, sentinel.ErrAlreadyExists)

	// Exactly one row survives, and it is the first one.
	found, err := s.store.FindByEmail(context.Background(), "dup@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, found.ID)
}

func (s *InMemoryUserStoreSuite) TestEmailIsCaseSensitive() {
	lower := user.New("case@example.com", "$2a$10$fakehash", time.Now())
	require.NoError(s.T(), s.store.Create(context.Background(), lower))

	_, err := s.store.FindByEmail(context.Background(), "Case@example.com")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryUserStoreSuite) TestFindOrCreateByEmail() {
	first := user.New("oauth@example.com", "!oauth-account", time.Now())

	created, err := s.store.FindOrCreateByEmail(context.Background(), first.Email, first)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, created.ID)

	// Second call with a fresh candidate returns the existing row.
	second := user.New("oauth@example.com", "!oauth-account", time.Now())
	found, err := s.store.FindOrCreateByEmail(context.Background(), second.Email, second)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, found.ID)
}

func (s *InMemoryUserStoreSuite) TestConcurrentFindOrCreateSingleRow() {
	const goroutines = 16

	ids := make([]id.UserID, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			candidate := user.New("race@example.com", "!oauth-account", time.Now())
			got, err := s.store.FindOrCreateByEmail(context.Background(), candidate.Email, candidate)
			require.NoError(s.T(), err)
			ids[n] = got.ID
		}(i)
	}
	wg.Wait()

	for _, got := range ids[1:] {
		assert.Equal(s.T(), ids[0], got)
	}
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}
