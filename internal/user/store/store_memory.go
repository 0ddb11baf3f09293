package store

import (
	"context"
	"fmt"
	"sync"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/user"
	id "tickerdesk/pkg/domain"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return sentinel.ErrAlreadyExists when the email uniqueness constraint would be violated
// - Return wrapped errors with context for infrastructure failures

// InMemoryUserStore stores users in memory for tests/dev.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*user.User
}

// NewInMemory constructs an empty in-memory user store.
func NewInMemory() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[id.UserID]*user.User)}
}

// Create inserts a new user, enforcing email uniqueness the way the
// database unique index does.
func (s *InMemoryUserStore) Create(_ context.Context, u *user.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyExists)
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// FindOrCreateByEmail atomically finds a user by email or creates it if not found.
// This prevents duplicate user creation when two OAuth logins race on the same
// new email.
func (s *InMemoryUserStore) FindOrCreateByEmail(_ context.Context, email string, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == email {
			return existing, nil
		}
	}

	s.users[u.ID] = u
	return u, nil
}
