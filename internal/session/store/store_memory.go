package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/session"
	id "tickerdesk/pkg/domain"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested session does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemorySessionStore stores sessions in memory for tests/dev.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*session.Session
}

// NewInMemory constructs an empty in-memory session store.
func NewInMemory() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*session.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}
	return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
}

func (s *InMemorySessionStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	delete(s.sessions, sessionID)
	return nil
}

// DeleteExpired removes all sessions whose expiry has passed and returns the
// number removed. Redis expires keys itself; the memory store needs a sweep.
func (s *InMemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed, nil
}
