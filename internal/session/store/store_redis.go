package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/session"
	id "tickerdesk/pkg/domain"
)

const (
	sessionKeyPrefix = "session:"

	// defaultSessionTTL is the fallback TTL when session expiry cannot be determined.
	defaultSessionTTL = 24 * time.Hour
)

// sessionJSON is the JSON-serializable representation of a Session.
// Explicit JSON tags control the serialization format.
type sessionJSON struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	Email             string `json:"email"`
	UserCreatedAt     int64  `json:"user_created_at"` // Unix nano
	DeviceDisplayName string `json:"device_display_name"`
	CreatedAt         int64  `json:"created_at"` // Unix nano
	ExpiresAt         int64  `json:"expires_at"` // Unix nano
}

func sessionToJSON(s *session.Session) *sessionJSON {
	return &sessionJSON{
		ID:                uuid.UUID(s.ID).String(),
		UserID:            uuid.UUID(s.Identity.UserID).String(),
		Email:             s.Identity.Email,
		UserCreatedAt:     s.Identity.CreatedAt.UnixNano(),
		DeviceDisplayName: s.DeviceDisplayName,
		CreatedAt:         s.CreatedAt.UnixNano(),
		ExpiresAt:         s.ExpiresAt.UnixNano(),
	}
}

func sessionFromJSON(j *sessionJSON) (*session.Session, error) {
	sessionID, err := uuid.Parse(j.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	userID, err := uuid.Parse(j.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	return &session.Session{
		ID: id.SessionID(sessionID),
		Identity: session.Identity{
			UserID:    id.UserID(userID),
			Email:     j.Email,
			CreatedAt: time.Unix(0, j.UserCreatedAt),
		},
		DeviceDisplayName: j.DeviceDisplayName,
		CreatedAt:         time.Unix(0, j.CreatedAt),
		ExpiresAt:         time.Unix(0, j.ExpiresAt),
	}, nil
}

// RedisStore persists sessions in Redis. Expiry is delegated to key TTLs, so
// no sweep job is needed. This is the recommended store when more than one
// instance serves traffic.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + uuid.UUID(sessionID).String()
}

func (s *RedisStore) Create(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("session is required")
	}

	data, err := json.Marshal(sessionToJSON(sess))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	if err := s.client.Set(ctx, s.sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session by id: %w", err)
	}

	var j sessionJSON
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return sessionFromJSON(&j)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	removed, err := s.client.Del(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// DeleteExpired exists for interface compatibility with the memory store.
// Redis expires session keys via TTL on its own.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
