// Package session bridges authenticated users to durable per-request identity.
package session

import (
	"time"

	"tickerdesk/internal/user"
	id "tickerdesk/pkg/domain"
)

// Identity is the serialized form of an authenticated user stored inside a
// session. It carries enough to reconstruct an equivalent User reference
// without re-querying the credential store; the password hash is deliberately
// excluded. Profile edits after login are not reflected until re-login.
type Identity struct {
	UserID    id.UserID
	Email     string
	CreatedAt time.Time
}

// Serialize converts a user into its session identity.
func Serialize(u *user.User) Identity {
	return Identity{
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// User reconstructs the user reference from the serialized identity.
// It must not touch the credential store.
func (i Identity) User() *user.User {
	return &user.User{
		ID:        i.UserID,
		Email:     i.Email,
		CreatedAt: i.CreatedAt,
	}
}

// Session represents a server-side session row keyed by an opaque ID carried
// in the transport cookie.
type Session struct {
	ID       id.SessionID
	Identity Identity

	// Device display metadata for session management ("Chrome on macOS").
	DeviceDisplayName string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
