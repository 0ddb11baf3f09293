// Package user holds the credential-store domain model.
package user

import (
	"time"

	id "tickerdesk/pkg/domain"
	"tickerdesk/pkg/secrets"
)

// User represents an account in the credential store.
// PasswordHash is a bcrypt hash for locally registered accounts, or the
// non-authenticatable sentinel for accounts provisioned via OAuth.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// New constructs a user with a fresh ID.
func New(email, passwordHash string, now time.Time) *User {
	return &User{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}

// OAuthOnly reports whether the account has no usable local password.
func (u *User) OAuthOnly() bool {
	return secrets.IsSentinel(u.PasswordHash)
}
