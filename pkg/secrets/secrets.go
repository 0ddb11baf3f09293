// Package secrets holds password hashing and verification for local accounts.
package secrets

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "tickerdesk/pkg/domain-errors"
)

// SentinelPassword is stored in place of a hash for accounts provisioned via
// OAuth. It is not a valid bcrypt hash and Verify refuses it before any
// comparison, so OAuth-only accounts can never authenticate locally.
const SentinelPassword = "!oauth-account"

// Hasher hashes and verifies local account passwords with a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher. Costs outside bcrypt's valid range fall back
// to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash creates a bcrypt hash of the provided password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash password")
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash.
// A mismatch returns CodeUnauthorized; a malformed hash or other bcrypt
// failure returns CodeInternal so callers can tell the two apart.
func (h *Hasher) Verify(password, hash string) error {
	if IsSentinel(hash) {
		// OAuth-only account: no local password exists. Reject outright
		// without handing the sentinel to bcrypt.
		return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify password")
	}
	return nil
}

// IsSentinel reports whether a stored credential is the OAuth placeholder.
func IsSentinel(hash string) bool {
	return hash == "" || strings.HasPrefix(hash, "!")
}
