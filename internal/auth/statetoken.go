package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "tickerdesk/pkg/domain-errors"
)

// stateTTL bounds how long an OAuth redirect may take before the callback is
// rejected.
const stateTTL = 10 * time.Minute

// StateSigner issues and verifies the signed state parameter carried through
// the OAuth redirect, so the callback can reject forged or replayed-late
// requests without server-side state.
type StateSigner struct {
	key []byte
	now func() time.Time
}

// NewStateSigner constructs a StateSigner with the given HMAC key.
func NewStateSigner(key string) *StateSigner {
	return &StateSigner{key: []byte(key), now: time.Now}
}

// Sign returns a fresh short-lived state token.
func (s *StateSigner) Sign() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign state token")
	}
	return token, nil
}

// Verify checks the signature and expiry of a state token from the callback.
func (s *StateSigner) Verify(state string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.Parse(state, func(t *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid state token")
	}
	return nil
}
