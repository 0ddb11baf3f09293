package auth

import (
	"context"
	"errors"
	"fmt"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/user"
	dErrors "tickerdesk/pkg/domain-errors"
)

// LocalStrategy validates an email/password pair against the credential store.
type LocalStrategy struct {
	users  UserStore
	hasher Hasher
	opts   options
}

// NewLocalStrategy constructs the local password strategy.
func NewLocalStrategy(users UserStore, hasher Hasher, opts ...Option) *LocalStrategy {
	return &LocalStrategy{
		users:  users,
		hasher: hasher,
		opts:   newOptions(opts),
	}
}

func (s *LocalStrategy) Name() string { return "local" }

// Authenticate looks the user up by exact email match and verifies the
// password against the stored bcrypt hash. The lookup has no side effects.
func (s *LocalStrategy) Authenticate(ctx context.Context, creds Credentials) (*user.User, error) {
	ctx, span := s.opts.tracer.Start(ctx, "auth.local.authenticate")
	defer span.End()

	if creds.Email == "" || creds.Password == "" {
		s.opts.authFailure(ctx, s.Name(), "missing_credentials", false, nil)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	u, err := s.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.opts.authFailure(ctx, s.Name(), "user_not_found", false, nil)
		} else {
			s.opts.authFailure(ctx, s.Name(), "store_error", true, err)
		}
		return nil, translateStoreError(err)
	}

	// Accounts provisioned via OAuth carry a non-authenticatable sentinel in
	// place of a hash. Reject before any comparison.
	if u.OAuthOnly() {
		s.opts.authFailure(ctx, s.Name(), "oauth_only_account", false, nil)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	if err := s.hasher.Verify(creds.Password, u.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			// Mismatch: a negative result, not an error.
			s.opts.authFailure(ctx, s.Name(), "password_mismatch", false, nil)
			return nil, err
		}
		// Malformed hash or other bcrypt failure.
		s.opts.authFailure(ctx, s.Name(), "verification_error", true, err)
		return nil, fmt.Errorf("verify password: %w", err)
	}

	s.opts.authSuccess(ctx, s.Name(), u.ID.String())
	return u, nil
}
