package auth

import (
	"context"
	"errors"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/user"
	dErrors "tickerdesk/pkg/domain-errors"
)

// Registrar creates local accounts: hash the password, insert the row, and
// let the caller establish a session on success. If hashing fails no row is
// inserted; if insertion fails the caller sees the error before any session
// exists.
type Registrar struct {
	users  UserStore
	hasher Hasher
	opts   options
}

// NewRegistrar constructs the registration flow.
func NewRegistrar(users UserStore, hasher Hasher, opts ...Option) *Registrar {
	return &Registrar{
		users:  users,
		hasher: hasher,
		opts:   newOptions(opts),
	}
}

// Register creates a new local user. A duplicate email returns CodeConflict;
// uniqueness is enforced by the store, never by check-then-insert, so two
// concurrent registrations for the same email can never both succeed.
func (r *Registrar) Register(ctx context.Context, email, password string) (*user.User, error) {
	ctx, span := r.opts.tracer.Start(ctx, "auth.register")
	defer span.End()

	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}

	hash, err := r.hasher.Hash(password)
	if err != nil {
		r.opts.logger.WarnContext(ctx, "registration hash failed", "error", err)
		return nil, err
	}

	u := user.New(email, hash, r.opts.now())
	if err := r.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			r.opts.authFailure(ctx, "register", "already_registered", false, nil)
		} else {
			r.opts.authFailure(ctx, "register", "store_error", true, err)
		}
		return nil, translateStoreError(err)
	}

	r.opts.metrics.IncrementUsersCreated()
	r.opts.logger.InfoContext(ctx, "user registered", "user_id", u.ID.String())
	return u, nil
}
