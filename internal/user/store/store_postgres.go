package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/user"
	id "tickerdesk/pkg/domain"
)

// PostgresStore persists users in PostgreSQL. Email uniqueness is enforced by
// the unique index in the schema, never by application-level check-then-insert.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	insertUserSQL = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`

	insertUserIfNotExistsSQL = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING`

	selectUserSQL = `
		SELECT id, email, password_hash, created_at FROM users`
)

// Create inserts a new user row. A unique-index violation on email is
// reported as sentinel.ErrAlreadyExists.
func (s *PostgresStore) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}

	_, err := s.db.ExecContext(ctx, insertUserSQL,
		uuid.UUID(u.ID), u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, selectUserSQL+` WHERE id = $1`, uuid.UUID(userID))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, selectUserSQL+` WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindOrCreateByEmail atomically finds a user by email or creates it if not
// found. The guarded insert plus re-select in one transaction closes the race
// between two concurrent OAuth logins for the same new email.
func (s *PostgresStore) FindOrCreateByEmail(ctx context.Context, email string, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin user upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op
	}()

	_, err = tx.ExecContext(ctx, insertUserIfNotExistsSQL,
		uuid.UUID(u.ID), email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	row := tx.QueryRowContext(ctx, selectUserSQL+` WHERE email = $1`, email)
	found, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user after upsert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user upsert: %w", err)
	}
	return found, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		userID       uuid.UUID
		email        string
		passwordHash string
		createdAt    time.Time
	)
	if err := row.Scan(&userID, &email, &passwordHash, &createdAt); err != nil {
		return nil, err
	}
	return &user.User{
		ID:           id.UserID(userID),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
