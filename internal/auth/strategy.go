// Package auth implements the authentication strategies (local password,
// Google OAuth) and the registration flow over the credential store.
package auth

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"tickerdesk/internal/platform/metrics"
	"tickerdesk/internal/user"
)

// Credentials carries the inputs for one authentication attempt. Local logins
// fill Email and Password; the OAuth callback fills Code.
type Credentials struct {
	Email    string
	Password string
	Code     string
}

// Strategy is a pluggable authentication method. Authenticate returns the
// authenticated user, or a domain error: CodeUnauthorized for a credential
// mismatch (a negative result, not an infrastructure failure), CodeNotFound
// for an unknown identifier, and CodeInternal/CodeUnavailable/CodeTimeout for
// hard failures. Callers collapse the first two into one generic "login
// failed" outcome so nothing leaks about which part was wrong.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, creds Credentials) (*user.User, error)
}

// UserStore is what the strategies need from the credential store.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindOrCreateByEmail(ctx context.Context, email string, u *user.User) (*user.User, error)
}

// Hasher hashes and verifies local account passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// Option configures a strategy or the registrar.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer("tickerdesk/auth"),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger sets the logger for auth events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
