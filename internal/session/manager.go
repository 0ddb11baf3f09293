package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tickerdesk/internal/platform/metrics"
	"tickerdesk/internal/sentinel"
	"tickerdesk/internal/user"
	id "tickerdesk/pkg/domain"
)

// Store is what the Manager needs from a session store implementation.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// Config holds session manager settings.
type Config struct {
	CookieName    string
	TTL           time.Duration
	SecureCookies bool
}

// Manager owns session lifetime: it establishes a session after a successful
// authentication, attaches the deserialized identity to each request, and
// destroys the session on logout. Handlers never touch the cookie directly.
type Manager struct {
	store   Store
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mx }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager constructs a session manager over the given store.
func NewManager(store Store, cfg Config, opts ...Option) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "td_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	m := &Manager{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Establish creates a server-side session for the user and sets the transport
// cookie. Called after any successful authentication (login, registration,
// OAuth callback).
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, u *user.User) (*Session, error) {
	now := m.now()
	sess := &Session{
		ID:                id.NewSessionID(),
		Identity:          Serialize(u),
		DeviceDisplayName: DeviceDisplayName(r.UserAgent()),
		CreatedAt:         now,
		ExpiresAt:         now.Add(m.cfg.TTL),
	}

	if err := m.store.Create(r.Context(), sess); err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    sess.ID.String(),
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	m.metrics.SessionOpened()
	if m.logger != nil {
		m.logger.InfoContext(r.Context(), "session established",
			"session_id", sess.ID.String(),
			"user_id", u.ID.String(),
			"device", sess.DeviceDisplayName,
		)
	}
	return sess, nil
}

// Destroy invalidates the identity binding for the request's session and
// expires the cookie. A store failure is surfaced to the caller so logout
// never silently leaves a live session behind; a missing session is treated
// as already logged out.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err == nil && cookie.Value != "" {
		if sessionID, parseErr := id.ParseSessionID(cookie.Value); parseErr == nil {
			if delErr := m.store.Delete(r.Context(), sessionID); delErr != nil && !errors.Is(delErr, sentinel.ErrNotFound) {
				return fmt.Errorf("destroy session: %w", delErr)
			}
			m.metrics.SessionClosed()
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Attach is middleware that resolves the request's session once and attaches
// the deserialized identity to the context. Handlers read the identity via
// FromContext/IsAuthenticated with no further I/O.
func (m *Manager) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := m.resolve(r); ok {
			r = r.WithContext(withUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// resolve loads and validates the session referenced by the request cookie.
func (m *Manager) resolve(r *http.Request) (*user.User, bool) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	sessionID, err := id.ParseSessionID(cookie.Value)
	if err != nil {
		return nil, false
	}

	sess, err := m.store.FindByID(r.Context(), sessionID)
	if err != nil {
		if m.logger != nil && !errors.Is(err, sentinel.ErrNotFound) {
			m.logger.WarnContext(r.Context(), "session lookup failed", "error", err)
		}
		return nil, false
	}

	if sess.IsExpired(m.now()) {
		return nil, false
	}
	return sess.Identity.User(), true
}

type userContextKey struct{}

func withUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// FromContext returns the authenticated user attached by Attach, if any.
func FromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*user.User)
	return u, ok
}

// IsAuthenticated reports whether the request carries a valid, non-expired
// session with a deserializable identity. Context-only, no I/O.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}
