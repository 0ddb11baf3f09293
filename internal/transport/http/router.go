package httptransport

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tickerdesk/internal/platform/middleware"
	"tickerdesk/internal/session"
)

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.sessions.Attach)

	// Public endpoints
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.handleRegisterPage)
	r.Post("/register", h.handleRegister)
	r.Get("/auth/google", h.handleGoogleStart)
	r.Get("/auth/google/callback", h.handleGoogleCallback)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(requireAuth)
		r.Get("/", h.handleIndex)
		r.Post("/ticker", h.handleTicker)
		r.Post("/logout", h.handleLogout)
	})

	return r
}

// requireAuth redirects unauthenticated requests to the login page. The
// session middleware has already resolved the identity, so this is a pure
// context check.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.IsAuthenticated(r.Context()) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
