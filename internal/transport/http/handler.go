// Package httptransport is the thin HTTP layer. It delegates to the auth
// strategies, session manager, and quote client without embedding business
// logic, so transport concerns remain isolated.
package httptransport

import (
	"context"
	"html/template"
	"log/slog"

	"tickerdesk/internal/auth"
	"tickerdesk/internal/quotes"
	"tickerdesk/internal/session"
	"tickerdesk/internal/user"
)

// QuoteService is what the ticker endpoint needs from the quotes client.
type QuoteService interface {
	Intraday(ctx context.Context, symbol string) (*quotes.IntradaySeries, error)
}

// OAuthStrategy extends Strategy with the redirect half of the handshake.
type OAuthStrategy interface {
	auth.Strategy
	AuthCodeURL(state string) string
}

// Registrar creates local accounts.
type Registrar interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
}

// Handler holds the wired dependencies for all routes.
type Handler struct {
	local     auth.Strategy
	google    OAuthStrategy
	registrar Registrar
	sessions  *session.Manager
	quotes    QuoteService
	state     *auth.StateSigner
	logger    *slog.Logger
	tmpl      *template.Template
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	local auth.Strategy,
	google OAuthStrategy,
	registrar Registrar,
	sessions *session.Manager,
	quoteSvc QuoteService,
	state *auth.StateSigner,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		local:     local,
		google:    google,
		registrar: registrar,
		sessions:  sessions,
		quotes:    quoteSvc,
		state:     state,
		logger:    logger,
		tmpl:      parseTemplates(),
	}
}
