package httptransport

import (
	"net/http"
	"strings"

	"tickerdesk/internal/platform/middleware"
	"tickerdesk/internal/session"
	dErrors "tickerdesk/pkg/domain-errors"
)

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	u, _ := session.FromContext(r.Context())
	h.render(w, http.StatusOK, "index.html", pageData{
		User:    u,
		Message: "Please select a ticker symbol.",
	})
}

func (h *Handler) handleTicker(w http.ResponseWriter, r *http.Request) {
	u, _ := session.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "index.html", pageData{
			User:    u,
			Message: "Could not read the submitted form.",
		})
		return
	}
	symbol := strings.TrimSpace(r.PostFormValue("ticker"))

	series, err := h.quotes.Intraday(r.Context(), symbol)
	if err != nil {
		status, msg := quoteErrorView(symbol, err)
		if status == http.StatusInternalServerError {
			h.logger.Error("quote lookup failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err)
		}
		h.render(w, status, "index.html", pageData{User: u, Message: msg})
		return
	}

	h.render(w, http.StatusOK, "index.html", pageData{User: u, Series: series})
}

// quoteErrorView maps quote client errors to a status code and a message safe
// to show the user.
func quoteErrorView(symbol string, err error) (int, string) {
	switch {
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		return http.StatusBadRequest, "That does not look like a valid ticker symbol."
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		return http.StatusNotFound, "No data found for " + symbol + "."
	case dErrors.HasCode(err, dErrors.CodeUnavailable):
		return http.StatusServiceUnavailable, "The market data service is unavailable right now. Try again shortly."
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return http.StatusGatewayTimeout, "The market data service took too long to respond."
	default:
		return http.StatusInternalServerError, "Something went wrong looking up " + symbol + "."
	}
}
