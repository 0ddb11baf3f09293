package httptransport

import (
	"embed"
	"html/template"
	"net/http"

	"tickerdesk/internal/quotes"
	"tickerdesk/internal/user"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// pageData is the payload every template receives.
type pageData struct {
	User    *user.User
	Series  *quotes.IntradaySeries
	Message string
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template failed", "template", name, "error", err)
	}
}
