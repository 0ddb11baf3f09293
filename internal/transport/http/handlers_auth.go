package httptransport

import (
	"net/http"

	"tickerdesk/internal/auth"
	"tickerdesk/internal/platform/middleware"
	dErrors "tickerdesk/pkg/domain-errors"
)

// loginFailedMessage is deliberately generic. It never distinguishes an
// unknown email from a wrong password.
const loginFailedMessage = "Invalid email or password."

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	var msg string
	if r.URL.Query().Get("error") != "" {
		msg = loginFailedMessage
	}
	h.render(w, http.StatusOK, "login.html", pageData{Message: msg})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}

	u, err := h.local.Authenticate(r.Context(), auth.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if !auth.IsAuthFailure(err) {
			h.logger.Error("local login failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err)
		}
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}

	if _, err := h.sessions.Establish(w, r, u); err != nil {
		h.logger.Error("establish session failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	var msg string
	if r.URL.Query().Get("error") != "" {
		msg = "Registration failed. Check the email and password and try again."
	}
	h.render(w, http.StatusOK, "register.html", pageData{Message: msg})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/register?error=1", http.StatusSeeOther)
		return
	}

	u, err := h.registrar.Register(r.Context(),
		r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		// An already-registered email lands on the login page, where the
		// owner of the account can sign in.
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.Error("registration failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err)
		}
		http.Redirect(w, r, "/register?error=1", http.StatusSeeOther)
		return
	}

	if _, err := h.sessions.Establish(w, r, u); err != nil {
		h.logger.Error("establish session failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleGoogleStart(w http.ResponseWriter, r *http.Request) {
	state, err := h.state.Sign()
	if err != nil {
		h.logger.Error("sign oauth state failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusSeeOther)
}

func (h *Handler) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Verify(r.URL.Query().Get("state")); err != nil {
		h.logger.Warn("oauth state rejected",
			"request_id", middleware.GetRequestID(r.Context()))
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}

	u, err := h.google.Authenticate(r.Context(), auth.Credentials{
		Code: r.URL.Query().Get("code"),
	})
	if err != nil {
		if !auth.IsAuthFailure(err) {
			h.logger.Error("google login failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err)
		}
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}

	if _, err := h.sessions.Establish(w, r, u); err != nil {
		h.logger.Error("establish session failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		h.logger.Error("destroy session failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
