package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/cadastro/internal/services/auth"
	"github.com/mcoot/cadastro/internal/web/middleware"
	"github.com/mcoot/cadastro/internal/web/templates/pages"
)

// AuthHandler handles the login screen and logout
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r.Context()) != nil {
		// Already logged in
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	data := pages.LoginData{
		PageData: pageData(r, "Entrar"),
		Next:     r.URL.Query().Get("next"),
	}
	render(w, r, pages.Login(data))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, auth.MsgLoginFailed, "", "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if email == "" || password == "" {
		h.renderLoginError(w, r, auth.MsgMissingFields, email, next)
		return
	}

	session, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		h.logger.Debug("login rejected", slog.String("error", err.Error()))
		h.renderLoginError(w, r, auth.MessageFor(err), email, next)
		return
	}

	h.setSessionCookie(w, session)
	middleware.SetFlash(w, "success", "Bem-vindo, "+session.Account.DisplayName+"!")

	// Redirect to original destination or the profile
	if next != "" && strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		http.Redirect(w, r, next, http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.authService.InvalidateSession(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetFlash(w, "info", "Você saiu da sua conta")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, message, email, next string) {
	data := pages.LoginData{
		PageData: pageData(r, "Entrar"),
		Email:    email,
		Next:     next,
		Alert:    &pages.AlertData{Title: "Erro", Message: message, IsError: true},
	}
	render(w, r, pages.Login(data))
}
