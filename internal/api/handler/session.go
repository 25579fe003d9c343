package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/cadastro/internal/api/apierr"
	"github.com/mcoot/cadastro/internal/api/middleware"
	"github.com/mcoot/cadastro/internal/api/request"
	"github.com/mcoot/cadastro/internal/api/response"
	"github.com/mcoot/cadastro/internal/services/auth"
)

// SessionHandler handles login, logout and the signed-in user's profile
type SessionHandler struct {
	authService *auth.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *auth.Service) *SessionHandler {
	return &SessionHandler{
		authService: authService,
	}
}

// Login handles POST /api/v1/sessions
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError(auth.MsgMissingFields))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apierr.WriteError(w, apierr.NewLoginError(err))
		return
	}

	response.Created(w, response.SessionResponseFromModel(session))
}

// Logout handles DELETE /api/v1/sessions
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	h.authService.InvalidateSession(session.Token)
	response.NoContent(w)
}

// GetMe handles GET /api/v1/users/me
func (h *SessionHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	profile, err := h.authService.GetProfile(r.Context(), session)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.ProfileFromModel(profile))
}
