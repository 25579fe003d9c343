package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/services/auth"
	"github.com/mcoot/cadastro/internal/web/middleware"
	"github.com/mcoot/cadastro/internal/web/templates/pages"
)

// ProfileHandler shows the signed-in user's profile document
type ProfileHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(authService *auth.Service, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		authService: authService,
		logger:      logger,
	}
}

// View renders the profile page. Requires the Auth middleware.
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	data := pages.ProfileData{
		PageData: pageData(r, "Seu perfil"),
	}

	profile, err := h.authService.GetProfile(r.Context(), session)
	switch {
	case err == nil:
		data.Profile = profile
	case errors.Is(err, model.ErrProfileNotFound):
		data.Alert = &pages.AlertData{Title: "Erro", Message: "Perfil não encontrado", IsError: true}
	default:
		h.logger.Error("failed to load profile",
			slog.String("uid", string(session.Account.UID)),
			slog.String("error", err.Error()),
		)
		data.Alert = &pages.AlertData{Title: "Erro", Message: "Erro ao carregar o perfil", IsError: true}
	}

	render(w, r, pages.Profile(data))
}
