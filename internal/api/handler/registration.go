package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/cadastro/internal/api/apierr"
	"github.com/mcoot/cadastro/internal/api/request"
	"github.com/mcoot/cadastro/internal/api/response"
	"github.com/mcoot/cadastro/internal/services/registration"
)

// RegistrationHandler handles registration submissions
type RegistrationHandler struct {
	registration *registration.Service
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService *registration.Service) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registrationService,
	}
}

// Create handles POST /api/v1/registrations
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	result, alert, err := h.registration.Register(r.Context(), registration.Form{
		Email:           req.Email,
		DisplayName:     req.DisplayName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		apierr.WriteError(w, apierr.NewRegistrationError(err, alert.Message))
		return
	}

	response.Created(w, response.RegistrationResponse{
		Alert:   response.AlertFromModel(alert),
		Profile: response.ProfileFromModel(result.Profile),
	})
}
