package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/cadastro/internal/services/registration"
	"github.com/mcoot/cadastro/internal/web/templates/pages"
)

// RegisterHandler serves the "Crie sua conta" screen
type RegisterHandler struct {
	registration *registration.Service
	logger       *slog.Logger
}

// NewRegisterHandler creates a new RegisterHandler
func NewRegisterHandler(registrationService *registration.Service, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		registration: registrationService,
		logger:       logger,
	}
}

// Page renders the empty registration form
func (h *RegisterHandler) Page(w http.ResponseWriter, r *http.Request) {
	c := h.registration.NewController()
	render(w, r, pages.Register(h.viewData(r, c)))
}

// Submit handles the registration form submission.
// Every outcome re-renders the screen with an alert; success clears the fields.
func (h *RegisterHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c := h.registration.NewController()
		data := h.viewData(r, c)
		data.Alert = &pages.AlertData{Title: registration.TitleError, Message: registration.MsgFailed, IsError: true}
		render(w, r, pages.Register(data))
		return
	}

	c := h.registration.NewController()
	c.SetEmail(r.FormValue("email"))
	c.SetDisplayName(r.FormValue("display_name"))
	c.SetPassword(r.FormValue("password"))
	c.SetConfirmPassword(r.FormValue("confirm_password"))

	if _, err := c.Submit(r.Context()); err != nil {
		h.logger.Debug("registration rejected", slog.String("error", err.Error()))
	}

	render(w, r, pages.Register(h.viewData(r, c)))
}

func (h *RegisterHandler) viewData(r *http.Request, c *registration.Controller) pages.RegisterData {
	form := c.Form()
	data := pages.RegisterData{
		PageData:    pageData(r, "Crie sua conta"),
		Email:       form.Email,
		DisplayName: form.DisplayName,
		SubmitLabel: c.SubmitLabel(),
	}
	if alert := c.Alert(); alert != nil {
		data.Alert = &pages.AlertData{
			Title:   alert.Title,
			Message: alert.Message,
			IsError: alert.IsError(),
		}
	}
	return data
}
