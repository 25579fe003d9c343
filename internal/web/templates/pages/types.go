package pages

import (
	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/web/templates/layout"
)

// createdAtLayout formats profile timestamps the way pt-BR users read them
const createdAtLayout = "02/01/2006 15:04"

// AlertData is the title and message of an alert box
type AlertData struct {
	Title   string
	Message string
	IsError bool
}

// RegisterData holds data for the registration page.
// Passwords are never echoed back.
type RegisterData struct {
	layout.PageData
	Email       string
	DisplayName string
	Alert       *AlertData
	SubmitLabel string
}

func (d RegisterData) submitLabel() string {
	if d.SubmitLabel == "" {
		return "Cadastrar"
	}
	return d.SubmitLabel
}

// LoginData holds data for the login page
type LoginData struct {
	layout.PageData
	Email string
	Next  string
	Alert *AlertData
}

// ProfileData holds data for the profile page
type ProfileData struct {
	layout.PageData
	Profile *model.UserProfile
	Alert   *AlertData
}
