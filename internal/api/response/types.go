package response

import (
	"time"

	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/services/auth"
	"github.com/mcoot/cadastro/internal/services/registration"
)

// Alert is the title and message shown for an outcome
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// AlertFromModel converts a registration.Alert
func AlertFromModel(a registration.Alert) Alert {
	return Alert{
		Title:   a.Title,
		Message: a.Message,
	}
}

// Profile represents a users/{uid} document in API responses
type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileFromModel converts a model.UserProfile
func ProfileFromModel(p *model.UserProfile) Profile {
	return Profile{
		UID:         string(p.UID),
		Email:       p.Email,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}
}

// Account represents an identity-service account
type Account struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// AccountFromModel converts a model.Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		UID:         string(a.UID),
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}

// RegistrationResponse is the response for a successful registration
type RegistrationResponse struct {
	Alert   Alert   `json:"alert"`
	Profile Profile `json:"profile"`
}

// SessionResponse is the response for authentication endpoints
type SessionResponse struct {
	Account      Account   `json:"account"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionResponseFromModel creates a SessionResponse from a session
func SessionResponseFromModel(s *auth.Session) SessionResponse {
	return SessionResponse{
		Account:      AccountFromModel(&s.Account),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}
