package model

import "time"

// AccountUID is the opaque identifier an identity service assigns to an account
type AccountUID string

// Account is an account as seen through the identity service contract
type Account struct {
	UID         AccountUID
	Email       string
	DisplayName string
	CreatedAt   time.Time

	// IDToken is the short-lived credential some identity backends hand back on
	// account creation. It is never persisted.
	IDToken string `json:"-"`
}

// StoredAccount is the local identity backend's persisted form of an account
// Stored separately from the profile document (password hash never leaves the backend)
type StoredAccount struct {
	UID          AccountUID
	Email        string // normalized (trimmed, lowercase)
	DisplayName  string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ToAccount strips backend-only fields
func (a *StoredAccount) ToAccount() *Account {
	return &Account{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
	}
}
