// Package identity defines the contract the application consumes from an
// identity service, and the coded error domain those services report in.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/cadastro/internal/model"
)

// MinPasswordLength is the shortest password identity backends accept
const MinPasswordLength = 6

// Error codes reported by identity backends
const (
	CodeEmailAlreadyInUse   = "auth/email-already-in-use"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeWeakPassword        = "auth/weak-password"
	CodeMissingPassword     = "auth/missing-password"
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeNetworkRequest      = "auth/network-request-failed"
	CodeInternalError       = "auth/internal-error"
)

// Error is a coded failure raised by an identity backend
type Error struct {
	Code    string
	Message string
}

// Error implements error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// NewError creates a coded identity error
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// AsError reports whether err belongs to the identity error domain
func AsError(err error) (*Error, bool) {
	var ie *Error
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// HasCode reports whether err is an identity error with the given code
func HasCode(err error, code string) bool {
	ie, ok := AsError(err)
	return ok && ie.Code == code
}

// AccountCreator creates accounts from email/password credentials
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password string) (*model.Account, error)
}

// ProfileUpdater sets the display name on an existing account
type ProfileUpdater interface {
	UpdateDisplayName(ctx context.Context, account *model.Account, displayName string) error
}

// AccountDeleter removes an account
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, account *model.Account) error
}

// Authenticator verifies email/password credentials
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*model.Account, error)
}

// Provider is a complete identity backend
type Provider interface {
	AccountCreator
	ProfileUpdater
	AccountDeleter
	Authenticator
}
