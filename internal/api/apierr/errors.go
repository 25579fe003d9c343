package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/services/auth"
	"github.com/mcoot/cadastro/internal/services/registration"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodePasswordMismatch    = "PASSWORD_MISMATCH"
	CodeDisplayNameRequired = "DISPLAY_NAME_REQUIRED"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeWeakPassword        = "WEAK_PASSWORD"
	CodeMissingPassword     = "MISSING_PASSWORD"
	CodeEmailInUse          = "EMAIL_IN_USE"
	CodeIdentityError       = "IDENTITY_ERROR"
	CodeRegistrationFailed  = "REGISTRATION_FAILED"
	CodeProfileNotFound     = "PROFILE_NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "Perfil não encontrado"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewRegistrationError maps a failed registration to a response carrying the
// alert message the screen would show
func NewRegistrationError(err error, message string) error {
	status, code := registrationStatus(err)
	return &httpError{status, APIError{code, message}}
}

func registrationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, registration.ErrPasswordMismatch):
		return http.StatusBadRequest, CodePasswordMismatch
	case errors.Is(err, registration.ErrDisplayNameRequired):
		return http.StatusBadRequest, CodeDisplayNameRequired
	}

	ie, ok := identity.AsError(err)
	if !ok {
		return http.StatusInternalServerError, CodeRegistrationFailed
	}
	switch ie.Code {
	case identity.CodeEmailAlreadyInUse:
		return http.StatusConflict, CodeEmailInUse
	case identity.CodeInvalidEmail:
		return http.StatusBadRequest, CodeInvalidEmail
	case identity.CodeWeakPassword:
		return http.StatusBadRequest, CodeWeakPassword
	case identity.CodeMissingPassword:
		return http.StatusBadRequest, CodeMissingPassword
	default:
		return http.StatusBadGateway, CodeIdentityError
	}
}

// NewLoginError maps a failed sign-in
func NewLoginError(err error) error {
	message := auth.MessageFor(err)

	ie, ok := identity.AsError(err)
	if !ok {
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, message}}
	}
	switch ie.Code {
	case identity.CodeInvalidCredential, identity.CodeWrongPassword, identity.CodeUserNotFound:
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, message}}
	case identity.CodeInvalidEmail, identity.CodeMissingPassword:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
	default:
		return &httpError{http.StatusBadGateway, APIError{CodeIdentityError, message}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// PanicHandler answers a recovered panic with INTERNAL_ERROR
func PanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	WriteError(w, NewInternalError())
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
