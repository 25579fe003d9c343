package toolkit

import (
	"strings"

	"github.com/mcoot/cadastro/internal/identity"
)

// serviceCodes maps the REST error message keys to identity error codes
var serviceCodes = map[string]string{
	"EMAIL_EXISTS":                identity.CodeEmailAlreadyInUse,
	"INVALID_EMAIL":               identity.CodeInvalidEmail,
	"WEAK_PASSWORD":               identity.CodeWeakPassword,
	"MISSING_PASSWORD":            identity.CodeMissingPassword,
	"EMAIL_NOT_FOUND":             identity.CodeUserNotFound,
	"USER_NOT_FOUND":              identity.CodeUserNotFound,
	"INVALID_PASSWORD":            identity.CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   identity.CodeInvalidCredential,
	"INVALID_ID_TOKEN":            identity.CodeInvalidCredential,
	"OPERATION_NOT_ALLOWED":       identity.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     identity.CodeOperationNotAllowed,
	"TOO_MANY_ATTEMPTS_TRY_LATER": identity.CodeTooManyRequests,
}

// errorBody is the REST error envelope
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toIdentityError converts a REST error message into a coded identity error.
// Messages look like "EMAIL_EXISTS" or "WEAK_PASSWORD : Password should be ...".
func toIdentityError(message string) *identity.Error {
	key := message
	if i := strings.Index(message, " : "); i >= 0 {
		key = message[:i]
	}
	key = strings.TrimSpace(key)

	if code, ok := serviceCodes[key]; ok {
		return identity.NewError(code, message)
	}
	return identity.NewError(identity.CodeInternalError, message)
}
