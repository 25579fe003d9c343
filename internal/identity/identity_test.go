package identity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsErrorRecognizesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("create account: %w", NewError(CodeEmailAlreadyInUse, "taken"))

	ie, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeEmailAlreadyInUse, ie.Code)
	assert.Equal(t, "taken", ie.Message)
}

func TestAsErrorRejectsOtherErrors(t *testing.T) {
	_, ok := AsError(errors.New("connection refused"))
	assert.False(t, ok)

	_, ok = AsError(nil)
	assert.False(t, ok)
}

func TestHasCode(t *testing.T) {
	err := NewError(CodeWeakPassword, "too short")

	assert.True(t, HasCode(err, CodeWeakPassword))
	assert.False(t, HasCode(err, CodeInvalidEmail))
	assert.False(t, HasCode(errors.New("boom"), CodeWeakPassword))
}

func TestErrorString(t *testing.T) {
	err := NewError(CodeInvalidEmail, "The email address is badly formatted.")
	assert.Equal(t, "The email address is badly formatted. (auth/invalid-email)", err.Error())
}
