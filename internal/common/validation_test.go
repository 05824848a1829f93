// File: internal/common/validation_test.go
package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type registerForm struct {
	Password             string `validate:"required,min=8"`
	PasswordConfirmation string `validate:"required,eqfield=Password"`
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.Nil(t, ValidateStruct(loginForm{Email: "budi@example.com", Password: "rahasia123"}))
}

func TestValidateStruct_CollectsFieldErrors(t *testing.T) {
	appErr := ValidateStruct(loginForm{Email: "not-an-email", Password: "short"})

	require.NotNil(t, appErr)
	assert.Equal(t, KindValidationFailed, appErr.Kind)

	fieldErrors, ok := appErr.Details.(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, fieldErrors["email"][0], "valid email address")
	assert.Contains(t, fieldErrors["password"][0], "at least 8 characters")
	// The message is the joined field-error form, ready for display.
	assert.Contains(t, appErr.Message, "email:")
	assert.Contains(t, appErr.Message, "password:")
}

func TestValidateStruct_EqfieldMessage(t *testing.T) {
	appErr := ValidateStruct(registerForm{Password: "rahasia123", PasswordConfirmation: "berbeda123"})

	require.NotNil(t, appErr)
	fieldErrors := appErr.Details.(map[string][]string)
	assert.Contains(t, fieldErrors["passwordconfirmation"][0], "must match the password field")
}
