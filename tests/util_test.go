package testutil

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/edupulse/core/user"
)

func TestNewStack_translatorHasValidationMessages(t *testing.T) {
	s := NewStack()

	err := s.Validate.Struct(user.NewUser{Email: "ada@edupulse.test"})
	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "Validate.Struct() error = %v", err)

	msgs := verrs.Translate(s.Translator)
	assert.Equal(t, "this field is required", msgs["NewUser.name"])
	assert.Equal(t, "this field is required", msgs["NewUser.password"])

	err = s.Validate.Struct(user.NewUser{Name: "Ada", Email: "ada@edupulse.test", Password: "short", PasswordConfirm: "short"})
	verrs, ok = err.(validator.ValidationErrors)
	require.True(t, ok, "Validate.Struct() error = %v", err)

	wantPwd := user.PasswordPolicyText(user.PasswordPolicyViolation("short", "Ada", "ada@edupulse.test"))
	assert.Equal(t, wantPwd, verrs.Translate(s.Translator)["NewUser.password"])
}
