package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("1234567"))
	assert.NoError(t, ValidatePassword("12345678"))
	assert.NoError(t, ValidatePassword("a perfectly fine passphrase"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 129)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("jane@example.com"))
	assert.NoError(t, ValidateEmail("jane.doe+listings@sub.example.co"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("jane@"))
	assert.Error(t, ValidateEmail("@example.com"))
	assert.Error(t, ValidateEmail("jane@"+strings.Repeat("a", 250)+".com"))
}

func TestValidateName(t *testing.T) {
	assert.Error(t, ValidateName(""))
	assert.NoError(t, ValidateName("Jane Doe"))
	assert.Error(t, ValidateName(strings.Repeat("n", 231)))
}
