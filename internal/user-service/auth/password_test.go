package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Abcdef1!"))
	assert.NoError(t, ValidatePassword("S3nha-bem-Forte"))

	assert.ErrorIs(t, ValidatePassword("Ab1!"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("abcdef1!"), ErrPasswordNoUpper)
	assert.ErrorIs(t, ValidatePassword("ABCDEF1!"), ErrPasswordNoLower)
	assert.ErrorIs(t, ValidatePassword("Abcdefg!"), ErrPasswordNoDigit)
	assert.ErrorIs(t, ValidatePassword("Abcdefg1"), ErrPasswordNoSpecial)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Abcdef1!")
	require.NoError(t, err)
	require.NotEqual(t, "Abcdef1!", hash)

	assert.True(t, CheckPassword(hash, "Abcdef1!"))
	assert.False(t, CheckPassword(hash, "Abcdef1?"))
	assert.False(t, CheckPassword("nao-e-um-hash", "Abcdef1!"))
}
