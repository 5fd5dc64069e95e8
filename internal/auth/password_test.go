package auth_test

import (
	"testing"

	"github.com/newsroom-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, "Passw0rd!", hash)
	assert.True(t, auth.CheckPassword(hash, "Passw0rd!"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
	assert.False(t, auth.CheckPassword("not-a-hash", "Passw0rd!"))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"Passw0rd!", nil},
		{"Sh0rt!", auth.ErrPasswordTooShort},
		{"passw0rd!", auth.ErrPasswordNoUpper},
		{"PASSW0RD!", auth.ErrPasswordNoLower},
		{"Password!", auth.ErrPasswordNoDigit},
		{"Passw0rdd", auth.ErrPasswordNoSpecial},
		{"Passw0rd?", auth.ErrPasswordNoSpecial},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.ValidatePasswordStrength(tt.password))
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	for i := 0; i < 20; i++ {
		pw, err := auth.GeneratePassword(12)
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		assert.NoError(t, auth.ValidatePasswordStrength(pw))
	}

	pw, err := auth.GeneratePassword(4)
	require.NoError(t, err)
	assert.Len(t, pw, auth.MinPasswordLength)
}
