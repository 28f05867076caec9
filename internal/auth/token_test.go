package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenRoundTrip проверяет выпуск и проверку JWT токена
func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, err := manager.Generate(42, "ivan@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ivan@example.com", claims.Email)
}

// TestTokenValidation проверяет отказ по подписи и сроку действия
func TestTokenValidation(t *testing.T) {
	t.Run("чужой секрет", func(t *testing.T) {
		issuer := NewTokenManager("secret-a", time.Hour)
		verifier := NewTokenManager("secret-b", time.Hour)

		token, err := issuer.Generate(42, "ivan@example.com")
		require.NoError(t, err)

		_, err = verifier.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("просроченный токен", func(t *testing.T) {
		manager := NewTokenManager("test-secret", -time.Minute)

		token, err := manager.Generate(42, "ivan@example.com")
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("мусор вместо токена", func(t *testing.T) {
		manager := NewTokenManager("test-secret", time.Hour)

		_, err := manager.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
