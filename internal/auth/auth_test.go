package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordGate(t *testing.T) {
	gate, err := NewPasswordGate("magia2025")
	require.NoError(t, err)

	assert.NoError(t, gate.Check("magia2025"))
	assert.ErrorIs(t, gate.Check("wrong"), ErrWrongPassword)
	assert.ErrorIs(t, gate.Check(""), ErrEmptyPassword)
	assert.ErrorIs(t, gate.Check("MAGIA2025"), ErrWrongPassword, "comparison is case sensitive")
}

func TestNewPasswordGate_RequiresSecret(t *testing.T) {
	_, err := NewPasswordGate("")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := &TokenConfig{Secret: []byte("test-secret"), Expiration: time.Hour}

	token, err := GenerateToken(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, "parent", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_Rejects(t *testing.T) {
	cfg := &TokenConfig{Secret: []byte("test-secret"), Expiration: time.Hour}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(&TokenConfig{Secret: []byte("other"), Expiration: time.Hour})
		require.NoError(t, err)
		_, err = ParseToken(token, cfg)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(&TokenConfig{Secret: cfg.Secret, Expiration: -time.Minute})
		require.NoError(t, err)
		_, err = ParseToken(token, cfg)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseToken("not.a.token", cfg)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other subject", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "child",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
		require.NoError(t, err)
		_, err = ParseToken(token, cfg)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no secret", func(t *testing.T) {
		_, err := ParseToken("x", &TokenConfig{})
		assert.Error(t, err)
	})
}

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(0)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	other, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
