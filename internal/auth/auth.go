// internal/auth/auth.go
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const parentSubject = "parent"

var (
	// ErrEmptyPassword means nothing was typed; callers show neither records nor an error
	ErrEmptyPassword = errors.New("password is empty")
	ErrWrongPassword = errors.New("incorrect password")
	ErrInvalidToken  = errors.New("invalid session token")
)

// PasswordGate checks the single shared parental secret. Only its bcrypt
// hash is kept in memory.
type PasswordGate struct {
	hash []byte
}

// NewPasswordGate hashes the shared secret
func NewPasswordGate(secret string) (*PasswordGate, error) {
	if secret == "" {
		return nil, fmt.Errorf("shared secret is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash shared secret: %w", err)
	}
	return &PasswordGate{hash: hash}, nil
}

// Check returns nil on a match, ErrEmptyPassword or ErrWrongPassword otherwise
func (g *PasswordGate) Check(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// TokenConfig holds the configuration for session tokens
type TokenConfig struct {
	Secret     []byte
	Expiration time.Duration
}

// SessionClaims identify an unlocked parental session
type SessionClaims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a parental session token
func GenerateToken(config *TokenConfig) (string, error) {
	if len(config.Secret) == 0 {
		return "", fmt.Errorf("secret key is required")
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   parentSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ParseToken validates signature, expiry and subject
func ParseToken(tokenString string, config *TokenConfig) (*SessionClaims, error) {
	if len(config.Secret) == 0 {
		return nil, fmt.Errorf("secret key is required")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return config.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject != parentSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateSecureKey generates a random signing key
func GenerateSecureKey(length int) ([]byte, error) {
	if length <= 0 {
		length = 32
	}

	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
