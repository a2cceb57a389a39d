// internal/api/auth_middleware.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/MagicStudio/internal/auth"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// NewTokenConfig builds the session signing config. Without a configured
// secret a random key is generated, so sessions end with the process.
func NewTokenConfig(secret string, ttl time.Duration) (*auth.TokenConfig, error) {
	key := []byte(secret)
	if len(key) == 0 {
		generated, err := auth.GenerateSecureKey(32)
		if err != nil {
			return nil, err
		}
		key = generated
		utils.GetLogger().Warn("SESSION_SECRET not set; parental sessions will not survive a restart", nil)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &auth.TokenConfig{Secret: key, Expiration: ttl}, nil
}

// ParentSessionMiddleware requires a valid "Bearer <token>" parental session
func ParentSessionMiddleware(tokens *auth.TokenConfig) gin.HandlerFunc {
	rh := NewResponseHelper()
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			rh.Error(c, http.StatusUnauthorized, ErrorSessionInvalid, "A parental session is required")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(strings.TrimSpace(parts[1]), tokens)
		if err != nil {
			rh.Error(c, http.StatusUnauthorized, ErrorSessionInvalid, "The parental session is invalid or expired")
			c.Abort()
			return
		}

		c.Set("session_id", claims.ID)
		c.Next()
	}
}
