package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mentora-inc/mentora/internal/shared/logger"
	"github.com/mentora-inc/mentora/internal/shared/utils"
)

type AdminTokenMiddleware struct {
	token  string
	logger logger.Interface
}

func NewAdminTokenMiddleware(token string, logger logger.Interface) *AdminTokenMiddleware {
	return &AdminTokenMiddleware{
		token:  token,
		logger: logger,
	}
}

// RequireAdminToken guards the operator API with a static bearer token.
func (m *AdminTokenMiddleware) RequireAdminToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.token == "" {
			m.logger.Errorw("admin token is not configured, rejecting request", "ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "admin API is not configured")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(m.token)) != 1 {
			m.logger.Warnw("admin token rejected", "ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid admin token")
			c.Abort()
			return
		}

		c.Next()
	}
}
