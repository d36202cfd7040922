package middleware

import (
	"errors"
	"net/http"
	"strings"

	"microblog/internal/modules/auth"
	"microblog/internal/pkg/response"
	"microblog/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// Auth extracts the bearer token, resolves it to a user via the session
// service (signature, expiry and revocation all checked there) and puts
// the identity on the request context.
func Auth(resolver auth.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abortUnauthorized(c, "UNAUTHORIZED", "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			abortUnauthorized(c, "UNAUTHORIZED", "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			abortUnauthorized(c, "UNAUTHORIZED", "Empty token")
			return
		}

		user, err := resolver.ResolveIdentity(c.Request.Context(), tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrExpired):
				abortUnauthorized(c, "TOKEN_EXPIRED", "Access token has expired")
			case errors.Is(err, auth.ErrTokenRevoked):
				abortUnauthorized(c, "TOKEN_REVOKED", "Access token has been revoked")
			case errors.Is(err, auth.ErrUnavailable):
				response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Authentication temporarily unavailable")
				c.Abort()
			default:
				abortUnauthorized(c, "INVALID_TOKEN", "Invalid token")
			}
			return
		}

		c.Set("user_id", user.ID)
		c.Set("role", string(user.Role))
		c.Set("user", user)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	response.Error(c, http.StatusUnauthorized, code, message)
	c.Abort()
}
