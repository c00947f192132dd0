package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/backend"
	"resume-builder/internal/shared/server/respond"
)

const hasTokenKey = "hasToken"

// BearerToken forwards the caller's bearer token to backend calls made while
// serving the request. The token is not verified here; the backend does
// that. A malformed Authorization header is rejected.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Set(hasTokenKey, false)
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		c.Request = c.Request.WithContext(backend.WithToken(c.Request.Context(), token))
		c.Set(hasTokenKey, true)
		c.Next()
	}
}
