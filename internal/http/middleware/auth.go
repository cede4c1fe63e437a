// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication against the external
// identity verifier. Every route behind Auth() runs with a resolved user id
// in the Gin context; anything else is rejected with 401 before reaching a
// handler.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trueque-market/chat-backend/internal/auth"
)

// IdentitySink receives the verified identity of each request. The router
// wires it to the user read-model upsert so contact and chat listings can
// resolve display names later. Errors are logged, not fatal: a stale name is
// preferable to failing the request.
type IdentitySink func(ctx context.Context, userID, firstName, lastName string) error

// Auth returns a Gin middleware that validates the Authorization bearer
// token, stores the resolved user id under the "userID" context key, and
// feeds the identity to sink (optional, may be nil).
//
// Responses use the standard error envelope with code "unauthorized" for a
// missing, malformed, expired, or otherwise invalid credential.
func Auth(verifier *auth.Verifier, sink IdentitySink) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if raw == "" || !strings.HasPrefix(raw, prefix) {
			unauthorized(c, "missing bearer token")
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(raw[len(prefix):]))
		if err != nil {
			msg := "invalid token"
			if err == auth.ErrExpiredToken {
				msg = "token expired"
			}
			unauthorized(c, msg)
			return
		}

		c.Set(userIDKey, claims.UserID())

		if sink != nil {
			if err := sink(c.Request.Context(), claims.UserID(), claims.FirstName, claims.LastName); err != nil {
				LoggerFrom(c).Warn().Err(err).Str("user_id", claims.UserID()).Msg("identity sink failed")
			}
		}

		c.Next()
	}
}

// UserID returns the authenticated user id stored by Auth. The boolean is
// false on routes that skipped authentication.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="chat"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
