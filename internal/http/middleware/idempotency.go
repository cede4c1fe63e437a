// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for message sends. It validates an
// Idempotency-Key request header, optionally performs a user-defined lookup to
// detect previously completed requests, and annotates the context so the send
// handler can replay the stored result and the rate limiter can wave the
// replay through.
//
// Persistence is decoupled behind the narrow IdempotencyLookup function type;
// the middleware itself knows nothing about the storage layer.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key for message sends. The value must be stable across retries
// of the same semantic operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. Handlers should prefer this over reading
// the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the middleware detected a previously completed
// operation for the request's (user, chat, key) tuple.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyLookup checks whether a completed result already exists for the
// given identity tuple. The chat id comes from the route's :id parameter.
type IdempotencyLookup func(ctx context.Context, userID, chatID, key string, now time.Time) (bool, error)

// IdempotencyOptions configures validation of the Idempotency-Key header.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length; longer keys are rejected with 400.
	MaxLen int
}

// keyCharsRE restricts keys to a conservative token alphabet.
var keyCharsRE = regexp.MustCompile(`^[A-Za-z0-9_\-:.]+$`)

// IdempotencyValidator returns a Gin middleware that validates the
// Idempotency-Key header when present, stashes the normalized key in the
// context, and (when lookup is non-nil) flags detected replays for the
// handler and the rate limiter. Requests without the header pass through
// untouched.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !keyCharsRE.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid, _ := UserID(c)
			chatID := c.Param("id")
			if uid != "" && chatID != "" {
				if found, err := lookup(c.Request.Context(), uid, chatID, key, time.Now().UTC()); err == nil && found {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}

		c.Next()
	}
}
