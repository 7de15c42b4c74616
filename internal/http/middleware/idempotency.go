// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for the public submission
// endpoint. Store-front tablets retry aggressively on flaky connections, so
// clients may send an Idempotency-Key header with POST /feedback; the
// middleware validates it, stashes it in the request context, and consults a
// lookup to detect a previously completed submission so the handler can
// replay it instead of inserting a duplicate review.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key for unsafe operations. The value is expected to be stable
// for a given semantic submission so retries deduplicate safely.
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

// IsReplay reports whether this request would replay a previously completed
// submission. Handlers may short-circuit and return the persisted record.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
// TTL enforcement belongs inside the lookup function, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a completed, still-valid submission
// exists for key at the given time. Return exists=true when the prior record
// can be replayed; return an error only for lookup failures, which must not
// block normal processing.
type IdempotencyLookup func(ctx context.Context, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header (if present),
// stashes it in the request context, and checks for a prior completed
// submission via the supplied lookup. A detected replay sets the replay and
// rate-bypass flags; serving the cached record remains the handler's job.
//
// An absent header makes the middleware a no-op; an invalid header fails
// with 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			now := time.Now().UTC()
			if exists, _ := lookup(c.Request.Context(), key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
