// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements SessionGuard, the server-side counterpart of the
// dashboard's access guard. Protected routes stay inert until the token
// resolves: a request without a live session is answered with 401 and a
// login hint, and never reaches the handler.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// sessionCookie is the cookie carrying the dashboard session token.
const sessionCookie = "aj_session"

// TokenLookup resolves a session token to a live session. Implementations
// return an error for any token that does not map to a live session; the
// guard does not distinguish failure modes.
type TokenLookup func(ctx context.Context, token string) (*domain.Session, error)

// SessionToken extracts the token from the request: the session cookie
// first, then a Bearer Authorization header.
func SessionToken(c *gin.Context) string {
	if tok, err := c.Cookie(sessionCookie); err == nil && tok != "" {
		return tok
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// SetSessionCookie writes the session cookie with the given max age in
// seconds. Secure is derived from the request scheme; a negative maxAge
// clears the cookie.
func SetSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", isHTTPS(c.Request), true)
}

// SessionGuard returns a Gin middleware that admits only requests carrying a
// live session. On success the session's user ID is stored under "userID"
// for logging and rate limiting; on failure the request is aborted with the
// standard error envelope and a redirect hint to the login page.
func SessionGuard(lookup TokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := lookup(c.Request.Context(), SessionToken(c))
		if err != nil || s == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthenticated",
				"message":    "authentication required",
				"login":      "/login",
			})
			return
		}
		c.Set("userID", s.UserID)
		c.Next()
	}
}
