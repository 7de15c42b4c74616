// Auth HTTP handlers.
//
// This file exposes the dashboard authentication endpoints:
//   - POST /auth/login    (password sign-in, sets the session cookie)
//   - POST /auth/logout   (revokes the session; idempotent)
//   - GET  /auth/session  (the access-guard probe)
//
// Responses never distinguish a wrong password from an unknown email, and
// the session probe answers the same 401 for missing, unknown and expired
// tokens.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/africanjoy/feedback-backend/internal/http/middleware"
	"github.com/africanjoy/feedback-backend/internal/services"
)

// LoginRequest is the JSON payload for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@africanjoy.example"`
	Password string `json:"password" binding:"required" example:"********"`
}

// SessionResponse describes a live session to the dashboard client.
type SessionResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login godoc
// @ID          login
// @Summary     Sign in to the dashboard
// @Description Verifies credentials and issues a session token, also set as an HTTP-only cookie.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object} handlers.SessionResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     401  {object} handlers.ErrorResponse "Invalid credentials"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	s, err := h.authSvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	middleware.SetSessionCookie(c, s.Token, maxAge)
	ok(c, http.StatusOK, SessionResponse{Token: s.Token, UserID: s.UserID, ExpiresAt: s.ExpiresAt})
}

// Logout godoc
// @ID          logout
// @Summary     Sign out
// @Description Revokes the current session and clears the cookie. Safe to call without a session.
// @Tags        Auth
// @Produce     json
//
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if err := h.authSvc.SignOut(c.Request.Context(), token); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	middleware.SetSessionCookie(c, "", -1)
	noContent(c)
}

// Session godoc
// @ID          session
// @Summary     Probe the current session
// @Description The access-guard probe: returns the live session or 401. Missing, unknown and expired tokens are indistinguishable.
// @Tags        Auth
// @Produce     json
//
// @Success     200  {object} handlers.SessionResponse
// @Failure     401  {object} handlers.ErrorResponse "No live session"
// @Router      /auth/session [get]
func (h *Handlers) Session(c *gin.Context) {
	s, err := h.authSvc.Session(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "no live session")
		return
	}
	ok(c, http.StatusOK, SessionResponse{Token: s.Token, UserID: s.UserID, ExpiresAt: s.ExpiresAt})
}
