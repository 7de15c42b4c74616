package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/repo"
)

// AuthService implements password sign-in and opaque session tokens for the
// dashboard. All failure modes of a sign-in collapse into
// ErrInvalidCredentials and all failure modes of a session probe collapse
// into ErrNoSession, so responses never reveal which part failed.
type AuthService struct {
	DB         *gorm.DB
	SessionTTL time.Duration
}

// SignIn verifies the email/password pair and issues a session. Email is
// matched case-insensitively.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := repo.GetUserByEmail(ctx, a.DB, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Error().Err(err).Msg("sign-in lookup failed")
		}
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	s, err := repo.CreateSession(ctx, a.DB, u.ID, a.SessionTTL)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SignOut revokes a session token. Unknown tokens are a no-op.
func (a *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return repo.DeleteSession(ctx, a.DB, token)
}

// Session validates a token and returns its session. Empty, unknown and
// expired tokens all yield ErrNoSession, as does a failed lookup: a probe
// that cannot be completed is treated as no session.
func (a *AuthService) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	s, err := repo.GetSession(ctx, a.DB, token)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Msg("session probe failed")
		}
		return nil, ErrNoSession
	}
	if s.Expired(time.Now().UTC()) {
		if err := repo.DeleteSession(ctx, a.DB, token); err != nil {
			log.Warn().Err(err).Msg("expired session cleanup failed")
		}
		return nil, ErrNoSession
	}
	return s, nil
}

// EnsureUser creates the given user if it does not exist yet, hashing the
// password with bcrypt. Used at startup to seed the dashboard admin.
func (a *AuthService) EnsureUser(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("admin email and password must both be set")
	}
	if _, err := repo.GetUserByEmail(ctx, a.DB, email); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = repo.CreateUser(ctx, a.DB, email, string(hash))
	return err
}
