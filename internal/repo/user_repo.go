// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for dashboard
// users and their sessions, consumed by the auth service and access guard.
//
// Error semantics follow the rest of the package: missing rows surface as
// ErrNotFound (gorm.ErrRecordNotFound), other failures propagate raw.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// CreateUser inserts a dashboard user with an already-hashed password.
func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail fetches a user by email, or ErrNotFound.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession issues a new session token for userID with the given TTL.
func CreateSession(ctx context.Context, db *gorm.DB, userID string, ttl time.Duration) (*domain.Session, error) {
	now := time.Now().UTC()
	s := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession fetches a session by token, or ErrNotFound. Expiry is the
// caller's concern: the auth service treats expired sessions as absent.
func GetSession(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var s domain.Session
	if err := db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session by token. Deleting a missing token is not
// an error; sign-out is idempotent.
func DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{}).Error
}

// DeleteExpiredSessions prunes sessions past their expiry at the given time.
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.Session{}).Error
}
