// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file persists idempotency records for the public
// feedback submission endpoint, letting retried form posts replay the
// original result instead of inserting duplicate reviews.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// GetIdempotency returns the still-valid record for key at the given time,
// or (nil, nil) when no usable record exists. Expired records are treated as
// absent.
func GetIdempotency(ctx context.Context, db *gorm.DB, key string, now time.Time) (*domain.Idempotency, error) {
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveIdempotency records that a submission with the given key produced
// feedbackID with the given HTTP status, valid for ttl. A concurrent insert
// of the same key loses to the unique index; that conflict is returned raw
// for the caller to ignore.
func SaveIdempotency(ctx context.Context, db *gorm.DB, key, feedbackID string, status int, ttl time.Duration) error {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		Key:        key,
		FeedbackID: feedbackID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	return db.WithContext(ctx).Create(rec).Error
}

// PurgeExpiredIdempotency deletes records past their expiry.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Idempotency{}).Error
}
