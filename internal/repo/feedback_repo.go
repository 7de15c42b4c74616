// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Feedback
// model: insertion of new reviews and filtered, paginated listings.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving normalization and business rules to the services
// package.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On other DB errors (constraints, connectivity, etc.), the raw gorm
//     error is propagated. The store adapter decides whether to degrade.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// defaultPageSize is the listing page size applied when an offset is given
// without a limit, matching the closed-range [offset, offset+limit-1]
// pagination contract.
const defaultPageSize = 10

// CreateFeedback inserts a new review row. The ID is a generated UUID and
// CreatedAt is set to UTC when unset. Optional fields must already be
// normalized to nil (never empty strings) by the caller.
func CreateFeedback(ctx context.Context, db *gorm.DB, fb *domain.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(fb).Error
}

// GetFeedback fetches a single review by ID, or ErrNotFound.
func GetFeedback(ctx context.Context, db *gorm.DB, id string) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := db.WithContext(ctx).First(&fb, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fb, nil
}

// applyFilter composes the conjunctive filter predicates onto a feedback
// query. All bounds are inclusive.
func applyFilter(q *gorm.DB, f domain.FeedbackFilter) *gorm.DB {
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at <= ?", *f.EndDate)
	}
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}
	if f.MaxRating > 0 {
		q = q.Where("rating <= ?", f.MaxRating)
	}
	return q
}

// ListFeedback returns reviews matching the filter, ordered by creation time
// descending (most recent first). Pagination follows the closed-range
// contract: an offset without a limit implies a page of defaultPageSize.
// It returns an empty slice when nothing matches.
func ListFeedback(ctx context.Context, db *gorm.DB, f domain.FeedbackFilter) ([]domain.Feedback, error) {
	q := applyFilter(db.WithContext(ctx).Model(&domain.Feedback{}), f).
		Order("created_at desc")

	limit := f.Limit
	if f.Offset > 0 {
		if limit <= 0 {
			limit = defaultPageSize
		}
		q = q.Offset(f.Offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []domain.Feedback
	err := q.Find(&out).Error
	return out, err
}

// CountFeedback returns the number of reviews matching the filter's
// predicates. Limit and offset are ignored.
func CountFeedback(ctx context.Context, db *gorm.DB, f domain.FeedbackFilter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.Feedback{}), f).
		Count(&total).Error
	return total, err
}
