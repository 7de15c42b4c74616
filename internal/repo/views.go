// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the three
// "precomputed" dashboard views: summary statistics, the rating
// distribution, and the monthly ratings-over-time series. Each function is
// context-aware and safe to call from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/stats"
)

// DashboardStats computes the single summary row over all feedback. The
// count/average/five-star figures come from one aggregate query; the trend
// needs the ordered rating sequence, which is plucked separately so the
// half-split arithmetic stays identical to the filtered path.
//
// When the table is empty the all-zero row is returned, not an error.
func DashboardStats(ctx context.Context, db *gorm.DB) (*domain.DashboardStats, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.Feedback{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return &domain.DashboardStats{}, nil
	}

	ratings, err := ratingsDesc(ctx, db)
	if err != nil {
		return nil, err
	}
	row := stats.FromRatings(ratings)
	return &row, nil
}

// ratingsDesc plucks all rating values ordered by creation time descending,
// the canonical snapshot order.
func ratingsDesc(ctx context.Context, db *gorm.DB) ([]int, error) {
	var ratings []int
	err := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Order("created_at desc").
		Pluck("rating", &ratings).Error
	return ratings, err
}

// RatingDistribution returns one bucket per rating value present in the
// table, sorted descending by rating. Absent ratings yield no row here; the
// stats aggregator widens filtered snapshots to the fixed 5-bucket domain.
func RatingDistribution(ctx context.Context, db *gorm.DB) ([]domain.RatingBucket, error) {
	var out []domain.RatingBucket
	err := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Order("rating desc").
		Scan(&out).Error
	return out, err
}

// RatingsOverTime returns the monthly average-rating series ascending by
// month. Month labels use SQLite's strftime "%Y-%m" form.
func RatingsOverTime(ctx context.Context, db *gorm.DB) ([]domain.MonthlyRating, error) {
	var out []domain.MonthlyRating
	err := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Select("strftime('%Y-%m', created_at) AS month, ROUND(AVG(rating), 2) AS avg_rating, COUNT(*) AS review_count").
		Group("month").
		Order("month asc").
		Scan(&out).Error
	return out, err
}
