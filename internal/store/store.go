// Package store exposes the record-store client: a thin adapter over the
// repository layer that the dashboard and export services consume. Reads
// return (value, error) like any Go API; degradation to "no data" is the
// caller's choice, not the adapter's. The three precomputed views go through
// an optional Redis read-through cache whose failures are logged and treated
// as misses, never surfaced.
package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/repo"
)

// Cache keys for the precomputed views.
const (
	keyStats        = "views:dashboard_stats"
	keyDistribution = "views:rating_distribution"
	keyOverTime     = "views:ratings_over_time"
)

// Client is the record-store adapter. A nil cache disables read-through
// caching; everything else behaves identically.
type Client struct {
	db    *gorm.DB
	cache *ViewCache
}

// New returns a store client over db. cache may be nil.
func New(db *gorm.DB, cache *ViewCache) *Client {
	return &Client{db: db, cache: cache}
}

// FetchDashboardStats reads the precomputed summary row.
func (c *Client) FetchDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if c.cache != nil {
		var row domain.DashboardStats
		if c.cache.get(ctx, keyStats, &row) {
			return &row, nil
		}
	}
	row, err := repo.DashboardStats(ctx, c.db)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.set(ctx, keyStats, row)
	}
	return row, nil
}

// FetchRatingDistribution reads the distribution view, sorted descending by
// rating. Only ratings present in the table appear.
func (c *Client) FetchRatingDistribution(ctx context.Context) ([]domain.RatingBucket, error) {
	if c.cache != nil {
		var rows []domain.RatingBucket
		if c.cache.get(ctx, keyDistribution, &rows) {
			return rows, nil
		}
	}
	rows, err := repo.RatingDistribution(ctx, c.db)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.set(ctx, keyDistribution, rows)
	}
	return rows, nil
}

// FetchRatingsOverTime reads the monthly series, ascending by month.
func (c *Client) FetchRatingsOverTime(ctx context.Context) ([]domain.MonthlyRating, error) {
	if c.cache != nil {
		var rows []domain.MonthlyRating
		if c.cache.get(ctx, keyOverTime, &rows) {
			return rows, nil
		}
	}
	rows, err := repo.RatingsOverTime(ctx, c.db)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.set(ctx, keyOverTime, rows)
	}
	return rows, nil
}

// FetchFeedback lists reviews matching the filter, descending by creation
// time. Listings are not cached: the filter space is unbounded.
func (c *Client) FetchFeedback(ctx context.Context, f domain.FeedbackFilter) ([]domain.Feedback, error) {
	return repo.ListFeedback(ctx, c.db, f)
}

// CountFeedback returns the total matching the filter's predicates.
func (c *Client) CountFeedback(ctx context.Context, f domain.FeedbackFilter) (int64, error) {
	return repo.CountFeedback(ctx, c.db, f)
}

// FetchFeedbackByID fetches a single review, or repo.ErrNotFound.
func (c *Client) FetchFeedbackByID(ctx context.Context, id string) (*domain.Feedback, error) {
	return repo.GetFeedback(ctx, c.db, id)
}

// LookupSubmission returns the still-valid idempotency record for key, or
// (nil, nil) when absent or expired.
func (c *Client) LookupSubmission(ctx context.Context, key string) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, c.db, key, time.Now().UTC())
}

// RememberSubmission records that key produced feedbackID so retried posts
// can replay the result for ttl.
func (c *Client) RememberSubmission(ctx context.Context, key, feedbackID string, status int, ttl time.Duration) error {
	return repo.SaveIdempotency(ctx, c.db, key, feedbackID, status, ttl)
}

// Insert persists one review and drops the cached views, which the insert
// just invalidated. Cache eviction failures are logged and ignored; the TTL
// bounds the staleness either way.
func (c *Client) Insert(ctx context.Context, fb *domain.Feedback) error {
	if err := repo.CreateFeedback(ctx, c.db, fb); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.drop(ctx, keyStats, keyDistribution, keyOverTime); err != nil {
			log.Warn().Err(err).Msg("store: view cache eviction failed")
		}
	}
	return nil
}
