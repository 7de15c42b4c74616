// Package domain defines the persistence models for customer feedback and
// dashboard users, plus the derived view rows served to the dashboard. The
// GORM-mapped types form the core data layer of the feedback platform.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Rating type labels chosen by the feedback form.
const (
	RatingLoved   = "loved"    // 4-5 stars
	RatingOkay    = "okay"     // 3 stars
	RatingNotGood = "not_good" // 1-2 stars
)

// RatingTypeFor maps a star rating onto its form label, mirroring the
// sentiment buckets the submission form presents.
func RatingTypeFor(rating int) string {
	switch {
	case rating >= 4:
		return RatingLoved
	case rating == 3:
		return RatingOkay
	default:
		return RatingNotGood
	}
}

// Feedback represents a single customer review captured by the public form.
// Records are immutable after insertion and never deleted by this system.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - CreatedAt: submission timestamp, the sort key for all listings.
//   - Name / Location / Comment: optional; stored as NULL when the customer
//     left them blank, never as empty strings.
//   - Rating: star rating in 1..5 (enforced by DB constraint).
//   - RatingType: sentiment label ("loved", "okay", "not_good").
type Feedback struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_feedback_created"`
	Name       *string   `json:"name"        gorm:"type:varchar(120)"`
	Location   *string   `json:"location"    gorm:"type:varchar(120)"`
	Rating     int       `json:"rating"      gorm:"not null;index;check:rating BETWEEN 1 AND 5"`
	Comment    *string   `json:"feedback"    gorm:"column:feedback;type:text"`
	RatingType string    `json:"rating_type" gorm:"type:varchar(16);not null;check:rating_type IN ('loved','okay','not_good')"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedback" }

// FeedbackDraft is the mutable shape of a form submission before
// normalization and persistence. Blank optional fields are normalized to
// NULL by the service layer.
type FeedbackDraft struct {
	Name       string
	Location   string
	Rating     int
	Comment    string
	RatingType string
}

// FeedbackFilter describes the conjunctive constraints applied to feedback
// listings. Zero values mean "unconstrained". When both MinRating and
// MaxRating are set the caller is responsible for min <= max.
type FeedbackFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	MinRating int
	MaxRating int
	Limit     int
	Offset    int
}

// DashboardStats is the summary row shown at the top of the dashboard.
// It is either read from the precomputed store view or recomputed from a
// filtered snapshot; both shapes are identical.
type DashboardStats struct {
	TotalReviews       int64   `json:"total_reviews"`
	AverageRating      float64 `json:"average_rating"`
	FiveStarPercentage float64 `json:"five_star_percentage"`
	Trend              float64 `json:"trend"`
}

// RatingBucket is one histogram entry of the rating distribution.
// The domain is fixed to ratings 5..1, emitted descending.
type RatingBucket struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

// MonthlyRating is one point of the ratings-over-time series, ascending by
// month. Month labels use the "2006-01" form.
type MonthlyRating struct {
	Month       string  `json:"month"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int64   `json:"review_count"`
}

// User is a dashboard operator allowed to view and export feedback.
type User struct {
	ID           string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash string         `json:"-"          gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Session is a bearer token issued by sign-in. Expired sessions are treated
// as absent by the access guard.
type Session struct {
	Token     string    `json:"token"      gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`

	// User is the session owner; sessions vanish with their user.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
