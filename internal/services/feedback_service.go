// Package services – FeedbackService
//
// This file implements the FeedbackService, which governs how customer
// reviews enter the store: it validates the star rating and sentiment label,
// normalizes blank optional fields to an explicit absent marker (NULL, never
// empty strings), persists the record, and fires the celebration effect for
// five-star submissions. The celebration is fire-and-forget: it runs on its
// own goroutine with its own timeout and can never fail a submission.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/notify"
	"github.com/africanjoy/feedback-backend/internal/stats"
	"github.com/africanjoy/feedback-backend/internal/store"
)

// celebrationTimeout bounds the detached publish so an unreachable broker
// cannot leak goroutines indefinitely.
const celebrationTimeout = 5 * time.Second

// FeedbackService implements the use-cases around review submission and
// listing.
type FeedbackService struct {
	// Store is the record-store client used for all persistence.
	Store *store.Client
	// Celebrator receives five-star events. Nil disables the effect.
	Celebrator notify.Celebrator
	// IdempotencyTTL is the replay window for retried submissions.
	IdempotencyTTL time.Duration
}

// Submit validates and persists one review draft.
//
// Semantics:
//   - Rating must be within 1..5; otherwise ErrInvalidRating.
//   - RatingType, when given, must be a known label; otherwise
//     ErrInvalidRatingType. When omitted it is derived from the rating the
//     same way the form does.
//   - Blank name/location/comment are normalized to NULL before insertion.
//   - A five-star submission triggers the celebration effect after the
//     insert succeeds, detached from this call.
//
// On success the persisted record is returned. Store failures propagate so
// the handler can answer with an explicit {success:false, error} result.
func (s *FeedbackService) Submit(ctx context.Context, draft domain.FeedbackDraft) (*domain.Feedback, error) {
	if draft.Rating < stats.MinRating || draft.Rating > stats.MaxRating {
		return nil, ErrInvalidRating
	}

	ratingType := draft.RatingType
	switch ratingType {
	case "":
		ratingType = domain.RatingTypeFor(draft.Rating)
	case domain.RatingLoved, domain.RatingOkay, domain.RatingNotGood:
	default:
		return nil, ErrInvalidRatingType
	}

	fb := &domain.Feedback{
		Rating:     draft.Rating,
		RatingType: ratingType,
		Name:       nilIfBlank(draft.Name),
		Location:   nilIfBlank(draft.Location),
		Comment:    nilIfBlank(draft.Comment),
	}
	if err := s.Store.Insert(ctx, fb); err != nil {
		return nil, err
	}

	if fb.Rating == stats.MaxRating {
		s.celebrate(fb)
	}
	return fb, nil
}

// List returns the reviews matching the filter plus the unpaginated total
// for pagination metadata.
func (s *FeedbackService) List(ctx context.Context, f domain.FeedbackFilter) ([]domain.Feedback, int64, error) {
	records, err := s.Store.FetchFeedback(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountFeedback(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Replay returns the record a prior submission with the same Idempotency-Key
// produced, or (nil, nil) when no usable record exists. A dangling pointer
// (idempotency row whose record was purged) also counts as absent.
func (s *FeedbackService) Replay(ctx context.Context, key string) (*domain.Feedback, error) {
	rec, err := s.Store.LookupSubmission(ctx, key)
	if err != nil || rec == nil {
		return nil, err
	}
	fb, err := s.Store.FetchFeedbackByID(ctx, rec.FeedbackID)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("idempotent replay target missing")
		return nil, nil
	}
	return fb, nil
}

// Remember records a completed submission under key for later replay. A lost
// race on the unique key means another retry already recorded it; that is
// logged and swallowed.
func (s *FeedbackService) Remember(ctx context.Context, key, feedbackID string, status int) {
	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := s.Store.RememberSubmission(ctx, key, feedbackID, status, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("idempotency record not saved")
	}
}

// celebrate fires the celebration event on its own goroutine. Publish
// failures are logged, never surfaced: the effect is decoupled from the
// submission outcome.
func (s *FeedbackService) celebrate(fb *domain.Feedback) {
	if s.Celebrator == nil {
		return
	}
	ev := notify.Event{
		FeedbackID: fb.ID,
		Rating:     fb.Rating,
		OccurredAt: fb.CreatedAt,
	}
	if fb.Location != nil {
		ev.Location = *fb.Location
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), celebrationTimeout)
		defer cancel()
		if err := s.Celebrator.Celebrate(ctx, ev); err != nil {
			log.Warn().Err(err).Str("feedback_id", ev.FeedbackID).Msg("celebration publish failed")
		}
	}()
}

// nilIfBlank maps whitespace-only input to the explicit absent marker.
func nilIfBlank(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}
