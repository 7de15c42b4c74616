package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/stats"
	"github.com/africanjoy/feedback-backend/internal/store"
)

// Snapshot is one refreshed dashboard state. Each slot is independent:
// a failed fetch leaves its slot nil while the others still populate, so
// the dashboard degrades per-section instead of failing wholesale.
type Snapshot struct {
	Stats        *domain.DashboardStats `json:"stats"`
	Distribution []domain.RatingBucket  `json:"distribution"`
	Records      []domain.Feedback      `json:"records"`
	Series       []domain.MonthlyRating `json:"series"`
	Filter       domain.FeedbackFilter  `json:"-"`
	Generation   uint64                 `json:"-"`
}

// DashboardService assembles dashboard snapshots. Concurrent refreshes are
// allowed; each one carries a generation token taken at start, and a finished
// refresh only becomes the latest snapshot if no newer refresh has started
// since. A stale result is computed but discarded, which keeps a slow
// unfiltered fetch from clobbering the filter the user applied after it.
type DashboardService struct {
	Store *store.Client

	generation atomic.Uint64

	mu     sync.Mutex
	latest *Snapshot
}

// Refresh fetches all four dashboard slots concurrently and, when still
// current, installs the result as the latest snapshot. The returned bool is
// false when the snapshot lost the race to a newer refresh and was discarded.
//
// With no predicates the stats and distribution slots come from the store's
// precomputed (and cache-backed) views. With predicates they are derived from
// a single filtered fetch instead. The monthly series is always unfiltered,
// matching the trend chart's full-history axis.
func (s *DashboardService) Refresh(ctx context.Context, f domain.FeedbackFilter) (*Snapshot, bool, error) {
	gen := s.generation.Add(1)
	snap := &Snapshot{Filter: f, Generation: gen}
	filtered := hasPredicates(f)

	// The filtered fetch feeds the stats and distribution slots, so it runs
	// first and alone. A failure here nils both; the other slots still
	// refresh.
	var records []domain.Feedback
	var recErr error
	if filtered {
		records, recErr = s.Store.FetchFeedback(ctx, withoutPagination(f))
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		if !filtered {
			row, err := s.Store.FetchDashboardStats(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("dashboard stats slot degraded")
				return
			}
			snap.Stats = row
			return
		}
		if recErr != nil {
			log.Warn().Err(recErr).Msg("dashboard stats slot degraded")
			return
		}
		st := stats.Compute(records)
		snap.Stats = &st
	}()

	go func() {
		defer wg.Done()
		if !filtered {
			rows, err := s.Store.FetchRatingDistribution(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("dashboard distribution slot degraded")
				return
			}
			snap.Distribution = stats.WidenBuckets(rows)
			return
		}
		if recErr != nil {
			log.Warn().Err(recErr).Msg("dashboard distribution slot degraded")
			return
		}
		snap.Distribution = stats.Distribution(records)
	}()

	go func() {
		defer wg.Done()
		if recErr != nil {
			log.Warn().Err(recErr).Msg("dashboard records slot degraded")
			return
		}
		page, err := s.Store.FetchFeedback(ctx, f)
		if err != nil {
			log.Warn().Err(err).Msg("dashboard records slot degraded")
			return
		}
		snap.Records = page
	}()

	go func() {
		defer wg.Done()
		series, err := s.Store.FetchRatingsOverTime(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("dashboard series slot degraded")
			return
		}
		snap.Series = series
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != gen {
		// A newer refresh started while this one ran.
		return snap, false, nil
	}
	s.latest = snap
	return snap, true, nil
}

// Latest returns the most recent installed snapshot, or nil before the
// first refresh completes.
func (s *DashboardService) Latest() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// withoutPagination strips limit/offset so aggregate slots see the whole
// filtered population, not just the visible page.
func withoutPagination(f domain.FeedbackFilter) domain.FeedbackFilter {
	f.Limit = 0
	f.Offset = 0
	return f
}

// hasPredicates reports whether the filter constrains the record set.
// Pagination alone does not count: the aggregate slots ignore it anyway.
func hasPredicates(f domain.FeedbackFilter) bool {
	return f.StartDate != nil || f.EndDate != nil || f.MinRating != 0 || f.MaxRating != 0
}
