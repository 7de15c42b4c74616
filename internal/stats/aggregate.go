// Package stats implements the pure aggregation pipeline that turns a
// filtered feedback snapshot into the derived dashboard views: summary
// statistics and the fixed-domain rating histogram.
//
// All functions are pure and operate on slices ordered descending by
// creation time, which is the order every store listing returns. The half
// split used by the trend keeps that orientation: the "first half" of the
// slice is the more recent half. The computation is kept literal; the
// user-facing "since last month" label drawn from it is a separate concern.
package stats

import (
	"math"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// Rating domain bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Compute derives the summary statistics from a feedback snapshot ordered
// descending by creation time. An empty snapshot yields all-zero stats; no
// division-by-zero artifacts leak out.
//
// Rounding: average and five-star percentage to 2 decimals, trend to 1.
func Compute(records []domain.Feedback) domain.DashboardStats {
	if len(records) == 0 {
		return domain.DashboardStats{}
	}
	ratings := make([]int, len(records))
	for i, r := range records {
		ratings[i] = r.Rating
	}
	return FromRatings(ratings)
}

// FromRatings is Compute over bare rating values, in the same
// descending-by-time order. It backs both the filtered dashboard path and
// the store's precomputed stats view.
func FromRatings(ratings []int) domain.DashboardStats {
	n := len(ratings)
	if n == 0 {
		return domain.DashboardStats{}
	}

	var sum, fiveStar int
	for _, r := range ratings {
		sum += r
		if r == MaxRating {
			fiveStar++
		}
	}

	return domain.DashboardStats{
		TotalReviews:       int64(n),
		AverageRating:      Round2(float64(sum) / float64(n)),
		FiveStarPercentage: Round2(float64(fiveStar) / float64(n) * 100),
		Trend:              TrendPercent(ratings),
	}
}

// TrendPercent compares the two halves of a descending-by-time rating list,
// split at floor(n/2): trend = (secondHalfAvg - firstHalfAvg) / firstHalfAvg
// * 100, rounded to 1 decimal. Returns 0 when the first half is empty or
// averages to 0.
func TrendPercent(ratings []int) float64 {
	mid := len(ratings) / 2
	first := mean(ratings[:mid])
	second := mean(ratings[mid:])
	if first == 0 {
		return 0
	}
	return Round1((second - first) / first * 100)
}

// Distribution buckets a snapshot by star rating over the fixed domain
// {5,4,3,2,1}. The result always has exactly 5 entries sorted descending by
// rating, with counts summing to len(records). Ratings outside the domain
// cannot occur by construction and are dropped if present.
func Distribution(records []domain.Feedback) []domain.RatingBucket {
	counts := [MaxRating + 1]int64{}
	for _, r := range records {
		if r.Rating >= MinRating && r.Rating <= MaxRating {
			counts[r.Rating]++
		}
	}
	out := make([]domain.RatingBucket, 0, MaxRating)
	for rating := MaxRating; rating >= MinRating; rating-- {
		out = append(out, domain.RatingBucket{Rating: rating, Count: counts[rating]})
	}
	return out
}

// WidenBuckets expands a sparse bucket list, as returned by the store's
// distribution view, to the fixed {5..1} domain with zero counts filled in.
// Order of the input does not matter; the output is descending by rating.
func WidenBuckets(sparse []domain.RatingBucket) []domain.RatingBucket {
	counts := [MaxRating + 1]int64{}
	for _, b := range sparse {
		if b.Rating >= MinRating && b.Rating <= MaxRating {
			counts[b.Rating] = b.Count
		}
	}
	out := make([]domain.RatingBucket, 0, MaxRating)
	for rating := MaxRating; rating >= MinRating; rating-- {
		out = append(out, domain.RatingBucket{Rating: rating, Count: counts[rating]})
	}
	return out
}

func mean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

// Round2 rounds to 2 decimal places (half away from zero).
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round1 rounds to 1 decimal place (half away from zero).
func Round1(v float64) float64 { return math.Round(v*10) / 10 }
