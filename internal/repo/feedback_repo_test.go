package repo

import (
	"context"
	"testing"
	"time"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"gorm.io/gorm"
)

func strptr(s string) *string { return &s }

// seedRatings inserts one review per rating, spaced one hour apart with the
// first rating being the most recent.
func seedRatings(t *testing.T, db *gorm.DB, base time.Time, ratings ...int) {
	t.Helper()
	for i, r := range ratings {
		fb := &domain.Feedback{
			Rating:     r,
			RatingType: domain.RatingTypeFor(r),
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
		}
		if err := CreateFeedback(context.Background(), db, fb); err != nil {
			t.Fatalf("seed feedback: %v", err)
		}
	}
}

func TestCreateFeedback_AssignsIDAndTime(t *testing.T) {
	db := newTestDB(t)

	fb := &domain.Feedback{Rating: 5, RatingType: domain.RatingLoved, Name: strptr("Amina")}
	if err := CreateFeedback(context.Background(), db, fb); err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}
	if fb.ID == "" {
		t.Errorf("ID should be generated")
	}
	if fb.CreatedAt.IsZero() {
		t.Errorf("CreatedAt should be set")
	}
}

func TestCreateFeedback_NilOptionalsStayNull(t *testing.T) {
	db := newTestDB(t)

	fb := &domain.Feedback{Rating: 3, RatingType: domain.RatingOkay}
	if err := CreateFeedback(context.Background(), db, fb); err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	var got domain.Feedback
	if err := db.First(&got, "id = ?", fb.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != nil || got.Location != nil || got.Comment != nil {
		t.Errorf("optional fields must persist as NULL, got %+v", got)
	}
}

func TestListFeedback_OrderedDescending(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedRatings(t, db, base, 5, 3, 1)

	out, err := ListFeedback(context.Background(), db, domain.FeedbackFilter{})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d records, want 3", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt.After(out[i-1].CreatedAt) {
			t.Fatalf("records not in descending time order")
		}
	}
	if out[0].Rating != 5 || out[2].Rating != 1 {
		t.Errorf("unexpected order: %d..%d", out[0].Rating, out[2].Rating)
	}
}

func TestListFeedback_RatingRange(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedRatings(t, db, base, 1, 2, 3, 4, 5)

	out, err := ListFeedback(context.Background(), db, domain.FeedbackFilter{MinRating: 4, MaxRating: 5})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	for _, fb := range out {
		if fb.Rating < 4 || fb.Rating > 5 {
			t.Errorf("rating %d escaped the [4,5] filter", fb.Rating)
		}
	}
}

func TestListFeedback_DateRangeInclusive(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedRatings(t, db, base, 5, 4, 3) // base, base-1h, base-2h

	start := base.Add(-time.Hour) // exactly the middle record
	end := base.Add(-time.Hour)
	out, err := ListFeedback(context.Background(), db, domain.FeedbackFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(out) != 1 || out[0].Rating != 4 {
		t.Fatalf("inclusive bounds should match exactly the middle record, got %+v", out)
	}
}

func TestListFeedback_Pagination(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedRatings(t, db, base, 5, 4, 3, 2, 1)

	// limit only
	out, err := ListFeedback(context.Background(), db, domain.FeedbackFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(out) != 2 || out[0].Rating != 5 {
		t.Fatalf("limit page wrong: %+v", out)
	}

	// offset + limit: closed range [2, 3]
	out, err = ListFeedback(context.Background(), db, domain.FeedbackFilter{Offset: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(out) != 2 || out[0].Rating != 3 || out[1].Rating != 2 {
		t.Fatalf("offset page wrong: %+v", out)
	}

	// offset without limit falls back to the default page size
	out, err = ListFeedback(context.Background(), db, domain.FeedbackFilter{Offset: 1})
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("offset-only page = %d records, want 4", len(out))
	}
}

func TestCountFeedback_RespectsFilter(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedRatings(t, db, base, 1, 3, 5, 5)

	total, err := CountFeedback(context.Background(), db, domain.FeedbackFilter{MinRating: 5})
	if err != nil {
		t.Fatalf("CountFeedback: %v", err)
	}
	if total != 2 {
		t.Errorf("count = %d, want 2", total)
	}

	// Limit must not cap the count.
	total, err = CountFeedback(context.Background(), db, domain.FeedbackFilter{Limit: 1})
	if err != nil {
		t.Fatalf("CountFeedback: %v", err)
	}
	if total != 4 {
		t.Errorf("count = %d, want 4", total)
	}
}
