// Feedback HTTP handlers.
//
// This file exposes the REST endpoints for customer reviews:
//   - POST /feedback  (public submission from the rating form)
//   - GET  /feedback  (filtered, paginated listing; session required)
//
// Handlers are transport-thin: they validate input, delegate to application
// services, and translate domain/service errors into HTTP results. Retried
// submissions carrying an Idempotency-Key replay the original record instead
// of inserting a duplicate.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/http/middleware"
	"github.com/africanjoy/feedback-backend/internal/services"
	"github.com/africanjoy/feedback-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SubmissionService defines review submission operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type SubmissionService interface {
	// Submit validates and persists one review draft.
	Submit(ctx context.Context, draft domain.FeedbackDraft) (*domain.Feedback, error)
	// List returns reviews matching the filter plus the unpaginated total.
	List(ctx context.Context, f domain.FeedbackFilter) ([]domain.Feedback, int64, error)
	// Replay returns the record from a prior submission with the same key.
	Replay(ctx context.Context, key string) (*domain.Feedback, error)
	// Remember records a completed submission under key for later replay.
	Remember(ctx context.Context, key, feedbackID string, status int)
}

// DashboardProvider assembles dashboard snapshots.
type DashboardProvider interface {
	Refresh(ctx context.Context, f domain.FeedbackFilter) (*services.Snapshot, bool, error)
}

// AuthService defines the session operations the auth endpoints consume.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*domain.Session, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for submission, dashboard, exports,
// and auth. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	subSvc  SubmissionService
	dashSvc DashboardProvider
	authSvc AuthService

	exp ExportDeps
}

// New constructs a Handlers instance bound to the given services.
func New(subSvc SubmissionService, dashSvc DashboardProvider, authSvc AuthService, exp ExportDeps) *Handlers {
	return &Handlers{subSvc: subSvc, dashSvc: dashSvc, authSvc: authSvc, exp: exp}
}

//
// DTOs
//

// SubmitFeedbackRequest is the JSON payload posted by the rating form.
type SubmitFeedbackRequest struct {
	// Rating is the star rating (1..5).
	Rating int `json:"rating" binding:"required,min=1,max=5" example:"5"`
	// RatingType optionally overrides the derived sentiment label.
	RatingType string `json:"rating_type" binding:"omitempty,oneof=loved okay not_good" example:"loved"`
	Name       string `json:"name" example:"Amina"`
	Location   string `json:"location" example:"Arusha"`
	Feedback   string `json:"feedback" example:"Best maziwa lala in town"`
}

// SubmitFeedbackResponse mirrors the form contract: success flag plus the
// persisted record, or an error envelope on failure.
type SubmitFeedbackResponse struct {
	Success bool             `json:"success"`
	Data    *domain.Feedback `json:"data,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

// ListFeedbackResponse wraps a page of reviews and pagination information.
type ListFeedbackResponse struct {
	Feedback   []domain.Feedback `json:"feedback"`
	Pagination Pagination        `json:"pagination"`
}

//
// Helpers
//

// parseFilter binds the shared filter query parameters. Dates accept
// YYYY-MM-DD (end date extended to the end of its day, keeping the bound
// inclusive) or full RFC 3339 timestamps.
func parseFilter(c *gin.Context) (domain.FeedbackFilter, error) {
	var f domain.FeedbackFilter

	if s := c.Query("start_date"); s != "" {
		t, err := parseDate(s, false)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := parseDate(s, true)
		if err != nil {
			return f, err
		}
		f.EndDate = &t
	}

	f.MinRating = utils.AtoiDefault(c.Query("min_rating"), 0)
	f.MaxRating = utils.AtoiDefault(c.Query("max_rating"), 0)
	if f.MinRating < 0 || f.MaxRating < 0 || f.MinRating > 5 || f.MaxRating > 5 {
		return f, errors.New("rating bounds must be within 1..5")
	}

	const maxLimit = 500
	f.Limit = utils.AtoiDefault(c.Query("limit"), 0)
	f.Offset = utils.AtoiDefault(c.Query("offset"), 0)
	if f.Limit < 0 || f.Offset < 0 {
		return f, errors.New("limit and offset must not be negative")
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. endOfDay pushes a bare date to
// 23:59:59 so end-date bounds stay inclusive.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("dates must be YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}

//
// Handlers
//

// SubmitFeedback godoc
// @ID          submitFeedback
// @Summary     Submit a customer review
// @Description Validates and stores a star rating with optional reviewer details. Retries with the same Idempotency-Key replay the original record.
// @Tags        Feedback
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Stable retry key"  example(form-9f1b2c3d)
// @Param       body             body    handlers.SubmitFeedbackRequest true "Review payload"
//
// @Success     201  {object} handlers.SubmitFeedbackResponse
// @Success     200  {object} handlers.SubmitFeedbackResponse "Idempotent replay"
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     429  {object} handlers.ErrorResponse "Rate limited"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /feedback [post]
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey && middleware.IsReplay(c) {
		if prior, err := h.subSvc.Replay(c.Request.Context(), key); err == nil && prior != nil {
			ok(c, http.StatusOK, SubmitFeedbackResponse{Success: true, Data: prior})
			return
		}
		// Replay lookup came up empty; fall through and submit fresh.
	}

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rating must be an integer between 1 and 5")
		return
	}

	fb, err := h.subSvc.Submit(c.Request.Context(), domain.FeedbackDraft{
		Rating:     req.Rating,
		RatingType: req.RatingType,
		Name:       req.Name,
		Location:   req.Location,
		Comment:    req.Feedback,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rating must be between 1 and 5")
		case errors.Is(err, services.ErrInvalidRatingType):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rating_type must be loved, okay or not_good")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
		}
		return
	}

	if hasKey {
		h.subSvc.Remember(c.Request.Context(), key, fb.ID, http.StatusCreated)
	}
	middleware.CountSubmission(fb.Rating)
	ok(c, http.StatusCreated, SubmitFeedbackResponse{Success: true, Data: fb})
}

// ListFeedback godoc
// @ID          listFeedback
// @Summary     List reviews (filtered, paginated)
// @Description Returns reviews matching the filter, most recent first. All filter bounds are inclusive; an offset without a limit implies a page of 10.
// @Tags        Feedback
// @Produce     json
//
// @Param       start_date  query  string  false "Lower creation bound (YYYY-MM-DD or RFC 3339)"  example(2024-01-01)
// @Param       end_date    query  string  false "Upper creation bound (inclusive)"               example(2024-06-30)
// @Param       min_rating  query  int     false "Minimum star rating"  minimum(1) maximum(5)
// @Param       max_rating  query  int     false "Maximum star rating"  minimum(1) maximum(5)
// @Param       limit       query  int     false "Page size"            minimum(0) maximum(500)
// @Param       offset      query  int     false "Rows to skip"         minimum(0)
//
// @Success     200  {object} handlers.ListFeedbackResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /feedback [get]
func (h *Handlers) ListFeedback(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	records, total, err := h.subSvc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	limit := f.Limit
	if limit == 0 && f.Offset > 0 {
		limit = 10
	}
	resp := ListFeedbackResponse{
		Feedback: records,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  f.Offset,
			Total:   total,
			HasNext: limit > 0 && int64(f.Offset+limit) < total,
		},
	}
	ok(c, http.StatusOK, resp)
}
