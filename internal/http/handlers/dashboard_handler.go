// Dashboard HTTP handler.
//
// This file exposes GET /dashboard, which refreshes and returns the full
// dashboard snapshot: summary stats, rating distribution, the monthly
// series, and the visible page of reviews. Slot fetches are fail-soft: a
// degraded slot is returned as null/empty alongside the healthy ones, and
// the response carries a "stale" marker when a concurrent refresh with a
// newer filter superseded this one.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/africanjoy/feedback-backend/internal/services"
)

// DashboardResponse wraps a snapshot with its staleness marker.
type DashboardResponse struct {
	*services.Snapshot
	Stale bool `json:"stale"`
}

// Dashboard godoc
// @ID          dashboard
// @Summary     Dashboard snapshot
// @Description Refreshes all dashboard slots concurrently under the given filter and returns the assembled snapshot. Degraded slots come back null.
// @Tags        Dashboard
// @Produce     json
//
// @Param       start_date  query  string  false "Lower creation bound (YYYY-MM-DD or RFC 3339)"
// @Param       end_date    query  string  false "Upper creation bound (inclusive)"
// @Param       min_rating  query  int     false "Minimum star rating"  minimum(1) maximum(5)
// @Param       max_rating  query  int     false "Maximum star rating"  minimum(1) maximum(5)
// @Param       limit       query  int     false "Visible page size"    minimum(0) maximum(500)
// @Param       offset      query  int     false "Rows to skip"         minimum(0)
//
// @Success     200  {object} handlers.DashboardResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /dashboard [get]
func (h *Handlers) Dashboard(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	snap, installed, err := h.dashSvc.Refresh(c.Request.Context(), f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, DashboardResponse{Snapshot: snap, Stale: !installed})
}
