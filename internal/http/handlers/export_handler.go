// Export HTTP handlers.
//
// This file exposes the dashboard's download endpoints:
//   - GET /export/csv  (raw review data, RFC 4180)
//   - GET /export/pdf  (branded multi-page report)
//
// Both accept the shared filter query parameters and operate on the whole
// filtered set, never a page. An empty result set is a 404 with code
// "no_data": no empty files are ever produced. Chart rendering inside the
// PDF is fail-soft per chart; the report itself failing to finalize is a
// 500 with code "export_failed".
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/export"
	"github.com/africanjoy/feedback-backend/internal/http/middleware"
	"github.com/africanjoy/feedback-backend/internal/stats"
	"github.com/africanjoy/feedback-backend/internal/store"
)

// ExportDeps carries what the export endpoints need: the record store for
// raw data and the brand identity stamped onto reports.
type ExportDeps struct {
	Store *store.Client
	Brand export.Branding
}

// ExportCSV godoc
// @ID          exportCSV
// @Summary     Download reviews as CSV
// @Description Streams all reviews matching the filter as a CSV attachment. Returns 404 when nothing matches.
// @Tags        Export
// @Produce     text/csv
//
// @Param       start_date  query  string  false "Lower creation bound (YYYY-MM-DD or RFC 3339)"
// @Param       end_date    query  string  false "Upper creation bound (inclusive)"
// @Param       min_rating  query  int     false "Minimum star rating"  minimum(1) maximum(5)
// @Param       max_rating  query  int     false "Maximum star rating"  minimum(1) maximum(5)
//
// @Success     200  {string} string "CSV payload"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Failure     404  {object} handlers.ErrorResponse "No matching reviews"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /export/csv [get]
func (h *Handlers) ExportCSV(c *gin.Context) {
	records, failed := h.exportRecords(c)
	if failed {
		return
	}

	payload, err := export.CSV(records)
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			fail(c, http.StatusNotFound, ErrCodeNoData, "no feedback records to export")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}

	name := export.DefaultCSVFilename(time.Now().UTC())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ExportPDF godoc
// @ID          exportPDF
// @Summary     Download the branded PDF report
// @Description Builds the multi-page report (header band, summary, distribution, charts, detail table) over all reviews matching the filter.
// @Tags        Export
// @Produce     application/pdf
//
// @Param       start_date  query  string  false "Lower creation bound (YYYY-MM-DD or RFC 3339)"
// @Param       end_date    query  string  false "Upper creation bound (inclusive)"
// @Param       min_rating  query  int     false "Minimum star rating"  minimum(1) maximum(5)
// @Param       max_rating  query  int     false "Maximum star rating"  minimum(1) maximum(5)
//
// @Success     200  {string} string "PDF payload"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Failure     404  {object} handlers.ErrorResponse "No matching reviews"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /export/pdf [get]
func (h *Handlers) ExportPDF(c *gin.Context) {
	records, failed := h.exportRecords(c)
	if failed {
		return
	}
	if len(records) == 0 {
		fail(c, http.StatusNotFound, ErrCodeNoData, "no feedback records to export")
		return
	}

	st := stats.Compute(records)
	in := export.ReportInput{
		Records:      records,
		Stats:        &st,
		Distribution: stats.Distribution(records),
		GeneratedAt:  time.Now().UTC(),
	}

	// Charts are fail-soft: a render failure drops that chart from the
	// report, it never fails the export.
	lg := middleware.LoggerFrom(c)
	if series, err := h.exp.Store.FetchRatingsOverTime(c.Request.Context()); err != nil {
		lg.Warn().Err(err).Msg("report: monthly series unavailable")
	} else if png, err := export.RenderTrendLine(series); err != nil {
		lg.Warn().Err(err).Msg("report: trend chart skipped")
	} else {
		in.TrendChart = png
	}
	if png, err := export.RenderDistributionBars(in.Distribution); err != nil {
		lg.Warn().Err(err).Msg("report: distribution chart skipped")
	} else {
		in.DistChart = png
	}

	payload, err := export.Report(in, h.exp.Brand)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}

	name := export.DefaultReportFilename(time.Now().UTC())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// exportRecords parses the filter and fetches the whole matching set for an
// export, writing the error response itself on failure.
func (h *Handlers) exportRecords(c *gin.Context) ([]domain.Feedback, bool) {
	f, err := parseFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return nil, true
	}
	// Exports cover the full filtered set.
	f.Limit = 0
	f.Offset = 0

	records, err := h.exp.Store.FetchFeedback(c.Request.Context(), f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return nil, true
	}
	return records, false
}
