// Package export turns feedback snapshots into downloadable artifacts: a
// delimited CSV of raw records and a branded, paginated PDF report. Both
// exporters are pure over their inputs; fetching and HTTP delivery live in
// the service and handler layers.
package export

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// ErrNoData is returned when an export is requested over an empty snapshot.
// No artifact is produced; callers surface a "nothing to export" notice.
var ErrNoData = errors.New("no feedback records to export")

// Placeholder values for absent optional fields.
const (
	csvAnonymous = "Anonymous"
	csvUnknown   = "Unknown"
)

const csvTimeLayout = "2006-01-02 15:04:05"

// CSV serializes records to delimited text with the fixed header
// Date,Name,Location,Rating,Type,Feedback. Only the free-text feedback field
// is quoted (with internal quotes doubled); an absent comment renders as an
// empty field. Absent name/location render as Anonymous/Unknown.
func CSV(records []domain.Feedback) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	var b strings.Builder
	b.WriteString("Date,Name,Location,Rating,Type,Feedback")

	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(r.CreatedAt.Format(csvTimeLayout))
		b.WriteByte(',')
		b.WriteString(orDefault(r.Name, csvAnonymous))
		b.WriteByte(',')
		b.WriteString(orDefault(r.Location, csvUnknown))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(r.Rating))
		b.WriteByte(',')
		b.WriteString(r.RatingType)
		b.WriteByte(',')
		if r.Comment != nil {
			b.WriteString(quoteField(*r.Comment))
		}
	}

	return []byte(b.String()), nil
}

// DefaultCSVFilename returns feedback-export-<yyyy-MM-dd>.csv for the given
// day.
func DefaultCSVFilename(now time.Time) string {
	return "feedback-export-" + now.Format("2006-01-02") + ".csv"
}

// orDefault dereferences an optional field, falling back when absent.
func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// quoteField wraps s in double quotes with internal quotes doubled
// (RFC 4180 escaping, applied to the feedback column only).
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
