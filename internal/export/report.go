// Package export – PDF report.
//
// This file composes the multi-page branded analytics report: header band,
// summary statistics table, rating distribution table, rasterized chart
// images, detailed feedback table, and a running footer with pagination.
// Section order is fixed; sections start a new page when insufficient
// vertical space remains. Missing inputs degrade section by section (a nil
// stats row skips the sections that need it) rather than failing the export.
package export

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// Branding parameterizes the report header and footer.
type Branding struct {
	Name         string
	Subtitle     string
	DashboardURL string // when set, a QR code linking here joins the header
}

// ReportInput is everything the report needs, already fetched and rendered.
// Chart fields hold PNG bytes and may be nil; each missing chart is skipped
// independently.
type ReportInput struct {
	Records      []domain.Feedback
	Stats        *domain.DashboardStats
	Distribution []domain.RatingBucket
	TrendChart   []byte
	DistChart    []byte
	GeneratedAt  time.Time
}

// Layout constants, all in millimeters on A4 portrait.
const (
	marginLeft   = 14.0
	marginRight  = 14.0
	headerBandH  = 40.0
	lineH        = 6.0
	imgMaxHeight = 80.0
	// New-page thresholds: remaining space needed before starting a table
	// section or embedding a second chart on the same page.
	tableBreakAt = 80.0
	chartBreakAt = 100.0
)

// Brand fill in RGB, matching the chart stroke color.
var brandRGB = [3]int{55, 117, 54}

// DefaultReportFilename returns feedback-report-<yyyy-MM-dd>.pdf for the
// given day.
func DefaultReportFilename(now time.Time) string {
	return "feedback-report-" + now.Format("2006-01-02") + ".pdf"
}

// Report renders the full PDF and returns its bytes. Only document
// finalization can fail; every embedded artifact degrades softly upstream.
func Report(in ReportInput, brand Branding) ([]byte, error) {
	w := newReportWriter(brand)
	w.headerBand(in.GeneratedAt)
	w.summarySection(in.Stats)
	w.distributionSection(in.Distribution, in.Stats)
	w.chartsSection(in.DistChart, in.TrendChart)
	w.detailSection(in.Records)

	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("finalize report: %w", err)
	}
	return buf.Bytes(), nil
}

// reportWriter tracks the document and its vertical cursor.
type reportWriter struct {
	pdf    *gofpdf.Fpdf
	brand  Branding
	pageW  float64
	pageH  float64
	y      float64
	images int
}

func newReportWriter(brand Branding) *reportWriter {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	w := &reportWriter{pdf: pdf, brand: brand}
	w.pageW, w.pageH = pdf.GetPageSize()

	// Footer stamped on every page: confidentiality label left, running
	// pagination right.
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.Text(marginLeft, w.pageH-10, brand.Name+" - Confidential Report")
		pdf.Text(w.pageW-35, w.pageH-10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()))
	})

	pdf.AddPage()
	return w
}

// contentWidth is the usable width between margins.
func (w *reportWriter) contentWidth() float64 { return w.pageW - marginLeft - marginRight }

// newPage starts a fresh page and resets the cursor.
func (w *reportWriter) newPage() {
	w.pdf.AddPage()
	w.y = 20
}

// breakBefore starts a new page when less than need mm remain.
func (w *reportWriter) breakBefore(need float64) {
	if w.y > w.pageH-need {
		w.newPage()
	}
}

// headerBand draws the branded band across the top of the first page.
func (w *reportWriter) headerBand(generated time.Time) {
	pdf := w.pdf

	pdf.SetFillColor(brandRGB[0], brandRGB[1], brandRGB[2])
	pdf.Rect(0, 0, w.pageW, headerBandH, "F")

	// Milk bottle glyph.
	pdf.SetFillColor(255, 255, 255)
	pdf.RoundedRect(15, 10, 8, 12, 1, "1234", "F")
	pdf.Rect(16.5, 8, 5, 3, "F")
	pdf.SetFillColor(brandRGB[0], brandRGB[1], brandRGB[2])
	pdf.Rect(16, 18, 6, 4, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(30, 20, w.brand.Name)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(30, 28, w.brand.Subtitle)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(30, 34, "Generated: "+generated.Format("January 2, 2006"))

	// Scan-to-dashboard QR code in the band's right corner. Encoding only
	// fails on oversized input; a failure just drops the code.
	if w.brand.DashboardURL != "" {
		if qr, err := qrcode.Encode(w.brand.DashboardURL, qrcode.Medium, 256); err == nil {
			w.embedPNG(qr, w.pageW-marginRight-24, 8, 24, 24)
		}
	}

	w.y = 50
	pdf.SetTextColor(0, 0, 0)
}

// sectionTitle writes a brand-colored heading and advances the cursor.
func (w *reportWriter) sectionTitle(title string) {
	w.pdf.SetFont("Helvetica", "B", 16)
	w.pdf.SetTextColor(brandRGB[0], brandRGB[1], brandRGB[2])
	w.pdf.Text(marginLeft, w.y, title)
	w.pdf.SetTextColor(0, 0, 0)
	w.y += 10
}

// summarySection renders the four headline metrics. Skipped when no stats
// row is available.
func (w *reportWriter) summarySection(stats *domain.DashboardStats) {
	if stats == nil {
		return
	}
	w.sectionTitle("Summary Statistics")

	rows := [][]string{
		{"Total Reviews", fmt.Sprintf("%d", stats.TotalReviews)},
		{"Average Rating", fmt.Sprintf("%.2f / 5.0", stats.AverageRating)},
		{"5-Star Reviews", fmt.Sprintf("%.0f%%", stats.FiveStarPercentage)},
		{"Trend", fmt.Sprintf("%+.1f%%", stats.Trend)},
	}
	w.table([]float64{90, 92}, []string{"Metric", "Value"}, rows, 11)
	w.y += 15
}

// distributionSection renders one row per bucket with its share of the
// total. The percentage denominator comes from the stats row, so the whole
// section is skipped when stats is nil or empty.
func (w *reportWriter) distributionSection(dist []domain.RatingBucket, stats *domain.DashboardStats) {
	if len(dist) == 0 || stats == nil || stats.TotalReviews == 0 {
		return
	}
	w.breakBefore(tableBreakAt)
	w.sectionTitle("Rating Distribution")

	rows := make([][]string, 0, len(dist))
	for _, b := range dist {
		label := fmt.Sprintf("%d Star", b.Rating)
		if b.Rating != 1 {
			label += "s"
		}
		pct := float64(b.Count) / float64(stats.TotalReviews) * 100
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%d", b.Count),
			fmt.Sprintf("%.1f%%", pct),
		})
	}
	w.table([]float64{62, 60, 60}, []string{"Rating", "Count", "Percentage"}, rows, 11)
	w.y += 15
}

// chartsSection embeds the rasterized chart images on their own page,
// distribution first, each independently optional.
func (w *reportWriter) chartsSection(distChart, trendChart []byte) {
	if len(distChart) == 0 && len(trendChart) == 0 {
		return
	}
	w.newPage()
	w.sectionTitle("Visual Analytics")

	if len(distChart) > 0 {
		w.chartImage("Rating Distribution Chart", distChart)
	}
	if len(trendChart) > 0 {
		w.breakBefore(chartBreakAt)
		w.chartImage("Rating Trend Chart", trendChart)
	}
}

// chartImage captions and embeds one chart, scaled to the content width
// with its height capped.
func (w *reportWriter) chartImage(caption string, data []byte) {
	w.pdf.SetFont("Helvetica", "", 11)
	w.pdf.Text(marginLeft, w.y, caption)
	w.y += 5

	imgW := w.contentWidth()
	imgH := imgMaxHeight
	if cfg, err := png.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width > 0 {
		if natural := float64(cfg.Height) * imgW / float64(cfg.Width); natural < imgH {
			imgH = natural
		}
	}
	w.embedPNG(data, marginLeft, w.y, imgW, imgH)
	w.y += imgH + 15
}

// embedPNG registers raw PNG bytes under a fresh name and places them.
func (w *reportWriter) embedPNG(data []byte, x, y, wd, ht float64) {
	w.images++
	name := fmt.Sprintf("img%d", w.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	w.pdf.ImageOptions(name, x, y, wd, ht, false, opts, 0, "")
}

// detailSection renders every record on its own page sequence, wrapping
// long comments inside a wide final column.
func (w *reportWriter) detailSection(records []domain.Feedback) {
	if len(records) == 0 {
		return
	}
	w.newPage()
	w.sectionTitle("Detailed Feedback")

	widths := []float64{25, 30, 30, 15, 82}
	header := []string{"Date", "Name", "Location", "Rating", "Feedback"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CreatedAt.Format("Jan 02, 2006"),
			orDefault(r.Name, csvAnonymous),
			orDefault(r.Location, "N/A"),
			fmt.Sprintf("%d", r.Rating),
			orDefault(r.Comment, "No comment"),
		})
	}
	w.table(widths, header, rows, 9)
}

// table draws a grid table at the cursor: brand-filled header row, bordered
// body rows with per-cell wrapping, page breaks mid-table re-emit the
// header.
func (w *reportWriter) table(widths []float64, header []string, rows [][]string, fontSize float64) {
	w.tableHeader(widths, header, fontSize)
	for _, row := range rows {
		w.tableRow(widths, header, row, fontSize)
	}
}

func (w *reportWriter) tableHeader(widths []float64, header []string, fontSize float64) {
	pdf := w.pdf
	pdf.SetFont("Helvetica", "B", fontSize)
	pdf.SetFillColor(brandRGB[0], brandRGB[1], brandRGB[2])
	pdf.SetTextColor(255, 255, 255)

	x := marginLeft
	for i, h := range header {
		pdf.Rect(x, w.y, widths[i], lineH, "F")
		pdf.Text(x+2, w.y+lineH-1.8, h)
		x += widths[i]
	}
	w.y += lineH
	pdf.SetTextColor(0, 0, 0)
}

func (w *reportWriter) tableRow(widths []float64, header, row []string, fontSize float64) {
	pdf := w.pdf
	pdf.SetFont("Helvetica", "", fontSize)

	// Wrap each cell and size the row by its tallest cell.
	lines := make([][]string, len(row))
	maxLines := 1
	for i, cell := range row {
		lines[i] = pdf.SplitText(cell, widths[i]-4)
		if len(lines[i]) > maxLines {
			maxLines = len(lines[i])
		}
	}
	rowH := float64(maxLines) * lineH

	if w.y+rowH > w.pageH-20 {
		w.newPage()
		w.tableHeader(widths, header, fontSize)
		pdf.SetFont("Helvetica", "", fontSize)
	}

	x := marginLeft
	for i := range row {
		pdf.Rect(x, w.y, widths[i], rowH, "D")
		for j, ln := range lines[i] {
			pdf.Text(x+2, w.y+lineH*float64(j)+lineH-1.8, ln)
		}
		x += widths[i]
	}
	w.y += rowH
}
