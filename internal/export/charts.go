// Package export – chart rasterization.
//
// This file renders the two dashboard chart regions to PNG for embedding in
// the PDF report: the monthly rating trend line and the rating distribution
// bar chart. Rendering failures are returned to the caller, which isolates
// them per chart (a failed chart is skipped, the report completes).
package export

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/africanjoy/feedback-backend/internal/domain"
	"github.com/africanjoy/feedback-backend/internal/stats"
)

// Brand color used across charts and the report header (RGB 55,117,54).
var brandColor = drawing.Color{R: 55, G: 117, B: 54, A: 255}

// Default raster size, a 2:1 landscape that scales cleanly to page width.
const (
	chartWidth  = 1200
	chartHeight = 600
)

// RenderTrendLine draws the monthly average-rating series as a line chart.
// Returns ErrNoData when fewer than two months exist (a line needs two
// points).
func RenderTrendLine(series []domain.MonthlyRating) ([]byte, error) {
	if len(series) < 2 {
		return nil, ErrNoData
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	ticks := make([]chart.Tick, len(series))
	for i, p := range series {
		xs[i] = float64(i)
		ys[i] = p.AvgRating
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Month}
	}

	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: float64(stats.MinRating) - 1,
				Max: float64(stats.MaxRating),
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Average rating",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: brandColor,
					StrokeWidth: 3,
					DotColor:    brandColor,
					DotWidth:    5,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDistributionBars draws the fixed-domain rating histogram as a bar
// chart, bars ordered 5..1 left to right. Returns ErrNoData when every
// bucket is zero (go-chart cannot scale an empty range).
func RenderDistributionBars(dist []domain.RatingBucket) ([]byte, error) {
	var total int64
	bars := make([]chart.Value, 0, len(dist))
	for _, b := range dist {
		total += b.Count
		label := fmt.Sprintf("%d Star", b.Rating)
		if b.Rating != 1 {
			label += "s"
		}
		bars = append(bars, chart.Value{
			Value: float64(b.Count),
			Label: label,
			Style: chart.Style{FillColor: brandColor, StrokeColor: brandColor},
		})
	}
	if total == 0 {
		return nil, ErrNoData
	}

	graph := chart.BarChart{
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 120,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render distribution chart: %w", err)
	}
	return buf.Bytes(), nil
}
