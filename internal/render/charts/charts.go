// Package charts draws the report's figures as PNG files.
package charts

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"ecommerce-eda/internal/models"
)

const (
	renderLimit = 4
	height      = 480
	barWidth    = 40
	barSpacing  = 20
)

var (
	trendColor   = chart.ColorGreen
	densityColor = chart.ColorBlue
	pairColor    = chart.ColorBlue.WithAlpha(160)
)

type figure struct {
	name   string
	render func(io.Writer) error
}

// Write renders every figure the report supports into dir, creating it if
// needed, and returns the written paths in sorted order. Figures that need
// more data than the report holds are skipped: bar charts and the heatmap
// need some data, the trend needs two dates, a density needs a nonzero
// spread and scatter panels need two sampled rows.
func Write(ctx context.Context, dir string, report *models.Report) ([]string, error) {
	if report == nil {
		return nil, fmt.Errorf("write charts: nil report")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	figs := figures(report)
	paths := make([]string, len(figs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(renderLimit)
	for i, fig := range figs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, fig.name+".png")
			if err := writeFile(path, fig.render); err != nil {
				return fmt.Errorf("render %s: %w", fig.name, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(paths)
	return paths, nil
}

// figures lists the charts report can support, keyed by file stem.
func figures(report *models.Report) []figure {
	var figs []figure

	if len(report.CategoryCounts) > 0 {
		values := make([]chart.Value, len(report.CategoryCounts))
		for i, c := range report.CategoryCounts {
			values[i] = chart.Value{Label: c.Key, Value: float64(c.Count)}
		}
		figs = append(figs, barFigure("category_counts", "Category Distribution", values))
	}

	for _, rollup := range []struct {
		name, title string
		totals      []models.KeyTotal
	}{
		{"revenue_by_category", "Revenue by Product Category", report.RevenueByCategory},
		{"revenue_by_region", "Revenue by Region", report.RevenueByRegion},
		{"revenue_by_payment_method", "Revenue by Payment Method", report.RevenueByPayment},
	} {
		if len(rollup.totals) == 0 {
			continue
		}
		values := make([]chart.Value, len(rollup.totals))
		for i, t := range rollup.totals {
			values[i] = chart.Value{Label: t.Key, Value: t.Revenue}
		}
		figs = append(figs, barFigure(rollup.name, rollup.title, values))
	}

	if len(report.RevenueTrend) >= 2 {
		figs = append(figs, trendFigure(report.RevenueTrend))
	}

	for _, d := range report.Densities {
		if len(d.X) < 2 || d.X[0] == d.X[len(d.X)-1] {
			continue
		}
		figs = append(figs, densityFigure(d))
	}

	if report.Correlation.Outcome != models.OutcomeUndefined && len(report.Correlation.Columns) > 0 {
		figs = append(figs, heatmapFigure(report.Correlation))
	}

	// Lower triangle only: each unordered pair of columns is drawn once.
	sample := report.Sample
	for i := range sample.Columns {
		for j := range i {
			if i >= len(sample.Values) || len(sample.Values[i]) < 2 {
				continue
			}
			figs = append(figs, pairFigure(sample.Columns[j], sample.Columns[i], sample.Values[j], sample.Values[i]))
		}
	}

	return figs
}

func barFigure(name, title string, values []chart.Value) figure {
	ys := make([]float64, len(values))
	for i, v := range values {
		ys[i] = v.Value
	}
	bc := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Width:      max(640, 120+len(values)*(barWidth+barSpacing)),
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis:      chart.YAxis{Range: paddedRange(ys, true)},
		Bars:       values,
	}
	return figure{name: name, render: func(w io.Writer) error { return bc.Render(chart.PNG, w) }}
}

func trendFigure(trend []models.DateTotal) figure {
	xs := make([]time.Time, len(trend))
	ys := make([]float64, len(trend))
	for i, d := range trend {
		xs[i] = d.Date
		ys[i] = d.Revenue
	}
	ch := chart.Chart{
		Title:      "Revenue Trend Over Time",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Width:      960,
		Height:     height,
		XAxis:      chart.XAxis{Name: "Date", ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      chart.YAxis{Name: "Revenue", Range: paddedRange(ys, false)},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Revenue",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: trendColor,
					StrokeWidth: 2,
					DotColor:    trendColor,
					DotWidth:    3,
				},
			},
		},
	}
	return figure{name: "revenue_trend", render: func(w io.Writer) error { return ch.Render(chart.PNG, w) }}
}

func densityFigure(d models.DensityCurve) figure {
	ch := chart.Chart{
		Title:      "Density of " + d.Column,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Width:      640,
		Height:     height,
		XAxis:      chart.XAxis{Name: d.Column},
		YAxis:      chart.YAxis{Name: "Density", Range: paddedRange(d.Y, true)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    d.Column,
				XValues: d.X,
				YValues: d.Y,
				Style: chart.Style{
					StrokeColor: densityColor,
					StrokeWidth: 2,
					FillColor:   densityColor.WithAlpha(64),
				},
			},
		},
	}
	return figure{name: "density_" + d.Column, render: func(w io.Writer) error { return ch.Render(chart.PNG, w) }}
}

// pairFigure is one scatter panel of the pair plot, x against y.
func pairFigure(xName, yName string, xs, ys []float64) figure {
	ch := chart.Chart{
		Title:      yName + " vs " + xName,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		Width:      640,
		Height:     height,
		XAxis:      chart.XAxis{Name: xName, Range: paddedRange(xs, false)},
		YAxis:      chart.YAxis{Name: yName, Range: paddedRange(ys, false)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    yName,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    pairColor,
				},
			},
		},
	}
	return figure{name: "pair_" + xName + "_" + yName, render: func(w io.Writer) error { return ch.Render(chart.PNG, w) }}
}

// paddedRange returns a y range with a little headroom. go-chart refuses to
// draw a zero-height range, so flat data gets one unit either side.
func paddedRange(ys []float64, fromZero bool) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		lo, hi = min(lo, y), max(hi, y)
	}
	if lo > hi {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if fromZero {
		lo, hi = min(lo, 0), max(hi, 0)
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.1
	if fromZero && lo == 0 {
		return &chart.ContinuousRange{Min: 0, Max: hi + pad}
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}
