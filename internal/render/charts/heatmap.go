package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ecommerce-eda/internal/models"
)

const (
	cellSize      = 110
	heatmapLeft   = 100
	heatmapTop    = 60
	heatmapBottom = 40
)

var (
	coldColor    = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	neutralColor = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	warmColor    = drawing.Color{R: 180, G: 4, B: 38, A: 255}
)

// heatmapFigure draws the correlation matrix as a grid of coloured cells,
// each annotated with its coefficient. Undefined coefficients are grey and
// read "nan".
func heatmapFigure(m models.CorrelationMatrix) figure {
	return figure{name: "correlation_heatmap", render: func(w io.Writer) error {
		return renderHeatmap(w, m)
	}}
}

func renderHeatmap(w io.Writer, m models.CorrelationMatrix) error {
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	n := len(m.Columns)
	width := heatmapLeft + n*cellSize + 20
	height := heatmapTop + n*cellSize + heatmapBottom
	r, err := chart.PNG(width, height)
	if err != nil {
		return err
	}
	r.SetFont(font)

	fillRect(r, 0, 0, width, height, drawing.ColorWhite)

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(14)
	centerText(r, "Correlation Heatmap", width/2, 32)

	r.SetFontSize(10)
	for i, row := range m.Columns {
		y := heatmapTop + i*cellSize
		label := r.MeasureText(row)
		r.SetFontColor(drawing.ColorBlack)
		r.Text(row, heatmapLeft-label.Width()-8, y+cellSize/2+label.Height()/2)

		for j := range m.Columns {
			v := cell(m.Values, i, j)
			x := heatmapLeft + j*cellSize
			fillRect(r, x, y, x+cellSize, y+cellSize, heatColor(v))

			text := "nan"
			if !math.IsNaN(v) {
				text = fmt.Sprintf("%.2f", v)
			}
			r.SetFontColor(drawing.ColorBlack)
			if math.Abs(v) > 0.6 {
				r.SetFontColor(drawing.ColorWhite)
			}
			centerText(r, text, x+cellSize/2, y+cellSize/2)
		}
	}

	r.SetFontColor(drawing.ColorBlack)
	for j, col := range m.Columns {
		centerText(r, col, heatmapLeft+j*cellSize+cellSize/2, heatmapTop+n*cellSize+20)
	}

	return r.Save(w)
}

func cell(values [][]float64, i, j int) float64 {
	if i < len(values) && j < len(values[i]) {
		return values[i][j]
	}
	return math.NaN()
}

// heatColor maps a coefficient in [-1, 1] onto a diverging blue to red
// palette. NaN is silver.
func heatColor(v float64) drawing.Color {
	if math.IsNaN(v) {
		return drawing.ColorSilver
	}
	v = max(-1, min(1, v))
	if v < 0 {
		return blend(neutralColor, coldColor, -v)
	}
	return blend(neutralColor, warmColor, v)
}

func blend(from, to drawing.Color, t float64) drawing.Color {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
	}
	return drawing.Color{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 255}
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.SetFillColor(c)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}

// centerText draws body centred on (x, y).
func centerText(r chart.Renderer, body string, x, y int) {
	b := r.MeasureText(body)
	r.Text(body, x-b.Width()/2, y+b.Height()/2)
}
