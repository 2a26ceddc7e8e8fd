package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"nba-stats-explorer/src/models"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	defaultHeight   = 420
	minWidth        = 480
	barWidth        = 36
	barSpacing      = 12
	horizontalSlack = 140
)

// ChartRenderer draws aggregate views as SVG bar charts.
type ChartRenderer struct {
	Height int
}

// -----------------------------------------------------------------------------

func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{Height: defaultHeight}
}

// -----------------------------------------------------------------------------

// Render returns the SVG document of view. An empty view gives an empty
// frame carrying the title.
func (r *ChartRenderer) Render(view models.MAggregateView) (string, error) {
	if view.Empty() {
		return EmptyFrame(view.Title, minWidth, r.Height), nil
	}

	// go-chart writes text into the SVG verbatim
	bars := make([]chart.Value, len(view.Entries))
	top := 0.0
	for i, e := range view.Entries {
		bars[i] = chart.Value{Value: e.Value, Label: html.EscapeString(BarLabel(e))}
		top = math.Max(top, e.Value)
	}

	graph := chart.BarChart{
		Title:      html.EscapeString(view.Title),
		Width:      chartWidth(len(bars)),
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:  html.EscapeString(view.YLabel),
			Range: yRange(top),
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return "", fmt.Errorf("render %s: %w", view.Name, err)
	}
	return buf.String(), nil
}

// -----------------------------------------------------------------------------

// BarLabel names a bar "TM" or "TM POS", with the player for row views.
func BarLabel(e models.MAggregateEntry) string {
	label := e.Team
	if e.Pos != "" {
		label += " " + e.Pos
	}
	if e.Row != nil && e.Row.Player != "" {
		label += " (" + e.Row.Player + ")"
	}
	return label
}

// -----------------------------------------------------------------------------

// EmptyFrame is the SVG drawn for a view without groups.
func EmptyFrame(title string, width, height int) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect x="0.5" y="0.5" width="%d" height="%d" fill="#ffffff" stroke="#d0d0d0"/>`+
		`<text x="%d" y="28" text-anchor="middle" font-family="sans-serif" font-size="15">%s</text>`+
		`<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#888888">No data for the current selection</text>`+
		`</svg>`,
		width, height, width, height,
		width-1, height-1,
		width/2, html.EscapeString(title),
		width/2, height/2)
}

// -----------------------------------------------------------------------------

func chartWidth(bars int) int {
	w := bars*(barWidth+barSpacing) + horizontalSlack
	if w < minWidth {
		return minWidth
	}
	return w
}

// yRange starts at zero and leaves headroom above the tallest bar. A flat
// zero series still gets a non-empty range.
func yRange(top float64) *chart.ContinuousRange {
	if top <= 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}
