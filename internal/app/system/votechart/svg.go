package votechart

import (
	"errors"
	"html"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmpty is returned by RenderSVG for a chart without bars.
var ErrEmpty = errors.New("chart has no bars")

// Options controls SVG output. Zero fields take the defaults below.
type Options struct {
	Title    string
	Width    int
	Height   int
	BarWidth int
}

const (
	defaultWidth    = 640
	defaultHeight   = 360
	defaultBarWidth = 48
	barGap          = 24
	sidePadding     = 120
)

// RenderSVG draws the model as an SVG bar chart. The value axis always starts
// at zero; a chart whose counts are all zero gets a [0, 1] axis.
func RenderSVG(w io.Writer, m Model, opts Options) error {
	if m.Empty() {
		return ErrEmpty
	}

	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.BarWidth <= 0 {
		opts.BarWidth = defaultBarWidth
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if need := sidePadding + len(m.Values)*(opts.BarWidth+barGap); need > opts.Width {
		opts.Width = need
	}

	bars := make([]chart.Value, len(m.Values))
	for i, v := range m.Values {
		c := m.Colors[i]
		bars[i] = chart.Value{
			Label: m.Labels[i],
			Value: float64(v),
			Style: chart.Style{
				FillColor:   drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(fillAlpha * 255)},
				StrokeColor: drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(borderAlpha * 255)},
				StrokeWidth: borderWidth,
			},
		}
	}

	top := float64(m.MaxValue())
	if top <= 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   opts.BarWidth,
		BarSpacing: barGap,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  DatasetLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}
	return graph.Render(escapedSVG, w)
}

// escapedSVG is go-chart's SVG renderer with text escaping. go-chart writes
// text bodies verbatim, so a label such as "5 < 6" would otherwise produce
// malformed SVG, and a label carrying markup would be injected as-is.
func escapedSVG(width, height int) (chart.Renderer, error) {
	r, err := chart.SVG(width, height)
	if err != nil {
		return nil, err
	}
	return textEscaper{r}, nil
}

// textEscaper escapes after layout: measuring and word wrapping still see
// the raw label, so an entity is never split across lines.
type textEscaper struct {
	chart.Renderer
}

func (t textEscaper) Text(body string, x, y int) {
	t.Renderer.Text(html.EscapeString(body), x, y)
}
