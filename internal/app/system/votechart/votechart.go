// Package votechart turns the choices of one question into a bar chart of
// vote counts.
//
// Build produces the chart model: one category per choice in the order the
// choices were given, one series of vote counts, and colors taken from a
// fixed six-entry palette that repeats when there are more bars than colors.
// The model can be handed to Chart.js in the browser (ChartJS) or drawn on
// the server as SVG (RenderSVG).
package votechart

import (
	"fmt"

	"github.com/dalemusser/surveydash/internal/domain/models"
)

// DatasetLabel names the single data series.
const DatasetLabel = "# of Votes"

// Fill and border alpha, and border width, of every bar.
const (
	fillAlpha   = 0.2
	borderAlpha = 1.0
	borderWidth = 1
)

// RGB is an opaque palette color.
type RGB struct {
	R, G, B uint8
}

// CSS formats the color as rgba() with the given alpha.
func (c RGB) CSS(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}

// Palette is the bar color cycle: red, blue, yellow, green, purple, orange.
var Palette = [...]RGB{
	{255, 99, 132},
	{54, 162, 235},
	{255, 206, 86},
	{75, 192, 192},
	{153, 102, 255},
	{255, 159, 64},
}

// ColorAt returns the palette color for the bar at index i.
func ColorAt(i int) RGB {
	return Palette[i%len(Palette)]
}

// Model is a vertical bar chart of vote counts.
type Model struct {
	Labels []string
	Values []int
	Colors []RGB
}

// Build creates the chart model for choices. A nil slice yields an empty
// chart.
func Build(choices []models.Choice) Model {
	m := Model{
		Labels: make([]string, 0, len(choices)),
		Values: make([]int, 0, len(choices)),
		Colors: make([]RGB, 0, len(choices)),
	}
	for i, c := range choices {
		m.Labels = append(m.Labels, c.Text)
		m.Values = append(m.Values, c.Votes)
		m.Colors = append(m.Colors, ColorAt(i))
	}
	return m
}

// Empty reports whether the chart has no bars.
func (m Model) Empty() bool {
	return len(m.Labels) == 0
}

// MaxValue returns the largest vote count, or 0 for an empty chart.
func (m Model) MaxValue() int {
	max := 0
	for _, v := range m.Values {
		if v > max {
			max = v
		}
	}
	return max
}

// ChartJSConfig is the configuration object passed to `new Chart(ctx, cfg)`.
type ChartJSConfig struct {
	Type    string         `json:"type"`
	Data    ChartJSData    `json:"data"`
	Options ChartJSOptions `json:"options"`
}

// ChartJSData holds the categories and the single dataset.
type ChartJSData struct {
	Labels   []string         `json:"labels"`
	Datasets []ChartJSDataset `json:"datasets"`
}

// ChartJSDataset is one bar series.
type ChartJSDataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor"`
	BorderColor     []string `json:"borderColor"`
	BorderWidth     int      `json:"borderWidth"`
}

// ChartJSOptions pins the value axis to start at zero.
type ChartJSOptions struct {
	Scales ChartJSScales `json:"scales"`
}

// ChartJSScales configures the chart axes.
type ChartJSScales struct {
	Y ChartJSAxis `json:"y"`
}

// ChartJSAxis configures one axis.
type ChartJSAxis struct {
	BeginAtZero bool `json:"beginAtZero"`
}

// ChartJS returns the Chart.js configuration for the model.
func (m Model) ChartJS() ChartJSConfig {
	bg := make([]string, len(m.Colors))
	border := make([]string, len(m.Colors))
	for i, c := range m.Colors {
		bg[i] = c.CSS(fillAlpha)
		border[i] = c.CSS(borderAlpha)
	}

	labels := m.Labels
	if labels == nil {
		labels = []string{}
	}
	values := m.Values
	if values == nil {
		values = []int{}
	}

	return ChartJSConfig{
		Type: "bar",
		Data: ChartJSData{
			Labels: labels,
			Datasets: []ChartJSDataset{{
				Label:           DatasetLabel,
				Data:            values,
				BackgroundColor: bg,
				BorderColor:     border,
				BorderWidth:     borderWidth,
			}},
		},
		Options: ChartJSOptions{
			Scales: ChartJSScales{Y: ChartJSAxis{BeginAtZero: true}},
		},
	}
}
