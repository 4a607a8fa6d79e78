// Package htmlsanitize cleans chart markup before it is inlined into a page.
//
// The dashboard embeds the rendered vote chart directly in its HTML, where
// html/template cannot escape it. InlineSVG passes that markup through a
// bluemonday policy that only knows the elements and attributes the chart
// renderer emits, so anything else (scripts, event handlers, foreign
// elements) is dropped before it reaches the browser.
package htmlsanitize

import (
	"html/template"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	svgOnce   sync.Once
	svgPolicy *bluemonday.Policy
)

// Style values the chart renderer writes: colours, widths, font sizes and
// font-family lists.
var styleValue = regexp.MustCompile(`^[a-z0-9#(),.%' -]+$`)

func chartPolicy() *bluemonday.Policy {
	svgOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("svg", "path", "text", "circle")
		p.AllowAttrs("xmlns", "viewbox").OnElements("svg")
		p.AllowAttrs("d", "stroke-dasharray").OnElements("path")
		p.AllowAttrs("x", "y", "transform").OnElements("text")
		p.AllowAttrs("cx", "cy", "r").OnElements("circle")
		p.AllowStyles("stroke", "stroke-width", "fill", "font-size", "font-family").
			Matching(styleValue).
			OnElements("path", "text", "circle")
		svgPolicy = p
	})
	return svgPolicy
}

// InlineSVG sanitizes an SVG document for embedding in an HTML page.
// Text content keeps its escaping; unknown markup is removed.
func InlineSVG(svg string) template.HTML {
	if svg == "" {
		return ""
	}
	return template.HTML(chartPolicy().Sanitize(svg))
}
