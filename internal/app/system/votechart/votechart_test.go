package votechart

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dalemusser/surveydash/internal/domain/models"
)

func petChoices() []models.Choice {
	return []models.Choice{
		{ID: 100, Text: "Dog", QuestionID: 10, Votes: 5},
		{ID: 101, Text: "Cat", QuestionID: 10, Votes: 7},
		{ID: 103, Text: "Fish", QuestionID: 10, Votes: 0},
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	m := Build(petChoices())

	wantLabels := []string{"Dog", "Cat", "Fish"}
	wantValues := []int{5, 7, 0}
	if len(m.Labels) != len(wantLabels) {
		t.Fatalf("labels: got %v, want %v", m.Labels, wantLabels)
	}
	for i := range wantLabels {
		if m.Labels[i] != wantLabels[i] {
			t.Errorf("label %d: got %q, want %q", i, m.Labels[i], wantLabels[i])
		}
		if m.Values[i] != wantValues[i] {
			t.Errorf("value %d: got %d, want %d", i, m.Values[i], wantValues[i])
		}
	}
	if m.MaxValue() != 7 {
		t.Errorf("MaxValue: got %d, want 7", m.MaxValue())
	}
}

func TestBuild_Empty(t *testing.T) {
	m := Build(nil)
	if !m.Empty() {
		t.Fatalf("Build(nil) should be empty")
	}
	if m.MaxValue() != 0 {
		t.Errorf("MaxValue: got %d, want 0", m.MaxValue())
	}
}

func TestColorAt_Cycles(t *testing.T) {
	if ColorAt(0) != Palette[0] {
		t.Errorf("ColorAt(0): got %v, want %v", ColorAt(0), Palette[0])
	}
	if ColorAt(6) != Palette[0] {
		t.Errorf("ColorAt(6): got %v, want %v", ColorAt(6), Palette[0])
	}
	if ColorAt(7) != Palette[1] {
		t.Errorf("ColorAt(7): got %v, want %v", ColorAt(7), Palette[1])
	}

	choices := make([]models.Choice, 8)
	m := Build(choices)
	if m.Colors[6] != m.Colors[0] || m.Colors[7] != m.Colors[1] {
		t.Errorf("colors should repeat after %d bars: %v", len(Palette), m.Colors)
	}
}

func TestChartJS(t *testing.T) {
	cfg := Build(petChoices()).ChartJS()

	if cfg.Type != "bar" {
		t.Errorf("type: got %q, want bar", cfg.Type)
	}
	if !cfg.Options.Scales.Y.BeginAtZero {
		t.Errorf("beginAtZero should be true")
	}
	if len(cfg.Data.Datasets) != 1 {
		t.Fatalf("datasets: got %d, want 1", len(cfg.Data.Datasets))
	}
	ds := cfg.Data.Datasets[0]
	if ds.Label != DatasetLabel {
		t.Errorf("dataset label: got %q, want %q", ds.Label, DatasetLabel)
	}
	if ds.BorderWidth != 1 {
		t.Errorf("borderWidth: got %d, want 1", ds.BorderWidth)
	}
	if ds.BackgroundColor[0] != "rgba(255, 99, 132, 0.2)" {
		t.Errorf("background[0]: got %q", ds.BackgroundColor[0])
	}
	if ds.BorderColor[1] != "rgba(54, 162, 235, 1)" {
		t.Errorf("border[1]: got %q", ds.BorderColor[1])
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"beginAtZero":true`) {
		t.Errorf("json missing beginAtZero: %s", raw)
	}
}

func TestChartJS_EmptyUsesArrays(t *testing.T) {
	raw, err := json.Marshal(Build(nil).ChartJS())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"labels":[]`) || !strings.Contains(string(raw), `"data":[]`) {
		t.Errorf("empty chart should encode empty arrays: %s", raw)
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSVG(&buf, Build(petChoices()), Options{Title: "Favorite pet?"}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Errorf("output is not svg: %.80s", out)
	}
	for _, label := range []string{"Dog", "Cat", "Fish"} {
		if !strings.Contains(out, label) {
			t.Errorf("svg missing label %q", label)
		}
	}
}

func TestRenderSVG_EscapesText(t *testing.T) {
	choices := []models.Choice{
		{Text: "<img src=x onerror=alert(1)>", Votes: 1},
		{Text: "5 < 6", Votes: 2},
		{Text: "Rock & Roll", Votes: 3},
	}
	var buf bytes.Buffer
	if err := RenderSVG(&buf, Build(choices), Options{Title: "<b>t</b>", BarWidth: 200}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := buf.String()

	for _, raw := range []string{"<img", "<b>", "5 < 6", "Rock & Roll"} {
		if strings.Contains(out, raw) {
			t.Errorf("svg contains unescaped %q", raw)
		}
	}
	for _, esc := range []string{"&lt;img", "&lt;b&gt;t&lt;/b&gt;", "5 &lt; 6", "Rock &amp; Roll"} {
		if !strings.Contains(out, esc) {
			t.Errorf("svg missing escaped %q", esc)
		}
	}

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("svg is not well-formed XML: %v", err)
		}
	}
}

func TestRenderSVG_AllZeroVotes(t *testing.T) {
	choices := []models.Choice{{Text: "A"}, {Text: "B"}}
	var buf bytes.Buffer
	if err := RenderSVG(&buf, Build(choices), Options{}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
}

func TestRenderSVG_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSVG(&buf, Build(nil), Options{})
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("err: got %v, want ErrEmpty", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty chart wrote %d bytes", buf.Len())
	}
}
