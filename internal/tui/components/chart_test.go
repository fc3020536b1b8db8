package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0.5, "$0.50"},
		{20, "$20"},
		{1000, "$1k"},
		{1500, "$1.5k"},
		{2e6, "$2M"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.v); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max, want float64
	}{
		{0, 1},
		{50, 10},
		{100, 20},
		{300, 50},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestHBarChart(t *testing.T) {
	theme.SetActive("flexoki-dark")

	out := HBarChart([]HBar{
		{Label: "Software", Value: 52.99, Note: "$52.99 67.1%"},
		{Label: "Streaming", Value: 15.99, Note: "$15.99 20.2%"},
		{Label: "Music", Value: 9.99, Note: "$9.99 12.7%"},
	}, 60)

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 60 {
			t.Errorf("line %d width = %d, want 60", i, w)
		}
	}
	if strings.Count(lines[0], "█") <= strings.Count(lines[2], "█") {
		t.Error("largest value should draw the longest bar")
	}
}

func TestHBarChartEmpty(t *testing.T) {
	if got := HBarChart(nil, 40); got != "" {
		t.Errorf("HBarChart(nil) = %q, want empty", got)
	}
}

func TestColumnChart(t *testing.T) {
	theme.SetActive("flexoki-dark")

	cols := []Column{
		{Label: "Jul", Value: 78.97},
		{Label: "Aug", Value: 90.96},
		{Label: "Sep", Value: 0},
		{Label: "Oct", Value: 120.5, Highlight: true},
	}
	out := ColumnChart(cols, 50, 8)
	lines := strings.Split(out, "\n")

	// 8 plot rows, the axis and the labels.
	if len(lines) != 10 {
		t.Fatalf("lines = %d, want 10", len(lines))
	}
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
	}
	if !strings.Contains(lines[0], "$") {
		t.Errorf("top row has no dollar tick: %q", lines[0])
	}
	for _, m := range []string{"Jul", "Aug", "Sep", "Oct"} {
		if !strings.Contains(lines[len(lines)-1], m) {
			t.Errorf("label row missing %s", m)
		}
	}
}

func TestColumnChartFallsBackToSparkline(t *testing.T) {
	theme.SetActive("flexoki-dark")
	got := ColumnChart([]Column{{Value: 1}, {Value: 2}, {Value: 3}}, 10, 2)
	if lipgloss.Width(got) != 3 {
		t.Errorf("narrow ColumnChart width = %d, want sparkline of 3", lipgloss.Width(got))
	}
	if ColumnChart(nil, 40, 8) != "" {
		t.Error("empty ColumnChart should render nothing")
	}
}

func TestCenterIn(t *testing.T) {
	tests := []struct {
		s    string
		w    int
		want string
	}{
		{"Dec", 7, "  Dec  "},
		{"Dec", 6, " Dec  "},
		{"December", 4, "Dece"},
	}
	for _, tt := range tests {
		if got := centerIn(tt.s, tt.w); got != tt.want {
			t.Errorf("centerIn(%q, %d) = %q, want %q", tt.s, tt.w, got, tt.want)
		}
	}
}
