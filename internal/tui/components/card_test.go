package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	tests := []struct {
		total, n int
		want     []int
	}{
		{100, 4, []int{25, 25, 25, 25}},
		{10, 3, []int{4, 3, 3}},
		{7, 1, []int{7}},
		{5, 0, nil},
	}
	for _, tt := range tests {
		got := LayoutRow(tt.total, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("LayoutRow(%d, %d) = %v, want %v", tt.total, tt.n, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("LayoutRow(%d, %d) = %v, want %v", tt.total, tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	// Padding below the short card must carry background styling.
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("Line %d has no ANSI codes: %q", i, lines[i])
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	row := MetricCardRow([]Metric{
		{Label: "Active", Value: "3"},
		{Label: "Monthly", Value: "$78.97", Note: "$947.64/yr"},
		{Label: "Saved", Value: "$15.99", Accent: theme.Active.Green},
	}, 90)

	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
	if !strings.Contains(row, "$947.64/yr") {
		t.Error("row is missing the note line")
	}
}

func TestTabBarWidthsMatchHitboxes(t *testing.T) {
	theme.SetActive("flexoki-dark")

	for active := range Tabs {
		// Zero width renders the bar at its natural width.
		bar := RenderTabBar(active, 0)
		want := len(Tabs) - 1 // separators
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		got := lipgloss.Width(bar)
		if got != want {
			t.Errorf("active=%d: rendered width %d, sum of tab widths %d", active, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('3'); got != 2 {
		t.Errorf("TabIdxByKey('3') = %d, want 2", got)
	}
	if got := TabIdxByKey('x'); got != -1 {
		t.Errorf("TabIdxByKey('x') = %d, want -1", got)
	}
}
