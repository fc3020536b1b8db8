package components

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

// Sparkline renders values as a single row of block glyphs.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := slices.Max(values)
	if peak <= 0 {
		peak = 1
	}
	out := make([]rune, len(values))
	for i, v := range values {
		out[i] = sparkBlocks[min(max(int(v/peak*7), 0), 7)]
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(string(out))
}

var (
	sparkBlocks = []rune("▁▂▃▄▅▆▇█")
	fillBlocks  = []rune(" ▁▂▃▄▅▆▇█")
)

// Column is one bar of a ColumnChart.
type Column struct {
	Label     string
	Value     float64
	Highlight bool
}

// ColumnChart renders one vertical bar per column over a dollar y-axis, with
// each label centered under its bar. Highlighted columns use the bright
// accent. Below 15x3 it degrades to a sparkline.
func ColumnChart(cols []Column, width, height int) string {
	if len(cols) == 0 {
		return ""
	}
	t := theme.Active

	values := make([]float64, len(cols))
	for i, c := range cols {
		values[i] = c.Value
	}
	if width < 15 || height < 3 {
		return Sparkline(values, t.Accent)
	}
	peak := slices.Max(values)

	// Keep at least two rows per tick.
	step := chartTickStep(peak)
	for math.Ceil(peak/step) > float64(height/2) {
		step *= 2
	}
	ticks := max(int(math.Ceil(peak/step)), 1)
	ceiling := step * float64(ticks)
	rowsPerTick := height / ticks
	chartH := rowsPerTick * ticks

	axisW := max(len(formatChartLabel(ceiling))+1, 4)
	plotW := max(width-axisW-1, len(cols)*2)
	slot := plotW / len(cols)
	barW := min(max(slot-2, 1), 6)
	pad := (slot - barW) / 2

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	normal := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	bright := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		tick := ""
		if row%rowsPerTick == 0 {
			tick = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, tick)))

		for _, c := range cols {
			cell := ' '
			switch {
			case c.Value >= top:
				cell = '█'
			case c.Value > bottom:
				cell = fillBlocks[min(max(int((c.Value-bottom)/(top-bottom)*8), 1), 8)]
			}
			style := normal
			if c.Highlight {
				style = bright
			}
			b.WriteString(blank.Render(strings.Repeat(" ", pad)))
			b.WriteString(style.Render(strings.Repeat(string(cell), barW)))
			b.WriteString(blank.Render(strings.Repeat(" ", slot-pad-barW)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", slot*len(cols)))))
	b.WriteString("\n")
	b.WriteString(blank.Render(strings.Repeat(" ", axisW+1)))
	for _, c := range cols {
		b.WriteString(axis.Render(centerIn(c.Label, slot)))
	}
	return b.String()
}

// centerIn pads s to exactly w cells, truncating if needed.
func centerIn(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		r = r[:w]
	}
	left := (w - len(r)) / 2
	return strings.Repeat(" ", left) + string(r) + strings.Repeat(" ", w-left-len(r))
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("$%.0fM", v/1e6)
		}
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("$%.0fk", v/1e3)
		}
		return fmt.Sprintf("$%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("$%.0f", v)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// HBar is one row of a horizontal bar chart.
type HBar struct {
	Label string
	Value float64
	Note  string // right-hand annotation, e.g. amount and share
}

// HBarChart renders labeled horizontal bars scaled to the largest value.
// Bars cycle through the theme's accent colors.
func HBarChart(bars []HBar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active
	palette := []lipgloss.Color{t.Accent, t.Blue, t.Magenta, t.Yellow, t.Orange, t.Green, t.Cyan, t.Red}

	labelW, noteW := 0, 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		noteW = max(noteW, lipgloss.Width(b.Note))
		peak = max(peak, b.Value)
	}
	labelW = min(labelW, 16)
	if peak <= 0 {
		peak = 1
	}
	barW := max(width-labelW-noteW-2, 4)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, 0, len(bars))
	for i, b := range bars {
		n := min(max(int(math.Round(b.Value/peak*float64(barW))), 0), barW)
		if b.Value > 0 && n == 0 {
			n = 1
		}
		barStyle := lipgloss.NewStyle().Foreground(palette[i%len(palette)]).Background(t.Surface)

		label := b.Label
		if lipgloss.Width(label) > labelW {
			label = string([]rune(label)[:labelW-1]) + "…"
		}
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-*s", labelW, label))+
				spaceStyle.Render(" ")+
				barStyle.Render(strings.Repeat("█", n))+
				spaceStyle.Render(strings.Repeat(" ", barW-n+1))+
				noteStyle.Render(fmt.Sprintf("%*s", noteW, b.Note)))
	}
	return strings.Join(lines, "\n")
}
