package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

// ProgressBar renders the loading bar for a 0-1 fraction.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := min(max(int(pct*float64(width)), 0), width)

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForGoal moves from red toward green as a savings goal fills up.
func ColorForGoal(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Saved
	case pct >= 0.5:
		return t.Green
	case pct >= 0.25:
		return t.Yellow
	default:
		return t.Orange
	}
}

// GoalBar renders savings progress for a 0-100 percentage.
func GoalBar(pct float64, barWidth int) string {
	t := theme.Active
	frac := min(max(pct/100, 0), 1)

	bar := progress.New(
		progress.WithSolidFill(string(ColorForGoal(frac))),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(ColorForGoal(frac)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(frac) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%3.0f%%", frac*100))
}

// TierColor maps a renewal tier to its badge color.
func TierColor(tier pipeline.Tier) lipgloss.Color {
	t := theme.Active
	switch tier {
	case pipeline.TierUrgent:
		return t.Urgent
	case pipeline.TierSoon:
		return t.Soon
	default:
		return t.Later
	}
}

// TierBadge renders a renewal label colored by tier.
func TierBadge(tier pipeline.Tier, label string) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(t.Background).
		Background(TierColor(tier)).
		Bold(true).
		Padding(0, 1).
		Render(label)
}
