package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/tui/components"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

func (a App) renderInsightsTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	innerW := components.CardInnerWidth(cw)

	var b strings.Builder

	// Category breakdown
	bars := make([]components.HBar, 0, len(a.shares))
	for _, s := range a.shares {
		pct, _ := s.Percent.Float64()
		bars = append(bars, components.HBar{
			Label: s.Category,
			Value: pct,
			Note:  fmt.Sprintf("%s  %s", cli.FormatMoney(s.Amount), cli.FormatPercent(s.Percent)),
		})
	}
	breakdown := components.HBarChart(bars, innerW)
	if breakdown == "" {
		breakdown = mutedStyle.Render("No active spend to break down")
	}
	b.WriteString(components.ContentCard("Spend by Category", breakdown, cw))
	b.WriteString("\n")

	// Monthly trend
	peak, hasPeak := pipeline.PeakMonth(a.trend)
	cols := make([]components.Column, len(a.trend))
	for i, p := range a.trend {
		v, _ := p.Total.Float64()
		cols[i] = components.Column{
			Label:     cli.FormatMonth(p.Month),
			Value:     v,
			Highlight: hasPeak && p.Month.Equal(peak.Month),
		}
	}
	trendBody := components.ColumnChart(cols, innerW, 8)

	var stats []string
	if hasPeak {
		stats = append(stats, mutedStyle.Render("Peak ")+valueStyle.Render(
			fmt.Sprintf("%s %s", peak.Month.Format("Jan 2006"), cli.FormatMoney(peak.Total))))
	}
	if n := len(a.trend); n >= 2 {
		stats = append(stats, mutedStyle.Render("vs last month ")+valueStyle.Render(
			cli.FormatDelta(a.trend[n-1].Total, a.trend[n-2].Total)))
	}
	if len(stats) > 0 {
		trendBody += "\n" + strings.Join(stats, mutedStyle.Render("   "))
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Monthly Spend (last %d months)", historyMonths), trendBody, cw))
	b.WriteString("\n")

	// Savings ledger
	var ledger strings.Builder
	events := a.ledger.Events()
	ledger.WriteString(mutedStyle.Render("Lifetime saved ") + valueStyle.Render(cli.FormatMoney(a.ledger.Total())))
	ledger.WriteString(mutedStyle.Render(fmt.Sprintf("  across %d cancellations", len(events))))
	const recent = 5
	for i := len(events) - 1; i >= 0 && i >= len(events)-recent; i-- {
		ev := events[i]
		ledger.WriteString("\n")
		ledger.WriteString(valueStyle.Render(fmt.Sprintf("  %-12s %-22s %10s/mo",
			cli.FormatDate(ev.Timestamp), cli.Truncate(ev.Name, 22), cli.FormatMoney(ev.AmountSaved))))
	}
	b.WriteString(components.ContentCard("Savings Ledger", ledger.String(), cw))

	return b.String()
}
