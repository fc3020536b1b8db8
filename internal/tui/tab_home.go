package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/tui/components"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

const (
	tabHome = iota
	tabSubscriptions
	tabInsights
	tabProfile
)

type homeState struct {
	cursor int // index into the upcoming renewals
}

func (a App) updateHomeKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.home.cursor < len(a.upcoming)-1 {
			a.home.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.home.cursor > 0 {
			a.home.cursor--
		}
		return a, nil, true
	case "r":
		m, cmd := a.remindSelected()
		return m, cmd, true
	}
	return a, nil, false
}

// remindSelected schedules a reminder RemindDaysBefore days ahead of the
// selected renewal. A reminder date already in the past becomes today.
func (a App) remindSelected() (tea.Model, tea.Cmd) {
	if len(a.upcoming) == 0 {
		return a, nil
	}
	if !a.cfg.Notifications.Enabled {
		return a.showToast("Notifications are off; enable them on the Profile tab")
	}

	now := a.now()
	sub := a.upcoming[a.home.cursor].Subscription
	remindOn := sub.NextBillingDate.AddDate(0, 0, -a.cfg.Notifications.RemindDaysBefore)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if remindOn.Before(today) {
		remindOn = today
	}

	r := model.Reminder{SubscriptionID: sub.ID, RemindOn: remindOn, CreatedAt: now}
	return a, reminderCmd(a.store, r, sub.Name)
}

func (a App) renderHomeTab(cw int) string {
	t := theme.Active

	savedNote := fmt.Sprintf("of %s %s goal", cli.FormatMoney(a.progress.Target), a.period)
	metrics := []components.Metric{
		{Label: "Monthly Spend", Value: cli.FormatMoney(a.monthly), Note: "active subscriptions", Accent: t.AccentBright},
		{Label: "Annual Projection", Value: cli.FormatMoney(a.annual), Note: "monthly x 12"},
		{Label: "Active", Value: fmt.Sprintf("%d / %d", a.active, len(a.subs)), Note: "subscriptions"},
		{Label: "Saved", Value: cli.FormatMoney(a.progress.Saved), Note: savedNote, Accent: components.ColorForGoal(a.progress.Percent / 100)},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	barW := max(components.CardInnerWidth(cw)-8, 10)
	goalTitle := "Savings goal · " + cases.Title(language.English).String(string(a.period))
	goalBody := components.GoalBar(a.progress.Percent, barW)
	if a.progress.Met() {
		goalBody += "\n" + lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Render("Goal reached")
	}
	b.WriteString(components.Banner(goalTitle, goalBody, cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Upcoming Renewals", a.renderUpcoming(cw), cw))
	return b.String()
}

func (a App) renderUpcoming(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(a.upcoming) == 0 {
		return mutedStyle.Render("No active subscriptions")
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	bellStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	var b strings.Builder
	for i, r := range a.upcoming {
		sub := r.Subscription
		selected := i == a.home.cursor

		style := nameStyle
		marker := lipgloss.NewStyle().Background(t.Surface).Render("  ")
		if selected {
			style = selectedStyle
			marker = markerStyle.Render("▸ ")
		}

		line := marker +
			style.Render(fmt.Sprintf("%-20s %10s  %-12s ",
				cli.Truncate(sub.Name, 20),
				cli.FormatMoney(sub.Amount),
				cli.FormatDate(sub.NextBillingDate))) +
			components.TierBadge(r.Tier, r.Label)
		if rem, ok := a.reminders[sub.ID]; ok {
			line += bellStyle.Render("  reminder " + cli.FormatDate(rem.RemindOn))
		}
		if selected {
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
		}

		b.WriteString(line)
		if i < len(a.upcoming)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
