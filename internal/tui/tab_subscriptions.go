package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/tui/components"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

// listState tracks the subscriptions tab.
type listState struct {
	cursor        int
	category      string
	categories    []string // "all" followed by categories in first-seen order
	sort          pipeline.SortKey
	confirmCancel bool
}

func (a App) selectedSubscription() (model.Subscription, bool) {
	if a.list.cursor < 0 || a.list.cursor >= len(a.view) {
		return model.Subscription{}, false
	}
	return a.view[a.list.cursor], true
}

func (a App) updateListKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.list.cursor < len(a.view)-1 {
			a.list.cursor++
		}
	case "k", "up":
		if a.list.cursor > 0 {
			a.list.cursor--
		}
	case "g":
		a.list.cursor = 0
	case "G":
		a.list.cursor = max(len(a.view)-1, 0)
	case "f":
		a.list.category = nextString(a.list.categories, a.list.category)
		a.list.cursor = 0
		a.recompute()
	case "s":
		keys := pipeline.SortKeys()
		for i, k := range keys {
			if k == a.list.sort {
				a.list.sort = keys[(i+1)%len(keys)]
				break
			}
		}
		a.recompute()
	case "p":
		m, cmd := a.transitionSelected(model.StatusPaused)
		return m, cmd, true
	case "a":
		m, cmd := a.transitionSelected(model.StatusActive)
		return m, cmd, true
	case "c":
		sub, ok := a.selectedSubscription()
		if !ok {
			return a, nil, true
		}
		if !pipeline.CanTransition(sub.Status, model.StatusCancelled) {
			m, cmd := a.showToast(sub.Name + " is already cancelled")
			return m, cmd, true
		}
		a.list.confirmCancel = true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateConfirmCancel(key string) (tea.Model, tea.Cmd) {
	a.list.confirmCancel = false
	if key == "y" || key == "Y" {
		return a.transitionSelected(model.StatusCancelled)
	}
	return a, nil
}

// transitionSelected checks the move locally before handing it to the store
// so disallowed keys get immediate feedback.
func (a App) transitionSelected(to model.Status) (tea.Model, tea.Cmd) {
	sub, ok := a.selectedSubscription()
	if !ok {
		return a, nil
	}
	if sub.Status == to {
		return a.showToast(fmt.Sprintf("%s is already %s", sub.Name, to))
	}
	if !pipeline.CanTransition(sub.Status, to) {
		return a.showToast(fmt.Sprintf("Cannot move %s from %s to %s", sub.Name, sub.Status, to))
	}
	return a, transitionCmd(a.store, sub, to, a.now())
}

func nextString(list []string, cur string) string {
	if len(list) == 0 {
		return cur
	}
	for i, s := range list {
		if s == cur {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func (a App) renderSubscriptionsTab(cw, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	chipStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 1)
	activeChipStyle := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true).Padding(0, 1)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	chip := func(label string, active bool) string {
		if active {
			return activeChipStyle.Render(label)
		}
		return chipStyle.Render(label)
	}

	var filters strings.Builder
	filters.WriteString(mutedStyle.Render("Category "))
	for _, c := range a.list.categories {
		filters.WriteString(chip(c, c == a.list.category))
		filters.WriteString(spaceStyle.Render(" "))
	}
	filters.WriteString("\n")
	filters.WriteString(mutedStyle.Render("Sort     "))
	for _, k := range pipeline.SortKeys() {
		filters.WriteString(chip(k.String(), k == a.list.sort))
		filters.WriteString(spaceStyle.Render(" "))
	}

	header := components.ContentCard("", filters.String(), cw)

	// Border, title and header row of the list card.
	visible := max(h-lipgloss.Height(header)-4, 1)
	if a.list.confirmCancel {
		visible = max(visible-2, 1)
	}

	offset := 0
	if a.list.cursor >= visible {
		offset = a.list.cursor - visible + 1
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimRowStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	var body strings.Builder
	body.WriteString(headStyle.Render(fmt.Sprintf("  %-22s %10s  %-14s %-10s  %s", "Name", "Amount", "Category", "Status", "Renews")))
	body.WriteString("\n")

	if len(a.view) == 0 {
		body.WriteString(mutedStyle.Render("  No subscriptions in " + a.list.category))
	}

	now := a.now()
	end := min(offset+visible, len(a.view))
	for i := offset; i < end; i++ {
		sub := a.view[i]
		selected := i == a.list.cursor

		style := rowStyle
		if sub.Status != model.StatusActive {
			style = dimRowStyle
		}
		marker := spaceStyle.Render("  ")
		if selected {
			style = selectedStyle
			marker = markerStyle.Render("▸ ")
		}

		line := marker + style.Render(fmt.Sprintf("%-22s %10s  %-14s %-10s ",
			cli.Truncate(sub.Name, 22),
			cli.FormatMoney(sub.Amount),
			cli.Truncate(sub.Category, 14),
			sub.Status))
		if sub.Status == model.StatusActive {
			days := pipeline.DaysUntilRenewal(sub.NextBillingDate, now)
			line += components.TierBadge(pipeline.RenewalTier(days), pipeline.RenewalLabel(days))
		} else {
			line += dimRowStyle.Render(" " + cli.FormatDate(sub.NextBillingDate))
		}
		if selected {
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
		}

		body.WriteString(line)
		if i < end-1 {
			body.WriteString("\n")
		}
	}

	if a.list.confirmCancel {
		if sub, ok := a.selectedSubscription(); ok {
			warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
			body.WriteString("\n\n")
			body.WriteString(warnStyle.Render(fmt.Sprintf("Cancel %s and bank %s/mo in savings? [y/n]",
				sub.Name, cli.FormatMoney(sub.Amount))))
		}
	}

	title := fmt.Sprintf("Subscriptions (%d)", len(a.view))
	if len(a.view) > visible {
		title = fmt.Sprintf("Subscriptions (%d-%d of %d)", offset+1, end, len(a.view))
	}

	return header + "\n" + components.ContentCard(title, body.String(), cw)
}
