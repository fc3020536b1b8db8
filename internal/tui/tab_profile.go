package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/config"
	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/tui/components"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

const (
	profileFieldName = iota
	profileFieldEmail
	profileFieldGoal
	profileFieldPeriod
	profileFieldNotifications
	profileFieldRemindDays
	profileFieldTheme
	profileFieldCount // sentinel
)

// profileState tracks the profile tab state.
type profileState struct {
	cursor  int
	editing bool
	input   textinput.Model
}

var goalPeriods = []string{
	string(pipeline.PeriodWeekly),
	string(pipeline.PeriodMonthly),
	string(pipeline.PeriodYearly),
}

func newProfileInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func (a App) updateProfileKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.profile.cursor < profileFieldCount-1 {
			a.profile.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.profile.cursor > 0 {
			a.profile.cursor--
		}
		return a, nil, true
	case "enter":
		m, cmd := a.profileActivate()
		return m, cmd, true
	}
	return a, nil, false
}

// profileActivate opens a text input for free-form fields and flips or
// cycles the others in place.
func (a App) profileActivate() (tea.Model, tea.Cmd) {
	cfg := a.cfg
	switch a.profile.cursor {
	case profileFieldPeriod:
		cfg.Savings.Period = nextString(goalPeriods, cfg.Savings.Period)
		return a.applyProfile(cfg)
	case profileFieldNotifications:
		cfg.Notifications.Enabled = !cfg.Notifications.Enabled
		return a.applyProfile(cfg)
	case profileFieldTheme:
		cfg.Appearance.Theme = theme.Active.Pair
		return a.applyProfile(cfg)
	}

	ti := newProfileInput()
	switch a.profile.cursor {
	case profileFieldName:
		ti.Placeholder = "Your name"
		ti.SetValue(cfg.Profile.Name)
	case profileFieldEmail:
		ti.Placeholder = "you@example.com"
		ti.SetValue(cfg.Profile.Email)
	case profileFieldGoal:
		ti.Placeholder = "50 (USD per period, 0 to clear)"
		ti.SetValue(strconv.FormatFloat(cfg.Savings.GoalUSD, 'f', -1, 64))
	case profileFieldRemindDays:
		ti.Placeholder = "3"
		ti.SetValue(strconv.Itoa(cfg.Notifications.RemindDaysBefore))
	}
	ti.Focus()
	a.profile.input = ti
	a.profile.editing = true
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateProfileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.profile.editing = false
		cfg, err := a.profileFromInput()
		if err != nil {
			return a.showToast("Not saved: " + err.Error())
		}
		return a.applyProfile(cfg)
	case "esc":
		a.profile.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.profile.input, cmd = a.profile.input.Update(msg)
	return a, cmd
}

func (a App) profileFromInput() (config.Config, error) {
	cfg := a.cfg
	val := strings.TrimSpace(a.profile.input.Value())

	switch a.profile.cursor {
	case profileFieldName:
		cfg.Profile.Name = val
	case profileFieldEmail:
		if err := validateEmail(val); err != nil {
			return cfg, fmt.Errorf("invalid email: %w", err)
		}
		cfg.Profile.Email = val
	case profileFieldGoal:
		goal, err := parseGoal(val)
		if err != nil {
			return cfg, err
		}
		cfg.Savings.GoalUSD = goal
	case profileFieldRemindDays:
		days, err := strconv.Atoi(val)
		if err != nil || days < 0 {
			return cfg, fmt.Errorf("reminder lead must be a whole number of days: %q", val)
		}
		cfg.Notifications.RemindDaysBefore = days
	}
	return cfg, nil
}

// applyProfile validates and persists cfg, then recomputes everything that
// depends on it. An invalid or unsaved config leaves the app unchanged.
func (a App) applyProfile(cfg config.Config) (tea.Model, tea.Cmd) {
	if err := cfg.Validate(); err != nil {
		return a.showToast("Not saved: " + err.Error())
	}
	if err := a.saveConfig(cfg); err != nil {
		a.log.Warn("saving config failed", log.FieldError, err)
		return a.showToast("Save failed: " + err.Error())
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.recompute()
	return a.showToast("Saved")
}

func (a App) renderProfileTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	orUnset := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return s
	}
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	goal := "(not set)"
	if cfg.Savings.GoalUSD > 0 {
		goal = cli.FormatMoney(cfg.Goal())
	}

	fields := []struct{ label, value string }{
		{"Name", orUnset(cfg.Profile.Name)},
		{"Email", orUnset(cfg.Profile.Email)},
		{"Savings Goal", goal},
		{"Goal Period", cfg.Savings.Period},
		{"Notifications", onOff(cfg.Notifications.Enabled)},
		{"Remind Before", fmt.Sprintf("%d days", cfg.Notifications.RemindDaysBefore)},
		{"Theme", cfg.Appearance.Theme},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.profile.editing && i == a.profile.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", f.label)))
			form.WriteString(a.profile.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.profile.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-16s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			form.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit or toggle  [Esc] cancel"))

	var info strings.Builder
	info.WriteString(labelStyle.Render("Subscriptions:  ") + valueStyle.Render(cli.FormatNumber(int64(len(a.subs)))) + "\n")
	info.WriteString(labelStyle.Render("Lifetime saved: ") + valueStyle.Render(cli.FormatMoney(a.ledger.Total())) + "\n")
	info.WriteString(labelStyle.Render("Load time:      ") + valueStyle.Render(fmt.Sprintf("%.2fs", a.loadTime.Seconds())) + "\n")
	info.WriteString(labelStyle.Render("Config file:    ") + valueStyle.Render(config.ConfigPath()))

	return components.ContentCard("Profile", form.String(), cw) + "\n" +
		components.ContentCard("About", info.String(), cw)
}
