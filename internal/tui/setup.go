package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/subtrackr/internal/config"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

// SetupValues holds the answers collected by the setup wizard.
type SetupValues struct {
	Name          string
	Email         string
	Goal          string
	Period        string
	Sort          string
	Theme         string
	Notifications bool
}

// NewSetupValues pre-fills the wizard from an existing config.
func NewSetupValues(cfg config.Config) SetupValues {
	return SetupValues{
		Name:          cfg.Profile.Name,
		Email:         cfg.Profile.Email,
		Goal:          strconv.FormatFloat(cfg.Savings.GoalUSD, 'f', -1, 64),
		Period:        cfg.Savings.Period,
		Sort:          cfg.General.DefaultSort,
		Theme:         cfg.Appearance.Theme,
		Notifications: cfg.Notifications.Enabled,
	}
}

// Apply copies the answers onto cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	goal, err := parseGoal(v.Goal)
	if err != nil {
		return err
	}
	cfg.Profile.Name = strings.TrimSpace(v.Name)
	cfg.Profile.Email = strings.TrimSpace(v.Email)
	cfg.Savings.GoalUSD = goal
	cfg.Savings.Period = v.Period
	cfg.General.DefaultSort = v.Sort
	cfg.Appearance.Theme = v.Theme
	cfg.Notifications.Enabled = v.Notifications
	return cfg.Validate()
}

func parseGoal(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("goal must be a number: %q", s)
	}
	if f < 0 {
		return 0, errors.New("goal must not be negative")
	}
	return f, nil
}

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return checkmail.ValidateFormat(strings.TrimSpace(s))
}

// NewSetupForm builds the first-run wizard. Answers are written into vals.
func NewSetupForm(subCount int, vals *SetupValues) *huh.Form {
	welcome := "Let's set up a few things."
	if subCount > 0 {
		welcome = fmt.Sprintf("Tracking %d subscriptions. Let's set up a few things.", subCount)
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	sortOpts := make([]huh.Option[string], 0, len(pipeline.SortKeys()))
	for _, k := range pipeline.SortKeys() {
		sortOpts = append(sortOpts, huh.NewOption(k.String(), k.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to subtrackr").
				Description(welcome),
			huh.NewInput().
				Title("Your name").
				Placeholder("optional").
				Value(&vals.Name),
			huh.NewInput().
				Title("Email").
				Placeholder("optional").
				Validate(validateEmail).
				Value(&vals.Email),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Savings goal (USD)").
				Description("Money saved by cancelling subscriptions counts toward this.").
				Validate(func(s string) error {
					_, err := parseGoal(s)
					return err
				}).
				Value(&vals.Goal),
			huh.NewSelect[string]().
				Title("Goal period").
				Options(
					huh.NewOption("Weekly", string(pipeline.PeriodWeekly)),
					huh.NewOption("Monthly", string(pipeline.PeriodMonthly)),
					huh.NewOption("Yearly", string(pipeline.PeriodYearly)),
				).
				Value(&vals.Period),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default sort").
				Options(sortOpts...).
				Value(&vals.Sort),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewConfirm().
				Title("Renewal reminders").
				Affirmative("On").
				Negative("Off").
				Value(&vals.Notifications),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}
