// Package tui provides the interactive Bubble Tea dashboard for subtrackr.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/config"
	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/tui/components"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

// Store is the persistence the dashboard reads from and writes actions to.
type Store interface {
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	LoadLedger(ctx context.Context) (pipeline.Ledger, error)
	ApplyTransition(ctx context.Context, id string, to model.Status, now time.Time) (model.Subscription, *model.SavingsEvent, error)
	SetReminder(ctx context.Context, r model.Reminder) error
	ListReminders(ctx context.Context) (map[string]model.Reminder, error)
	SpendHistory(ctx context.Context, n int) ([]model.SpendPoint, error)
}

// loadedData is everything read from the store in one load.
type loadedData struct {
	Subs      []model.Subscription
	Ledger    pipeline.Ledger
	Reminders map[string]model.Reminder
	History   []model.SpendPoint
	Err       error
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Data     loadedData
	LoadTime time.Duration
}

// ProgressMsg reports load progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg struct {
	Data     loadedData
	LoadTime time.Duration
}

// actionDoneMsg reports the outcome of a store action started from the UI.
type actionDoneMsg struct {
	toast string
	sub   *model.Subscription
	saved *model.SavingsEvent
	err   error
}

type toastExpiredMsg struct{ id int }

// App is the root Bubble Tea model.
type App struct {
	store      Store
	cfg        config.Config
	saveConfig func(config.Config) error
	now        func() time.Time
	log        *log.Logger

	// Data
	subs      []model.Subscription
	ledger    pipeline.Ledger
	reminders map[string]model.Reminder
	history   []model.SpendPoint
	loaded    bool
	loadErr   error
	loadTime  time.Duration

	// Derived on every recompute
	monthly    decimal.Decimal
	annual     decimal.Decimal
	active     int
	shares     []model.CategoryShare
	upcoming   []pipeline.Renewal
	period     pipeline.GoalPeriod
	progress   model.Progress
	trend      []model.SpendPoint
	view       []model.Subscription
	derivedErr error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	toast     string
	toastID   int

	// Per-tab state
	home    homeState
	list    listState
	profile profileState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	loadStep    int
	loadSteps   int
	loadSub     chan tea.Msg
	refreshing  bool
	lastRefresh time.Time
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	historyMonths    = 6
	toastDuration    = 3 * time.Second
	refreshInterval  = time.Minute
)

// NewApp creates a new TUI app model.
func NewApp(st Store, cfg config.Config, logger *log.Logger) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	if logger == nil {
		logger = log.Discard()
	}

	return App{
		store:      st,
		cfg:        cfg,
		saveConfig: config.Save,
		now:        time.Now,
		log:        logger.WithComponent(log.ComponentTUI),
		needSetup:  !config.Exists(),
		list:       listState{category: startCategory(cfg), sort: cfg.SortKey()},
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
	}
}

func startCategory(cfg config.Config) string {
	if cfg.General.DefaultCategory == "" {
		return pipeline.AllCategories
	}
	return cfg.General.DefaultCategory
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.store, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a *App) applyData(d loadedData) {
	a.loadErr = d.Err
	if d.Err != nil {
		return
	}
	a.subs = d.Subs
	a.ledger = d.Ledger
	a.reminders = d.Reminders
	a.history = d.History
	a.recompute()
}

// recompute rebuilds every derived view from the loaded state.
func (a *App) recompute() {
	now := a.now()

	monthly, err := pipeline.TotalMonthlySpend(a.subs)
	a.derivedErr = err
	if err != nil {
		a.log.Warn("invalid subscription data", log.FieldError, err)
		return
	}
	a.monthly = monthly
	a.annual, _ = pipeline.AnnualProjection(a.subs)
	a.active = pipeline.ActiveCount(a.subs)
	a.shares, _ = pipeline.CategoryBreakdown(a.subs)
	a.upcoming = pipeline.UpcomingRenewals(a.subs, now, max(a.cfg.General.UpcomingLimit, 1))

	a.period, err = pipeline.ParseGoalPeriod(a.cfg.Savings.Period)
	if err != nil {
		a.period = pipeline.PeriodMonthly
	}
	if goal, err := pipeline.GoalWindow(a.period, a.cfg.Goal(), now); err == nil {
		a.progress = pipeline.ProgressTowardGoal(a.ledger, goal, now)
	}

	// Keep the live month current even before the store records it.
	live := model.SpendPoint{Month: pipeline.MonthStart(now), Total: monthly}
	a.trend = pipeline.SpendTrend(slices.Concat(a.history, []model.SpendPoint{live}), historyMonths, now)

	a.list.categories = append([]string{pipeline.AllCategories}, pipeline.Categories(a.subs)...)
	if !slices.Contains(a.list.categories, a.list.category) {
		a.list.category = pipeline.AllCategories
	}
	a.view, _ = pipeline.View(a.subs, a.list.category, a.list.sort, now)

	a.list.cursor = clamp(a.list.cursor, 0, len(a.view)-1)
	a.home.cursor = clamp(a.home.cursor, 0, len(a.upcoming)-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = a.now()
		a.applyData(msg.Data)

		if a.needSetup {
			a.setupVals = NewSetupValues(a.cfg)
			a.setupForm = NewSetupForm(len(a.subs), &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.loadStep = msg.Current
		a.loadSteps = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = a.now()
		a.loadTime = msg.LoadTime
		a.applyData(msg.Data)
		return a, nil

	case actionDoneMsg:
		return a.handleActionDone(msg)

	case toastExpiredMsg:
		if msg.id == a.toastID {
			a.toast = ""
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		// Billing days roll over at midnight; reload periodically so tiers
		// and labels stay current in a long-running session.
		if a.loaded && !a.refreshing && a.now().Sub(a.lastRefresh) >= refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.store))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Profile text editing intercepts all keys
	if a.activeTab == tabProfile && a.profile.editing {
		return a.updateProfileInput(msg)
	}

	// A pending cancel waits for y/n
	if a.list.confirmCancel {
		return a.updateConfirmCancel(key)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabHome:
		if m, cmd, ok := a.updateHomeKey(key); ok {
			return m, cmd
		}
	case tabSubscriptions:
		if m, cmd, ok := a.updateListKey(key); ok {
			return m, cmd
		}
	case tabProfile:
		if m, cmd, ok := a.updateProfileKey(key); ok {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "R":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.store)
		}
		return a, nil
	case "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "l", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabSubscriptions && a.list.cursor > 0 {
			a.list.cursor--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabSubscriptions && a.list.cursor < len(a.view)-1 {
			a.list.cursor++
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := a.cfg
		if err := a.setupVals.Apply(&cfg); err != nil {
			a.needSetup = false
			a.setupForm = nil
			return a.showToast("Setup not saved: " + err.Error())
		}
		theme.SetActive(cfg.Appearance.Theme)
		a.cfg = cfg
		a.list.sort = cfg.SortKey()
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		if err := a.saveConfig(cfg); err != nil {
			return a.showToast("Could not save config: " + err.Error())
		}
		return a.showToast("Saved to " + config.ConfigPath())
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.log.Warn("action failed", log.FieldError, msg.err)
		return a.showToast("Error: " + msg.err.Error())
	}

	// Apply the result locally so the views update immediately, then
	// reload from the store to pick up anything else that changed.
	if msg.sub != nil {
		for i := range a.subs {
			if a.subs[i].ID == msg.sub.ID {
				a.subs[i] = *msg.sub
			}
		}
	}
	if msg.saved != nil {
		if ledger, err := pipeline.RecordCancellation(a.ledger, *msg.saved); err == nil {
			a.ledger = ledger
		}
	}
	a.recompute()

	m, toastCmd := a.showToast(msg.toast)
	app := m.(App)
	app.refreshing = true
	return app, tea.Batch(toastCmd, refreshDataCmd(a.store))
}

func (a App) showToast(text string) (tea.Model, tea.Cmd) {
	a.toastID++
	a.toast = text
	id := a.toastID
	return a, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  subtrackr needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)
	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ subtrackr"))
	b.WriteString(subtitleStyle.Render(" · Subscriptions"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	if a.loadSteps > 0 {
		b.WriteString(subtitleStyle.Render(" Loading\n\n"))
		b.WriteString(components.ProgressBar(float64(a.loadStep)/float64(a.loadSteps), 30))
	} else {
		b.WriteString(subtitleStyle.Render(" Opening database..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3 4", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move cursor"},
		}},
		{"Home", []struct{ key, desc string }{
			{"r", "Remind me before the selected renewal"},
		}},
		{"Subscriptions", []struct{ key, desc string }{
			{"f", "Cycle category filter"},
			{"s", "Cycle sort order"},
			{"p a", "Pause / Resume"},
			{"c", "Cancel (asks to confirm)"},
		}},
		{"General", []struct{ key, desc string }{
			{"R", "Reload data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) tabHints() string {
	switch a.activeTab {
	case tabHome:
		return "[r]emind  [?]help  [q]uit"
	case tabSubscriptions:
		if a.list.confirmCancel {
			return "[y]es cancel  [n]o"
		}
		return "[f]ilter  [s]ort  [p]ause  [a]ctivate  [c]ancel  [?]help"
	case tabProfile:
		if a.profile.editing {
			return "[Enter] save  [Esc] cancel"
		}
		return "[j/k] select  [Enter] edit/toggle  [?]help"
	default:
		return "[?]help  [q]uit"
	}
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	dataAge := ""
	if !a.lastRefresh.IsZero() {
		dataAge = cli.FormatAgo(a.lastRefresh, a.now())
	}
	statusBar := components.RenderStatusBar(w, a.tabHints(), a.toast, dataAge)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Could not load data", a.loadErr.Error(), cw)
	case a.derivedErr != nil:
		content = components.ContentCard("Invalid subscription data", a.derivedErr.Error(), cw)
	default:
		switch a.activeTab {
		case tabHome:
			content = a.renderHomeTab(cw)
		case tabSubscriptions:
			content = a.renderSubscriptionsTab(cw, contentH)
		case tabInsights:
			content = a.renderInsightsTab(cw)
		case tabProfile:
			content = a.renderProfileTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadAll reads every piece of state the dashboard shows, reporting each
// completed step through progressFn.
func loadAll(ctx context.Context, st Store, progressFn func(current, total int)) loadedData {
	const steps = 4
	var d loadedData
	report := func(step int) {
		if progressFn != nil {
			progressFn(step, steps)
		}
	}

	if d.Subs, d.Err = st.ListSubscriptions(ctx); d.Err != nil {
		return d
	}
	report(1)
	if d.Ledger, d.Err = st.LoadLedger(ctx); d.Err != nil {
		return d
	}
	report(2)
	if d.Reminders, d.Err = st.ListReminders(ctx); d.Err != nil {
		return d
	}
	report(3)
	if d.History, d.Err = st.SpendHistory(ctx, historyMonths); d.Err != nil {
		return d
	}
	report(4)
	return d
}

// loadDataCmd loads in a background goroutine, streaming ProgressMsg
// updates and a final DataLoadedMsg through sub.
func loadDataCmd(st Store, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			// Non-blocking send; a skipped update is caught up by the next.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			data := loadAll(context.Background(), st, progressFn)
			sub <- DataLoadedMsg{Data: data, LoadTime: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background with no progress UI.
func refreshDataCmd(st Store) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		data := loadAll(context.Background(), st, nil)
		return RefreshDataMsg{Data: data, LoadTime: time.Since(start)}
	}
}

func transitionCmd(st Store, sub model.Subscription, to model.Status, now time.Time) tea.Cmd {
	return func() tea.Msg {
		next, saved, err := st.ApplyTransition(context.Background(), sub.ID, to, now)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		toast := fmt.Sprintf("%s is now %s", next.Name, next.Status)
		if saved != nil {
			toast = fmt.Sprintf("Cancelled %s, saving %s/mo", next.Name, cli.FormatMoney(saved.AmountSaved))
		}
		return actionDoneMsg{toast: toast, sub: &next, saved: saved}
	}
}

func reminderCmd(st Store, r model.Reminder, name string) tea.Cmd {
	return func() tea.Msg {
		if err := st.SetReminder(context.Background(), r); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{toast: fmt.Sprintf("Reminder set for %s on %s", name, cli.FormatDate(r.RemindOn))}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
