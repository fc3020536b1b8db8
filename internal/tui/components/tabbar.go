package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Home", Key: '1'},
	{Name: "Subscriptions", Key: '2'},
	{Name: "Insights", Key: '3'},
	{Name: "Profile", Key: '4'},
}

func tabLabel(tab Tab) string {
	return string(tab.Key) + " " + tab.Name
}

func tabStyle(active bool) lipgloss.Style {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)
}

// TabVisualWidth returns the rendered width of a tab. Mouse hit testing
// relies on this matching RenderTabBar exactly.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabStyle(active).Render(tabLabel(tab)))
}

// RenderTabBar renders the tab bar with the given active index. Tabs are
// separated by a single column.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, tabStyle(i == activeIdx).Render(tabLabel(tab)))
	}
	row := strings.Join(parts, sep)

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
