package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, and
// either a toast or the data age on the right.
func RenderStatusBar(width int, hints, toast, dataAge string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	toastStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Accent).
		Bold(true)

	left := " " + hints
	right := ""
	switch {
	case toast != "":
		right = toastStyle.Render(" "+toast+" ") + " "
	case dataAge != "":
		right = "Loaded " + dataAge + " "
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
