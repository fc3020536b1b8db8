// Package theme defines the color palettes for the subtrackr TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Dark          bool
	Pair          string // light/dark counterpart offered on the Profile tab
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color // Subtle borders
	BorderBright  lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent  lipgloss.Color // Accent-colored borders for focus states
	TextDim       lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted     lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary   lipgloss.Color // Primary content text
	Accent        lipgloss.Color // Primary accent (links, active states)
	AccentBright  lipgloss.Color // Brighter accent for emphasis
	AccentDim     lipgloss.Color // Dimmed accent for backgrounds
	Green         lipgloss.Color
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color

	// Renewal tier badges and the savings goal bar.
	Urgent lipgloss.Color
	Soon   lipgloss.Color
	Later  lipgloss.Color
	Saved  lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Dark:          true,
	Pair:          "flexoki-light",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
	Urgent:        lipgloss.Color("#D14D41"),
	Soon:          lipgloss.Color("#D0A215"),
	Later:         lipgloss.Color("#879A39"),
	Saved:         lipgloss.Color("#3AA99F"),
}

// Terminal uses the 16 ANSI colors only, for terminals without truecolor.
var Terminal = Theme{
	Name:          "terminal",
	Dark:          true,
	Pair:          "terminal-light",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
	Urgent:        lipgloss.Color("9"),
	Soon:          lipgloss.Color("11"),
	Later:         lipgloss.Color("2"),
	Saved:         lipgloss.Color("14"),
}

// FlexokiLight is the paper-toned light counterpart of FlexokiDark.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Pair:          "flexoki-dark",
	Background:    lipgloss.Color("#FFFCF0"),
	Surface:       lipgloss.Color("#F2F0E5"),
	SurfaceHover:  lipgloss.Color("#E6E4D9"),
	SurfaceBright: lipgloss.Color("#DAD8CE"),
	Border:        lipgloss.Color("#CECDC3"),
	BorderBright:  lipgloss.Color("#B7B5AC"),
	BorderAccent:  lipgloss.Color("#24837B"),
	TextDim:       lipgloss.Color("#B7B5AC"),
	TextMuted:     lipgloss.Color("#6F6E69"),
	TextPrimary:   lipgloss.Color("#100F0F"),
	Accent:        lipgloss.Color("#24837B"),
	AccentBright:  lipgloss.Color("#1C6C66"),
	AccentDim:     lipgloss.Color("#DDF1E4"),
	Green:         lipgloss.Color("#66800B"),
	GreenBright:   lipgloss.Color("#536907"),
	Orange:        lipgloss.Color("#BC5215"),
	Red:           lipgloss.Color("#AF3029"),
	Blue:          lipgloss.Color("#205EA6"),
	BlueBright:    lipgloss.Color("#1A4F8C"),
	Yellow:        lipgloss.Color("#AD8301"),
	Magenta:       lipgloss.Color("#A02F6F"),
	Cyan:          lipgloss.Color("#24837B"),
	Urgent:        lipgloss.Color("#AF3029"),
	Soon:          lipgloss.Color("#AD8301"),
	Later:         lipgloss.Color("#66800B"),
	Saved:         lipgloss.Color("#24837B"),
}

// TerminalLight is the ANSI palette for light terminal backgrounds.
var TerminalLight = Theme{
	Name:          "terminal-light",
	Pair:          "terminal",
	Background:    lipgloss.Color("15"),
	Surface:       lipgloss.Color("15"),
	SurfaceHover:  lipgloss.Color("7"),
	SurfaceBright: lipgloss.Color("7"),
	Border:        lipgloss.Color("7"),
	BorderBright:  lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("4"),
	TextDim:       lipgloss.Color("7"),
	TextMuted:     lipgloss.Color("8"),
	TextPrimary:   lipgloss.Color("0"),
	Accent:        lipgloss.Color("4"),
	AccentBright:  lipgloss.Color("12"),
	AccentDim:     lipgloss.Color("15"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("2"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
	Urgent:        lipgloss.Color("1"),
	Soon:          lipgloss.Color("3"),
	Later:         lipgloss.Color("2"),
	Saved:         lipgloss.Color("6"),
}

// All lists the selectable themes, dark themes first in each pair.
var All = []Theme{FlexokiDark, FlexokiLight, Terminal, TerminalLight}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
