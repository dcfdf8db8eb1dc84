package viz

import "github.com/charmbracelet/lipgloss"

// Theme names the colors by role rather than hue.
type Theme struct {
	Name      string
	Frame     lipgloss.Color
	Heading   lipgloss.Color
	Highlight lipgloss.Color
	Value     lipgloss.Color
	Label     lipgloss.Color
	Ok        lipgloss.Color
	Warn      lipgloss.Color
	Fail      lipgloss.Color
}

var (
	ThemeTerminal = Theme{
		Name:      "terminal",
		Frame:     lipgloss.Color("#444466"),
		Heading:   lipgloss.Color("#00ffff"),
		Highlight: lipgloss.Color("#ff00ff"),
		Value:     lipgloss.Color("#00ccff"),
		Label:     lipgloss.Color("#888899"),
		Ok:        lipgloss.Color("#00ff88"),
		Warn:      lipgloss.Color("#ffaa00"),
		Fail:      lipgloss.Color("#ff4444"),
	}

	// Dark text for light backgrounds and printed reports.
	ThemePaper = Theme{
		Name:      "paper",
		Frame:     lipgloss.Color("#999999"),
		Heading:   lipgloss.Color("#1a237e"),
		Highlight: lipgloss.Color("#c62828"),
		Value:     lipgloss.Color("#000000"),
		Label:     lipgloss.Color("#555555"),
		Ok:        lipgloss.Color("#2e7d32"),
		Warn:      lipgloss.Color("#ef6c00"),
		Fail:      lipgloss.Color("#b71c1c"),
	}

	ThemePhosphor = Theme{
		Name:      "phosphor",
		Frame:     lipgloss.Color("#005500"),
		Heading:   lipgloss.Color("#88ff88"),
		Highlight: lipgloss.Color("#ffff00"),
		Value:     lipgloss.Color("#00ff00"),
		Label:     lipgloss.Color("#00aa00"),
		Ok:        lipgloss.Color("#88ff88"),
		Warn:      lipgloss.Color("#ffff00"),
		Fail:      lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemeTerminal

	Themes = []Theme{ThemeTerminal, ThemePaper, ThemePhosphor}
)

// GetTheme returns the named theme, or the terminal theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeTerminal
}

func SetTheme(name string) {
	ApplyTheme(GetTheme(name))
}

// NextTheme returns the theme after the current one.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
