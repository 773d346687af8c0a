package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name    string
	Header  lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Muted   lipgloss.Color
	Running lipgloss.Color
	Paused  lipgloss.Color
	Graph   lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:    "ocean",
		Header:  lipgloss.Color("#00a8cc"),
		Label:   lipgloss.Color("#4488aa"),
		Value:   lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#335566"),
		Running: lipgloss.Color("#00ff88"),
		Paused:  lipgloss.Color("#ffcc00"),
		Graph:   lipgloss.Color("#0077be"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Header:  lipgloss.Color("#ffffff"),
		Label:   lipgloss.Color("#888888"),
		Value:   lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#555555"),
		Running: lipgloss.Color("#00ff00"),
		Paused:  lipgloss.Color("#ffaa00"),
		Graph:   lipgloss.Color("#cccccc"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Header:  lipgloss.Color("#00ff00"),
		Label:   lipgloss.Color("#00aa00"),
		Value:   lipgloss.Color("#88ff88"),
		Muted:   lipgloss.Color("#005500"),
		Running: lipgloss.Color("#88ff88"),
		Paused:  lipgloss.Color("#ffff00"),
		Graph:   lipgloss.Color("#00cc00"),
	}

	Themes = []Theme{
		ThemeOcean,
		ThemeMinimal,
		ThemeRetroGreen,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
