package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for the panel
type Theme struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// palette builds a Theme from hex colors listed in field order:
// surface, border, primary, secondary, accent, warning, error, text, dim, mute
func palette(name, description string, hex ...string) Theme {
	c := make([]lipgloss.Color, len(hex))
	for i, h := range hex {
		c[i] = lipgloss.Color(h)
	}
	return Theme{
		Name:        name,
		Description: description,
		Surface:     c[0],
		Border:      c[1],
		Primary:     c[2],
		Secondary:   c[3],
		Accent:      c[4],
		Warning:     c[5],
		Error:       c[6],
		Text:        c[7],
		TextDim:     c[8],
		TextMute:    c[9],
	}
}

// Built-in themes
var (
	TokyoNightTheme = palette("tokyonight", "Tokyo Night, dark with blue accents",
		"#24283b", "#414868", "#7aa2f7", "#9ece6a", "#bb9af7", "#e0af68", "#f7768e", "#c0caf5", "#565f89", "#3b4261")

	CatppuccinMochaTheme = palette("catppuccin", "Catppuccin Mocha, warm pastels",
		"#313244", "#45475a", "#89b4fa", "#a6e3a1", "#cba6f7", "#f9e2af", "#f38ba8", "#cdd6f4", "#6c7086", "#45475a")

	NordTheme = palette("nord", "Nord, cool arctic tones",
		"#3b4252", "#4c566a", "#88c0d0", "#a3be8c", "#b48ead", "#ebcb8b", "#bf616a", "#eceff4", "#7b88a1", "#4c566a")

	DraculaTheme = palette("dracula", "Dracula, vibrant dark",
		"#44475a", "#6272a4", "#8be9fd", "#50fa7b", "#ff79c6", "#f1fa8c", "#ff5555", "#f8f8f2", "#6272a4", "#44475a")

	// LeetCodeTheme follows the site's dark editor colors
	LeetCodeTheme = palette("leetcode", "LeetCode, orange on dark gray",
		"#282828", "#3e3e3e", "#ffa116", "#2cbb5d", "#007aff", "#ffc01e", "#ef4743", "#eff1f6", "#8a8a8a", "#4a4a4a")
)

// themes lists the built-in themes, default first
var themes = []Theme{
	TokyoNightTheme,
	CatppuccinMochaTheme,
	NordTheme,
	DraculaTheme,
	LeetCodeTheme,
}

var currentTheme = themes[0]

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetTheme activates the theme called name and rebuilds the styles.
// Unknown names leave the theme unchanged.
func SetTheme(name string) bool {
	theme, ok := ThemeByName(name)
	if !ok {
		return false
	}
	currentTheme = theme
	UpdateTheme()
	return true
}

// ThemeByName returns a built-in theme
func ThemeByName(name string) (Theme, bool) {
	for _, t := range themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeNames returns the built-in theme names
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
