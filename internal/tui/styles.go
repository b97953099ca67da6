// Package tui provides the terminal chat panel for leety.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/leety/internal/errors"
)

// sheet holds every panel style, derived from one Theme
type sheet struct {
	theme Theme

	header   lipgloss.Style
	title    lipgloss.Style
	subtitle lipgloss.Style
	hint     lipgloss.Style
	banner   lipgloss.Style
	messages lipgloss.Style

	userBubble      lipgloss.Style
	userLabel       lipgloss.Style
	assistantBubble lipgloss.Style
	assistantLabel  lipgloss.Style
	errorBubble     lipgloss.Style

	inputPanel lipgloss.Style
	inputLabel lipgloss.Style
	loading    lipgloss.Style

	status     lipgloss.Style
	statusKey  lipgloss.Style
	statusDesc lipgloss.Style
	notice     lipgloss.Style

	welcome      lipgloss.Style
	welcomeTitle lipgloss.Style
	welcomeIcon  lipgloss.Style

	modal      lipgloss.Style
	modalTitle lipgloss.Style
	modalText  lipgloss.Style
	modalError lipgloss.Style
}

// st is the active style sheet
var st = newSheet(CurrentTheme())

// Gradient colors for the loading animation, independent of the theme
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

// UpdateTheme rebuilds the style sheet from the current theme
func UpdateTheme() {
	st = newSheet(CurrentTheme())
}

func bubble(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func newSheet(t Theme) sheet {
	return sheet{
		theme: t,

		header:   lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 2),
		title:    fg(t.Primary).Bold(true),
		subtitle: fg(t.TextDim),
		hint:     fg(t.TextMute).Italic(true),
		banner:   fg(t.Surface).Background(t.Warning).Bold(true).Padding(0, 1),
		messages: lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(1),

		userBubble:      bubble(t.Secondary).MarginLeft(4),
		userLabel:       fg(t.Secondary).Bold(true).MarginLeft(4),
		assistantBubble: bubble(t.Primary).Foreground(t.Text).MarginRight(4),
		assistantLabel:  fg(t.Primary).Bold(true),
		errorBubble:     bubble(t.Error).Foreground(t.Error).MarginRight(4),

		inputPanel: bubble(t.Border),
		inputLabel: fg(t.Primary).Bold(true).MarginRight(1),
		loading:    fg(t.Accent).Bold(true),

		status:     fg(t.TextMute),
		statusKey:  fg(t.TextDim).Bold(true),
		statusDesc: fg(t.TextMute),
		notice:     fg(t.Secondary).Bold(true),

		welcome:      fg(t.TextDim).Align(lipgloss.Center),
		welcomeTitle: fg(t.Primary).Bold(true).Align(lipgloss.Center),
		welcomeIcon:  fg(t.Accent).Align(lipgloss.Center),

		modal:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(1, 2),
		modalTitle: fg(t.Text).Bold(true).MarginBottom(1),
		modalText:  fg(t.TextDim),
		modalError: fg(t.Error),
	}
}

// FormatError returns a styled error message with the details carried by
// the typed errors, plus a hint for the common failures.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := fg(st.theme.Error)
	dimStyle := fg(st.theme.TextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if kind := errors.KindOf(err); kind != errors.KindUnknown {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Kind: %s", kind)))
	}

	switch errors.KindOf(err) {
	case errors.KindCredentialMissing:
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'leety key set' to store your Gemini API key"))
	case errors.KindCredentialInvalid:
		sb.WriteString(dimStyle.Render("\n  Hint: The API key was rejected. Run 'leety key set' with a valid key"))
	case errors.KindTransport:
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection and try again"))
	case errors.KindContextUnavailable, errors.KindDOMMissingElement:
		sb.WriteString(dimStyle.Render("\n  Hint: Open a LeetCode problem page in the connected browser"))
	default:
		if body := errors.GetResponseBody(err); body != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		}
	}

	return sb.String()
}

// PrintError writes a styled error message to w
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err))
}
