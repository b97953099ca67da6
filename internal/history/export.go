// Package history exports panel conversations to transcript files.
package history

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/diogo/leety/internal/models"
	"github.com/diogo/leety/internal/render"
)

// Format is a transcript file format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown transcript format: %s", s)
	}
}

// Ext returns the file extension, with the dot
func (f Format) Ext() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatJSON:
		return ".json"
	default:
		return ".md"
	}
}

// Transcript is a snapshot of one panel conversation
type Transcript struct {
	Title     string
	Page      string
	Model     string
	CreatedAt time.Time
	Messages  []models.Message
}

// New snapshots msgs. A pending placeholder is left out.
func New(title, page, model string, msgs []models.Message) Transcript {
	t := Transcript{
		Title:     title,
		Page:      page,
		Model:     model,
		CreatedAt: time.Now(),
	}
	if t.Title == "" {
		t.Title = fmt.Sprintf("Chat %s", t.CreatedAt.Format("2006-01-02 15:04"))
	}
	for _, msg := range msgs {
		if !msg.Pending {
			t.Messages = append(t.Messages, msg)
		}
	}
	return t
}

func roleName(msg models.Message) string {
	if msg.IsAssistant() {
		return "Assistant"
	}
	return "User"
}

// Export renders t in format f
func Export(t Transcript, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(Markdown(t)), nil
	case FormatHTML:
		doc, err := HTML(t)
		return []byte(doc), err
	case FormatJSON:
		return JSON(t)
	default:
		return nil, fmt.Errorf("unknown transcript format: %s", f)
	}
}

// Markdown renders t as a markdown document
func Markdown(t Transcript) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# ")
	sb.WriteString(t.Title)
	sb.WriteString("\n\n")

	if t.Page != "" {
		sb.WriteString("**Page:** ")
		sb.WriteString(t.Page)
		sb.WriteString("\n")
	}
	if t.Model != "" {
		sb.WriteString("**Model:** ")
		sb.WriteString(t.Model)
		sb.WriteString("\n")
	}
	sb.WriteString("**Exported:** ")
	sb.WriteString(t.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(t.Messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range t.Messages {
		sb.WriteString("## ")
		sb.WriteString(roleName(msg))
		if !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if msg.Kind == models.KindHTMLError {
			sb.WriteString("> ")
			sb.WriteString(strings.ReplaceAll(msg.Content, "\n", "\n> "))
		} else {
			sb.WriteString(msg.Content)
		}
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
.message { margin: 1rem 0; padding: 0.5rem 1rem; border-radius: 0.5rem; }
.user { background: #eef3ff; }
.assistant { background: #f6f6f6; }
.error { color: #c0392b; }
.code-block { position: relative; }
.code-block .copy { position: absolute; right: 0.5rem; top: 0.5rem; }
pre { overflow-x: auto; padding: 0.75rem; background: #1e1e2e; color: #cdd6f4; }
</style>
</head>
<body>
`

// HTML renders t as a standalone HTML document. Message bodies go through
// the same sanitizing pipeline as the panel.
func HTML(t Transcript) (string, error) {
	var sb strings.Builder
	title := html.EscapeString(t.Title)

	fmt.Fprintf(&sb, htmlHead, title)
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", title)
	if t.Page != "" {
		page := html.EscapeString(t.Page)
		fmt.Fprintf(&sb, "<p class=\"page\"><a href=\"%s\">%s</a></p>\n", page, page)
	}

	for _, msg := range t.Messages {
		body, err := render.MessageHTML(msg)
		if err != nil {
			return "", fmt.Errorf("failed to render message %s: %w", msg.ID, err)
		}
		class := strings.ToLower(roleName(msg))
		fmt.Fprintf(&sb, "<section class=\"message %s\">\n<h2>%s</h2>\n%s\n</section>\n", class, roleName(msg), body)
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

// JSON renders t as indented JSON
func JSON(t Transcript) ([]byte, error) {
	type exportMessage struct {
		ID        string    `json:"id"`
		Role      string    `json:"role"`
		Kind      string    `json:"kind"`
		Content   string    `json:"content"`
		Timestamp time.Time `json:"timestamp"`
	}

	type exportTranscript struct {
		Title     string          `json:"title"`
		Page      string          `json:"page,omitempty"`
		Model     string          `json:"model,omitempty"`
		CreatedAt time.Time       `json:"created_at"`
		Messages  []exportMessage `json:"messages"`
	}

	export := exportTranscript{
		Title:     t.Title,
		Page:      t.Page,
		Model:     t.Model,
		CreatedAt: t.CreatedAt,
		Messages:  make([]exportMessage, len(t.Messages)),
	}
	for i, msg := range t.Messages {
		export.Messages[i] = exportMessage{
			ID:        msg.ID,
			Role:      string(msg.Sender),
			Kind:      string(msg.Kind),
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		}
	}

	return json.MarshalIndent(export, "", "  ")
}

// FormatRelativeTime formats a time as a relative string like "2h ago" or "yesterday"
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d min ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return t.Format("Jan 2, 2006")
	}
}
