package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/leety/internal/models"
)

// Markdown renders markdown for the terminal with a renderer borrowed from
// the pool
func Markdown(content string, opts Options) (string, error) {
	tr, err := pooled.acquire(opts)
	if err != nil {
		return "", err
	}
	defer pooled.release(opts, tr)
	return tr.Render(content)
}

var copyLabel = lipgloss.NewStyle().Faint(true)

// Answer renders an assistant answer for the terminal, labelling each code
// block with its copy index. Blocks are rendered one segment at a time so a
// broken fence cannot swallow the rest of the answer.
func Answer(answer string, opts Options) (string, error) {
	var parts []string
	code := 0
	for _, seg := range Split(answer) {
		src := seg.Text
		if seg.Kind == SegmentCode {
			src = "```" + seg.Lang + "\n" + seg.Text + "\n```"
		}
		out, err := Markdown(src, opts)
		if err != nil {
			return "", err
		}
		out = strings.TrimRight(out, "\n")
		if seg.Kind == SegmentCode {
			code++
			out += "\n" + copyLabel.Render(fmt.Sprintf("  [code %d]", code))
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n"), nil
}

// Message renders a conversation message for the terminal by kind. Errors
// from glamour fall back to the raw content.
func Message(msg models.Message, opts Options) string {
	if msg.Kind != models.KindMarkdown {
		return msg.Content
	}
	out, err := Answer(msg.Content, opts)
	if err != nil {
		return msg.Content
	}
	return out
}
