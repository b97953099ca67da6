package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/diogo/leety/internal/models"
)

var (
	// tables, strikethrough, task lists, autolinks, emoji shorthand and
	// single-newline breaks
	converter = goldmark.New(
		goldmark.WithExtensions(extension.GFM, emoji.New(emoji.WithRenderingMethod(emoji.Unicode))),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)

	policy = newPolicy()

	langPattern = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+$`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[A-Za-z0-9_+#.-]+$`)).OnElements("code")
	return p
}

// ProseHTML converts a markdown prose segment to sanitized HTML
func ProseHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// CodeHTML renders a code segment as a block with a copy button. index
// identifies the block for the copy target, counting from 1 like the
// terminal labels.
func CodeHTML(seg Segment, index int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="code-block"><button class="copy" data-copy="%d">Copy</button><pre><code`, index)
	if langPattern.MatchString(seg.Lang) {
		fmt.Fprintf(&b, ` class="language-%s"`, seg.Lang)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(seg.Text))
	b.WriteString("</code></pre></div>")
	return b.String()
}

// HTML renders a whole answer: prose through goldmark and bluemonday, code
// as copyable blocks
func HTML(answer string) (string, error) {
	var b strings.Builder
	code := 0
	for _, seg := range Split(answer) {
		if seg.Kind == SegmentCode {
			code++
			b.WriteString(CodeHTML(seg, code))
			continue
		}
		prose, err := ProseHTML(seg.Text)
		if err != nil {
			return "", err
		}
		b.WriteString(prose)
	}
	return b.String(), nil
}

// ErrorHTML renders an error string with the fixed error styling
func ErrorHTML(message string) string {
	return `<p class="error">` + html.EscapeString(message) + `</p>`
}

// MessageHTML renders one conversation message according to its kind
func MessageHTML(msg models.Message) (string, error) {
	switch msg.Kind {
	case models.KindMarkdown:
		return HTML(msg.Content)
	case models.KindHTMLError:
		return ErrorHTML(msg.Content), nil
	default:
		text := html.EscapeString(msg.Content)
		return "<p>" + strings.ReplaceAll(text, "\n", "<br>") + "</p>", nil
	}
}
