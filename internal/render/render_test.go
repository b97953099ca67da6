package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/leety/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 80, opts.Width)
	assert.Equal(t, "dark", opts.Style)
	assert.True(t, opts.EnableEmoji)
	assert.True(t, opts.PreserveNewLines)
	assert.True(t, opts.TableWrap)
	assert.False(t, opts.InlineTableLinks)
}

func TestOptionsCopies(t *testing.T) {
	base := DefaultOptions()
	narrow := base.WithWidth(40).WithStyle("light")

	// With* leaves the receiver alone
	assert.Equal(t, 80, base.Width)
	assert.Equal(t, "dark", base.Style)

	assert.Equal(t, 40, narrow.Width)
	assert.Equal(t, "light", narrow.Style)
	assert.True(t, narrow.EnableEmoji)
}

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		contains string
	}{
		{"heading", "# Hello World", 80, "Hello"},
		{"bold", "This is **bold** text", 80, "bold"},
		{"code block", "```go\nfmt.Println(\"hello\")\n```", 80, "Println"},
		{"table", "| A | B |\n|---|---|\n| 1 | 2 |", 80, "A"},
		{"narrow", "# Long heading that should wrap", 40, "Long"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := Markdown(tc.input, DefaultOptions().WithWidth(tc.width))
			require.NoError(t, err)
			assert.Contains(t, output, tc.contains)
		})
	}
}

func TestMarkdownEmoji(t *testing.T) {
	output, err := Markdown("Hello :smile: world", DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, output, ":smile:")

	noEmoji := DefaultOptions()
	noEmoji.EnableEmoji = false
	output, err = Markdown("Hello :smile: world", noEmoji)
	require.NoError(t, err)
	assert.Contains(t, output, ":smile:")
}

func TestAnswerLabelsCodeBlocks(t *testing.T) {
	answer := "Use a map.\n\n```python\nseen = {}\n```\n\nThen loop.\n\n```python\nfor n in nums: pass\n```"

	output, err := Answer(answer, DefaultOptions().WithStyle("notty"))
	require.NoError(t, err)
	for _, want := range []string{"Use a map.", "seen = {}", "[code 1]", "Then loop.", "[code 2]"} {
		assert.Contains(t, output, want)
	}
}

func TestMessage(t *testing.T) {
	opts := DefaultOptions().WithStyle("notty")

	plain := models.Message{Kind: models.KindPlain, Content: "**raw**"}
	assert.Equal(t, "**raw**", Message(plain, opts))

	failed := models.Message{Kind: models.KindHTMLError, Content: "Error: No active tab found."}
	assert.Equal(t, "Error: No active tab found.", Message(failed, opts))

	answer := models.Message{Kind: models.KindMarkdown, Content: "Try a **hash map**."}
	assert.Contains(t, Message(answer, opts), "hash map")
}
