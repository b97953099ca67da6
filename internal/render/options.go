// Package render turns assistant answers into displayable output: segments
// for the panel, sanitized HTML, and glamour-rendered terminal text.
package render

// Options configures the terminal renderer. Options is comparable and keys
// the renderer pool.
type Options struct {
	// Width is the word-wrap column
	Width int

	// Style is a glamour standard style ("dark", "light", "dracula",
	// "tokyo-night", "notty", ...) or a path to a JSON style file
	Style string

	// EnableEmoji converts :emoji: shorthand to unicode
	EnableEmoji bool

	// PreserveNewLines keeps single line breaks, matching the HTML path's hard wraps
	PreserveNewLines bool

	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy wrapping at width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
