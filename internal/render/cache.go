package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// renderers pools glamour renderers per Options. A TermRenderer is not safe
// for concurrent Render calls, so each call borrows one.
type renderers struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool
}

var pooled = &renderers{pools: make(map[Options]*sync.Pool)}

func (r *renderers) pool(opts Options) *sync.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[opts]
	if !ok {
		p = &sync.Pool{}
		r.pools[opts] = p
	}
	return p
}

// acquire returns a pooled renderer for opts, creating one when the pool is empty
func (r *renderers) acquire(opts Options) (*glamour.TermRenderer, error) {
	if tr, ok := r.pool(opts).Get().(*glamour.TermRenderer); ok {
		return tr, nil
	}
	return newTermRenderer(opts)
}

func (r *renderers) release(opts Options, tr *glamour.TermRenderer) {
	r.pool(opts).Put(tr)
}

func (r *renderers) reset() {
	r.mu.Lock()
	r.pools = make(map[Options]*sync.Pool)
	r.mu.Unlock()
}

func (r *renderers) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

// IsStandardStyle reports whether style names one of glamour's bundled styles
func IsStandardStyle(style string) bool {
	_, ok := styles.DefaultStyles[style]
	return ok
}

func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithStylePath(opts.Style)
	if IsStandardStyle(opts.Style) {
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}

	trOpts := []glamour.TermRendererOption{
		styleOpt,
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		trOpts = append(trOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		trOpts = append(trOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(trOpts...)
}
