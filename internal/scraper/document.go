package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// rodDocument reads a live page. Every lookup waits at most timeout for
// the element to appear.
type rodDocument struct {
	page    *rod.Page
	timeout time.Duration
}

func (d *rodDocument) bound(ctx context.Context) *rod.Page {
	p := d.page.Context(ctx)
	if d.timeout > 0 {
		p = p.Timeout(d.timeout)
	}
	return p
}

func (d *rodDocument) Text(ctx context.Context, selector string) (string, error) {
	el, err := d.bound(ctx).Element(selector)
	if err != nil {
		return "", lookupError(ctx, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", selector, err)
	}
	return text, nil
}

func (d *rodDocument) NthText(ctx context.Context, selector string, n int) (string, error) {
	p := d.bound(ctx)
	// Wait for the first match, then take the n-th of whatever is rendered
	if _, err := p.Element(selector); err != nil {
		return "", lookupError(ctx, err)
	}
	els, err := p.Elements(selector)
	if err != nil {
		return "", lookupError(ctx, err)
	}
	if n < 0 || n >= len(els) {
		return "", fmt.Errorf("%w: %d matches for %s", errNotFound, len(els), selector)
	}
	text, err := els[n].Text()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", selector, err)
	}
	return text, nil
}

func (d *rodDocument) Eval(ctx context.Context, js string) (gson.JSON, error) {
	res, err := d.bound(ctx).Eval(js)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

// lookupError maps a timed out element wait to errNotFound, leaving
// cancellation of the caller's context intact.
func lookupError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var notFound *rod.ElementNotFoundError
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", errNotFound, err)
	}
	return err
}
