package scraper

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/diogo/leety/internal/browser"
)

// cookieParams converts stored cookies to CDP form. Session cookies keep a
// zero expiry.
func cookieParams(cookies []browser.Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if !c.Expires.IsZero() {
			p.Expires = proto.TimeSinceEpoch(c.Expires.Unix())
		}
		params = append(params, p)
	}
	return params
}

// seedCookies copies the LeetCode session of an installed browser into b
func seedCookies(ctx context.Context, b *rod.Browser, from string) (string, int, error) {
	source, err := browser.ParseBrowser(from)
	if err != nil {
		return "", 0, err
	}
	result, err := browser.ExtractLeetCodeCookies(ctx, source)
	if err != nil {
		return "", 0, err
	}
	if err := b.SetCookies(cookieParams(result.Cookies)); err != nil {
		return "", 0, fmt.Errorf("failed to set cookies: %w", err)
	}
	return result.BrowserName, len(result.Cookies), nil
}
