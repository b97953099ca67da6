// Package browser reads LeetCode session cookies from installed web browsers
// so a browser launched by leety opens problems already signed in.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"
)

// LeetCodeDomain is matched against cookie domains
const LeetCodeDomain = "leetcode.com"

// SessionCookie is the cookie that proves a signed-in LeetCode session
const SessionCookie = "LEETCODE_SESSION"

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// browserSpec describes how a supported browser is named on the command
// line and recognized among kooky's cookie stores
type browserSpec struct {
	id      SupportedBrowser
	aliases []string
	// match reports whether a lower-cased kooky browser name is this browser
	match func(name string) bool
}

func contains(sub string) func(string) bool {
	return func(name string) bool { return strings.Contains(name, sub) }
}

// specs lists the browsers in the order auto detection tries them
var specs = []browserSpec{
	{BrowserChrome, []string{"chrome", "google-chrome"}, func(name string) bool {
		return strings.Contains(name, "chrome") && !strings.Contains(name, "chromium")
	}},
	{BrowserFirefox, []string{"firefox", "mozilla", "mozilla-firefox"}, contains("firefox")},
	{BrowserEdge, []string{"edge", "microsoft-edge", "msedge"}, contains("edge")},
	{BrowserChromium, []string{"chromium"}, contains("chromium")},
	{BrowserOpera, []string{"opera"}, contains("opera")},
}

func specFor(b SupportedBrowser) (browserSpec, bool) {
	for _, sp := range specs {
		if sp.id == b {
			return sp, true
		}
	}
	return browserSpec{}, false
}

// AllSupportedBrowsers returns every browser cookies can be read from
func AllSupportedBrowsers() []SupportedBrowser {
	out := make([]SupportedBrowser, len(specs))
	for i, sp := range specs {
		out[i] = sp.id
	}
	return out
}

// String returns the string representation of the browser
func (b SupportedBrowser) String() string {
	return string(b)
}

// ParseBrowser parses a browser name or alias. "" and "auto" select auto detection.
func ParseBrowser(s string) (SupportedBrowser, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(BrowserAuto) {
		return BrowserAuto, nil
	}
	for _, sp := range specs {
		for _, alias := range sp.aliases {
			if s == alias {
				return sp.id, nil
			}
		}
	}
	return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
}

// Cookie is a browser-independent copy of a stored cookie
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
}

// ExtractResult contains the result of cookie extraction
type ExtractResult struct {
	Cookies     []Cookie
	BrowserName string
}

// ExtractLeetCodeCookies returns the leetcode.com cookies of the first
// browser profile holding a session
func ExtractLeetCodeCookies(ctx context.Context, browser SupportedBrowser) (*ExtractResult, error) {
	if browser == BrowserAuto {
		return extractFromAllBrowsers(ctx)
	}
	return extractFromBrowser(ctx, browser)
}

func extractFromAllBrowsers(ctx context.Context) (*ExtractResult, error) {
	var lastErr error
	for _, sp := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := extractFromBrowser(ctx, sp.id)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("could not find a LeetCode session in any browser: %w", lastErr)
}

// extractFromBrowser tries every profile of browser until one has a session
func extractFromBrowser(ctx context.Context, browser SupportedBrowser) (*ExtractResult, error) {
	var matching []kooky.CookieStore
	var browserName string

	for _, store := range kooky.FindAllCookieStores(ctx) {
		name := store.Browser()
		if matchesBrowser(name, browser) {
			matching = append(matching, store)
			if browserName == "" {
				browserName = name
			}
			continue
		}
		_ = store.Close()
	}
	defer func() {
		for _, s := range matching {
			_ = s.Close()
		}
	}()

	if len(matching) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}

	var lastErr error
	for _, store := range matching {
		displayName := browserName
		if profile := store.Profile(); profile != "" {
			displayName = fmt.Sprintf("%s (profile: %s)", browserName, profile)
		}

		cookies := store.TraverseCookies(
			kooky.Valid,
			kooky.DomainContains(LeetCodeDomain),
		).OnlyCookies()

		result, err := collectSession(ctx, cookies, displayName)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// collectSession copies the LeetCode cookies from seq and checks that a
// session cookie is among them
func collectSession(ctx context.Context, seq kooky.CookieSeq, displayName string) (*ExtractResult, error) {
	var cookies []Cookie
	hasSession := false

	for c := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c == nil || !strings.HasSuffix(strings.TrimPrefix(c.Domain, "."), LeetCodeDomain) {
			continue
		}
		if c.Name == SessionCookie && c.Value != "" {
			hasSession = true
		}
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}

	if !hasSession {
		return nil, fmt.Errorf("cookie %s not found in %s. Please ensure you are logged into leetcode.com", SessionCookie, displayName)
	}

	return &ExtractResult{Cookies: cookies, BrowserName: displayName}, nil
}

// matchesBrowser checks if a kooky browser name is the target browser
func matchesBrowser(browserName string, target SupportedBrowser) bool {
	sp, ok := specFor(target)
	return ok && sp.match(strings.ToLower(browserName))
}
