package browser

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/browserutils/kooky"
)

func TestParseBrowser(t *testing.T) {
	tests := []struct {
		input    string
		expected SupportedBrowser
		wantErr  bool
	}{
		{"auto", BrowserAuto, false},
		{"", BrowserAuto, false},
		{"Chrome", BrowserChrome, false},
		{"google-chrome", BrowserChrome, false},
		{"chromium", BrowserChromium, false},
		{"mozilla", BrowserFirefox, false},
		{"msedge", BrowserEdge, false},
		{"opera", BrowserOpera, false},
		{"safari", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseBrowser(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseBrowser(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseBrowser(%q) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParseBrowser(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestAllSupportedBrowsers(t *testing.T) {
	browsers := AllSupportedBrowsers()
	if len(browsers) != 5 {
		t.Errorf("len(AllSupportedBrowsers()) = %d, want 5", len(browsers))
	}
	if slices.Contains(browsers, BrowserAuto) {
		t.Error("auto is a selector, not a browser")
	}
}

func TestMatchesBrowser(t *testing.T) {
	tests := []struct {
		browserName string
		target      SupportedBrowser
		expected    bool
	}{
		{"Google Chrome", BrowserChrome, true},
		{"chromium", BrowserChrome, false},
		{"Chromium", BrowserChromium, true},
		{"Mozilla Firefox", BrowserFirefox, true},
		{"Microsoft Edge", BrowserEdge, true},
		{"Opera", BrowserOpera, true},
		{"safari", BrowserChrome, false},
		{"", BrowserChrome, false},
	}

	for _, tt := range tests {
		t.Run(tt.browserName+"_"+tt.target.String(), func(t *testing.T) {
			if got := matchesBrowser(tt.browserName, tt.target); got != tt.expected {
				t.Errorf("matchesBrowser(%q, %v) = %v, want %v", tt.browserName, tt.target, got, tt.expected)
			}
		})
	}
}

func cookie(name, value, domain string) *kooky.Cookie {
	return &kooky.Cookie{Cookie: http.Cookie{Name: name, Value: value, Domain: domain, Path: "/"}}
}

// cookieSeq yields cookies the way a kooky cookie store traversal does
func cookieSeq(cookies ...*kooky.Cookie) kooky.CookieSeq {
	return func(yield func(*kooky.Cookie, error) bool) {
		for _, c := range cookies {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func TestCollectSession(t *testing.T) {
	seq := cookieSeq(
		cookie("csrftoken", "c", ".leetcode.com"),
		cookie(SessionCookie, "s", ".leetcode.com"),
		cookie("NID", "x", ".google.com"),
		nil,
	)

	result, err := collectSession(context.Background(), seq, "Chrome")
	if err != nil {
		t.Fatalf("collectSession() error = %v", err)
	}
	if len(result.Cookies) != 2 {
		t.Fatalf("len(Cookies) = %d, want 2", len(result.Cookies))
	}
	if result.Cookies[1].Name != SessionCookie || result.Cookies[1].Path != "/" {
		t.Errorf("unexpected cookie: %+v", result.Cookies[1])
	}
	if result.BrowserName != "Chrome" {
		t.Errorf("BrowserName = %s", result.BrowserName)
	}
}

func TestCollectSessionWithoutLogin(t *testing.T) {
	seq := cookieSeq(cookie("csrftoken", "c", "leetcode.com"))

	_, err := collectSession(context.Background(), seq, "Firefox (profile: default)")
	if err == nil || !strings.Contains(err.Error(), SessionCookie) {
		t.Errorf("expected error naming %s, got %v", SessionCookie, err)
	}
}

func TestCollectSessionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq := cookieSeq(cookie(SessionCookie, "s", ".leetcode.com"))
	if _, err := collectSession(ctx, seq, "Chrome"); err == nil {
		t.Error("expected context error")
	}
}

func TestExtractLeetCodeCookies_InvalidBrowser(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := ExtractLeetCodeCookies(ctx, "nonexistent"); err == nil {
		t.Error("ExtractLeetCodeCookies with nonexistent browser should return error")
	}
}
