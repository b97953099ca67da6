package scraper

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/diogo/leety/internal/browser"
)

func TestIsProblemURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://leetcode.com/problems/two-sum/", true},
		{"https://leetcode.com/problems/two-sum/description/", true},
		{"https://leetcode.cn/problems/two-sum/", true},
		{"https://www.leetcode.com/problems/two-sum/", true},
		{"https://leetcode.com/problemset/", false},
		{"https://leetcode.com/", false},
		{"https://notleetcode.com/problems/two-sum/", false},
		{"about:blank", false},
		{"::bad", false},
	}

	for _, tt := range tests {
		if got := IsProblemURL(tt.url); got != tt.want {
			t.Errorf("IsProblemURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestPickActive(t *testing.T) {
	const (
		a = "https://leetcode.com/problems/two-sum/"
		b = "https://leetcode.com/problems/add-two-numbers/"
		c = "https://leetcode.com/problemset/"
	)
	tests := []struct {
		name  string
		cands []candidate
		want  int
	}{
		{"none", nil, -1},
		{"no problem pages", []candidate{{URL: c, Visible: true, Focused: true}}, -1},
		{"first problem page", []candidate{{URL: c}, {URL: a}, {URL: b}}, 1},
		{"visible wins", []candidate{{URL: a}, {URL: b, Visible: true}}, 1},
		{"focused wins", []candidate{{URL: a, Visible: true}, {URL: b, Visible: true, Focused: true}}, 1},
		{"focus without visibility", []candidate{{URL: a, Focused: true}, {URL: b, Visible: true}}, 1},
		{"tie keeps order", []candidate{{URL: a, Visible: true}, {URL: b, Visible: true}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickActive(tt.cands); got != tt.want {
				t.Errorf("pickActive() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCookieParams(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	params := cookieParams([]browser.Cookie{
		{Name: browser.SessionCookie, Value: "abc", Domain: ".leetcode.com", Path: "/", Expires: expires, Secure: true, HTTPOnly: true},
		{Name: "csrftoken", Value: "xyz", Domain: "leetcode.com"},
	})

	if len(params) != 2 {
		t.Fatalf("len(params) = %d, want 2", len(params))
	}
	s := params[0]
	if s.Name != browser.SessionCookie || s.Value != "abc" || !s.Secure || !s.HTTPOnly {
		t.Errorf("session cookie = %+v", s)
	}
	if s.Expires != proto.TimeSinceEpoch(expires.Unix()) {
		t.Errorf("Expires = %v", s.Expires)
	}
	if params[1].Path != "/" {
		t.Errorf("Path = %q, want /", params[1].Path)
	}
	if params[1].Expires != 0 {
		t.Errorf("session-only cookie got Expires = %v", params[1].Expires)
	}
}
