package history

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/diogo/leety/internal/models"
)

func sampleTranscript() Transcript {
	user := models.NewUserMessage("How do I start Two Sum?")
	answer := models.Message{
		ID:        "a1",
		Sender:    models.SenderAssistant,
		Content:   "Use a **hash map**.\n\n```python\nseen = {}\n```",
		Kind:      models.KindMarkdown,
		CreatedAt: time.Now(),
	}
	failed := models.Message{
		ID:      "a2",
		Sender:  models.SenderAssistant,
		Content: "Error: No active tab found.",
		Kind:    models.KindHTMLError,
	}
	return New("1. Two Sum", "https://leetcode.com/problems/two-sum/", "gemini-2.0-flash",
		[]models.Message{user, answer, failed, models.NewPendingMessage()})
}

func TestNewDropsPending(t *testing.T) {
	tr := sampleTranscript()
	if len(tr.Messages) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(tr.Messages))
	}
	for _, msg := range tr.Messages {
		if msg.Pending {
			t.Error("pending message was exported")
		}
	}
}

func TestNewDefaultTitle(t *testing.T) {
	tr := New("", "", "", nil)
	if !strings.HasPrefix(tr.Title, "Chat ") {
		t.Errorf("Title = %q, want a dated default", tr.Title)
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleTranscript())

	for _, want := range []string{
		"# 1. Two Sum",
		"**Page:** https://leetcode.com/problems/two-sum/",
		"**Model:** gemini-2.0-flash",
		"**Messages:** 3",
		"## User",
		"## Assistant",
		"Use a **hash map**.",
		"> Error: No active tab found.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown() missing %q", want)
		}
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleTranscript())
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<h1>1. Two Sum</h1>",
		`<section class="message user">`,
		"<strong>hash map</strong>",
		`class="language-python"`,
		`<p class="error">Error: No active tab found.</p>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML() missing %q", want)
		}
	}
}

func TestHTMLEscapesTitle(t *testing.T) {
	tr := New("<script>alert(1)</script>", "", "", nil)
	out, err := HTML(tr)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<script>alert") {
		t.Error("title was not escaped")
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleTranscript())
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded struct {
		Title    string `json:"title"`
		Messages []struct {
			Role string `json:"role"`
			Kind string `json:"kind"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Title != "1. Two Sum" || len(decoded.Messages) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Messages[2].Kind != string(models.KindHTMLError) {
		t.Errorf("Kind = %q", decoded.Messages[2].Kind)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"", FormatMarkdown, false},
		{"HTML", FormatHTML, false},
		{"json", FormatJSON, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now, "just now"},
		{now.Add(-1 * time.Minute), "1 min ago"},
		{now.Add(-5 * time.Minute), "5 min ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-30 * time.Hour), "yesterday"},
		{now.Add(-3 * 24 * time.Hour), "3 days ago"},
		{now.Add(-8 * 24 * time.Hour), "1 week ago"},
	}

	for _, tt := range tests {
		if got := FormatRelativeTime(tt.t); got != tt.want {
			t.Errorf("FormatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFormatRelativeTime_OldDate(t *testing.T) {
	old := time.Date(2020, 3, 4, 0, 0, 0, 0, time.Local)
	if got := FormatRelativeTime(old); got != "Mar 4, 2020" {
		t.Errorf("FormatRelativeTime() = %q", got)
	}
}
