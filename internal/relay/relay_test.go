package relay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/diogo/leety/internal/api"
	apierrors "github.com/diogo/leety/internal/errors"
	"github.com/diogo/leety/internal/models"
)

func TestChatWithoutCredential(t *testing.T) {
	tabs := &fakeTabs{tab: twoSumTab()}
	gen := &api.MockClient{}
	r := New(newStore(""), tabs, gen)

	resp, err := r.Chat(context.Background(), ChatRequest{UserPrompt: "give me a hint"})
	require.NoError(t, err)

	assert.Equal(t, MsgKeyNotSet, resp.Output)
	assert.True(t, resp.Error)
	assert.Zero(t, tabs.calls, "tabs must not be queried without a key")
	_, generated := gen.Calls()
	assert.Zero(t, generated, "generator must not be called without a key")
}

func TestChatTwoSumScenario(t *testing.T) {
	doer := &stubDoer{status: 200, body: `{"candidates":[{"content":{"parts":[{"text":"Try a hash map."}]}}]}`}
	gen, err := api.NewClient(api.WithHTTPClient(doer))
	require.NoError(t, err)

	tab := twoSumTab()
	r := New(newStore("k"), &fakeTabs{tab: tab}, gen)

	resp, err := r.Chat(context.Background(), ChatRequest{UserPrompt: "give me a hint"})
	require.NoError(t, err)
	assert.Equal(t, ChatResponse{Output: "Try a hash map."}, resp)

	require.Len(t, doer.requests, 1)
	body := doer.requests[0]
	prompt := gjson.Get(body, "contents.0.parts.0.text").String()
	assert.Contains(t, prompt, "Two Sum")
	assert.Contains(t, prompt, "Given an array of integers nums and an integer target...")
	assert.Contains(t, prompt, "def f(): pass")
	assert.Contains(t, prompt, "give me a hint")
	assert.Equal(t, SystemPrompt, gjson.Get(body, "systemInstruction.parts.0.text").String())
	assert.Equal(t, 1, tab.calls)
}

func TestChatServerError(t *testing.T) {
	doer := &stubDoer{status: 500, body: `{"error":{"code":500,"message":"internal"}}`}
	gen, err := api.NewClient(api.WithHTTPClient(doer))
	require.NoError(t, err)

	r := New(newStore("k"), &fakeTabs{tab: twoSumTab()}, gen)

	resp, err := r.Chat(context.Background(), ChatRequest{UserPrompt: "hint"})
	require.NoError(t, err)
	assert.True(t, resp.Error)
	assert.True(t, strings.HasPrefix(resp.Output, "An error occurred. Please ensure your API Key is valid"), resp.Output)
	assert.Contains(t, resp.Output, "status: 500")
}

func TestChatFailures(t *testing.T) {
	tests := []struct {
		name   string
		tabs   *fakeTabs
		gen    *api.MockClient
		want   string
		prefix bool
	}{
		{
			name: "no active tab",
			tabs: &fakeTabs{},
			gen:  &api.MockClient{},
			want: MsgNoActiveTab,
		},
		{
			name: "tab lookup failed",
			tabs: &fakeTabs{err: errors.New("browser disconnected")},
			gen:  &api.MockClient{},
			want: MsgNoActiveTab,
		},
		{
			name: "no data",
			tabs: &fakeTabs{tab: &fakeTab{}},
			gen:  &api.MockClient{},
			want: MsgNoPageData,
		},
		{
			name: "page did not respond",
			tabs: &fakeTabs{tab: &fakeTab{err: errors.New("target closed")}},
			gen:  &api.MockClient{},
			want: MsgNoPageData,
		},
		{
			name: "missing element",
			tabs: &fakeTabs{tab: &fakeTab{err: apierrors.NewDOMElementError("problem description", "div", nil)}},
			gen:  &api.MockClient{},
			want: "Error: Could not read the problem from the page: problem description not found.",
		},
		{
			name: "malformed response",
			tabs: &fakeTabs{tab: twoSumTab()},
			gen:  &api.MockClient{GenerateContentErr: apierrors.NewParseError("no candidates found", "candidates")},
			want: "Error: Gemini returned a malformed response: no candidates found",
		},
		{
			name: "empty output",
			tabs: &fakeTabs{tab: twoSumTab()},
			gen:  &api.MockClient{GenerateContentVal: &models.ModelOutput{}},
			want: "Error: Gemini returned a malformed response: no candidates found",
		},
		{
			name:   "rejected key",
			tabs:   &fakeTabs{tab: twoSumTab()},
			gen:    &api.MockClient{GenerateContentErr: apierrors.NewAuthError(403, "")},
			want:   "An error occurred. Please ensure your API Key is valid and has access to the Gemini API. Error: ",
			prefix: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(newStore("k"), tt.tabs, tt.gen)

			resp, err := r.Chat(context.Background(), ChatRequest{UserPrompt: "hint"})
			require.NoError(t, err)
			assert.True(t, resp.Error)
			if tt.prefix {
				assert.True(t, strings.HasPrefix(resp.Output, tt.want), resp.Output)
			} else {
				assert.Equal(t, tt.want, resp.Output)
			}
		})
	}
}

func TestChatStoreFailure(t *testing.T) {
	tabs := &fakeTabs{tab: twoSumTab()}
	r := New(failingStore{err: errors.New("disk on fire")}, tabs, &api.MockClient{})

	resp, err := r.Chat(context.Background(), ChatRequest{UserPrompt: "hint"})
	require.NoError(t, err)
	assert.True(t, resp.Error)
	assert.Contains(t, resp.Output, "disk on fire")
	assert.Zero(t, tabs.calls)
}

func TestChatPassesModel(t *testing.T) {
	gen := &api.MockClient{}
	r := New(newStore("k"), &fakeTabs{tab: twoSumTab()}, gen, WithModel(models.Model25Pro))

	_, err := r.Chat(context.Background(), ChatRequest{UserPrompt: "hint"})
	require.NoError(t, err)
	assert.Equal(t, models.Model25Pro, gen.LastRequest.Model)
	assert.Equal(t, "k", gen.LastKey)
}

func TestVerifyAPIKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"accepted", nil, true},
		{"rejected", apierrors.NewAuthError(401, ""), false},
		{"transport failure", apierrors.NewNetworkError("verify api key", "", errors.New("no route to host")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore("")
			r := New(store, &fakeTabs{}, &api.MockClient{VerifyErr: tt.err})

			resp, err := r.VerifyAPIKey(context.Background(), VerifyAPIKeyRequest{APIKey: "candidate"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Success)

			_, ok, _ := store.Get(context.Background())
			assert.False(t, ok, "verification must not touch storage")
		})
	}
}

func TestSaveThenGetAPIKey(t *testing.T) {
	r := New(newStore(""), &fakeTabs{}, &api.MockClient{})
	ctx := context.Background()

	got, err := r.GetAPIKey(ctx, GetAPIKeyRequest{})
	require.NoError(t, err)
	assert.Empty(t, got.APIKey)

	saved, err := r.SaveAPIKey(ctx, SaveAPIKeyRequest{APIKey: "X"})
	require.NoError(t, err)
	assert.True(t, saved.Success)

	got, err = r.GetAPIKey(ctx, GetAPIKeyRequest{})
	require.NoError(t, err)
	assert.Equal(t, GetAPIKeyResponse{APIKey: "X"}, got)
}

func TestSaveAPIKeyFailure(t *testing.T) {
	r := New(failingStore{err: errors.New("read-only")}, &fakeTabs{}, &api.MockClient{})

	_, err := r.SaveAPIKey(context.Background(), SaveAPIKeyRequest{APIKey: "X"})
	assert.Error(t, err)

	got, err := r.GetAPIKey(context.Background(), GetAPIKeyRequest{})
	require.NoError(t, err)
	assert.Empty(t, got.APIKey)
}

func TestOpenSidePanel(t *testing.T) {
	var opened []Sender
	host := HostFunc(func(_ context.Context, s Sender) error {
		opened = append(opened, s)
		return nil
	})
	r := New(newStore(""), &fakeTabs{}, &api.MockClient{}, WithHost(host))

	_, err := r.OpenSidePanel(context.Background(), OpenSidePanelRequest{})
	require.NoError(t, err)
	assert.Empty(t, opened, "a request without a sender page is ignored")

	_, err = r.OpenSidePanel(context.Background(), OpenSidePanelRequest{Sender: &Sender{TabID: "t"}})
	require.NoError(t, err)
	assert.Equal(t, []Sender{{TabID: "t"}}, opened)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(models.ProblemContext{Title: "Two Sum", Description: "desc", CurrentAnswer: "code"}, "why?")

	assert.Equal(t, "Here is the LeetCode problem:\n## Problem: Two Sum\ndesc\n---\nHere is my current code:\ncode\n---\nMy question is: why?\n", prompt)
}
