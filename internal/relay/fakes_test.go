package relay

import (
	"context"
	"io"
	"strings"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/diogo/leety/internal/config"
)

type fakeTab struct {
	sender Sender
	resp   DataResponse
	err    error

	mu    sync.Mutex
	calls int
}

func (t *fakeTab) Sender() Sender { return t.sender }

func (t *fakeTab) GetData(_ context.Context, _ GetDataRequest) (DataResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	return t.resp, t.err
}

type fakeTabs struct {
	tab   Tab
	err   error
	mu    sync.Mutex
	calls int
}

func (f *fakeTabs) ActiveTab(context.Context) (Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.tab, f.err
}

type failingStore struct {
	err error
}

func (s failingStore) Get(context.Context) (string, bool, error) { return "", false, s.err }
func (s failingStore) Set(context.Context, string) error         { return s.err }

// stubDoer answers every request with a fixed status and body
type stubDoer struct {
	status int
	body   string

	mu       sync.Mutex
	requests []string
}

func (d *stubDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var body string
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}
	d.requests = append(d.requests, body)
	return &fhttp.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Header:     make(fhttp.Header),
	}, nil
}

func newStore(key string) *config.MemoryCredentialStore {
	return config.NewMemoryCredentialStore(key)
}

func twoSumTab() *fakeTab {
	return &fakeTab{
		sender: Sender{TabID: "tab-1", Title: "Two Sum - LeetCode", URL: "https://leetcode.com/problems/two-sum/"},
		resp: DataResponse{Data: &ProblemData{
			Question:    "Two Sum",
			Description: "Given an array of integers nums and an integer target...",
			UserAns:     "def f(): pass",
		}},
	}
}
