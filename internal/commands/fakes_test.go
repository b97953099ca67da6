package commands

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/leety/internal/api"
	"github.com/diogo/leety/internal/config"
	"github.com/diogo/leety/internal/logging"
	"github.com/diogo/leety/internal/models"
	"github.com/diogo/leety/internal/relay"
)

type fakeTab struct {
	sender  relay.Sender
	problem models.ProblemContext
	err     error
}

func (t *fakeTab) Sender() relay.Sender { return t.sender }

func (t *fakeTab) GetData(context.Context, relay.GetDataRequest) (relay.DataResponse, error) {
	if t.err != nil {
		return relay.DataResponse{}, t.err
	}
	return relay.DataResponse{Data: relay.NewProblemData(t.problem)}, nil
}

type fakeBrowser struct {
	tab    *fakeTab
	closed bool
}

func (b *fakeBrowser) ActiveTab(context.Context) (relay.Tab, error) {
	if b.tab == nil {
		return nil, nil
	}
	return b.tab, nil
}

func (b *fakeBrowser) Problem(context.Context) (relay.Sender, models.ProblemContext, error) {
	return b.tab.sender, b.tab.problem, b.tab.err
}

func (b *fakeBrowser) WatchLaunchers(ctx context.Context, _ *relay.Client, _ time.Duration) {
	<-ctx.Done()
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func twoSumTab() *fakeTab {
	return &fakeTab{
		sender: relay.Sender{TabID: "tab-1", Title: "1. Two Sum", URL: "https://leetcode.com/problems/two-sum/"},
		problem: models.ProblemContext{
			Title:         "1. Two Sum",
			Description:   "Given an array of integers nums and an integer target...",
			CurrentAnswer: "def twoSum(self, nums, target):\n    pass",
		},
	}
}

// testEnv is a Dependencies whose services are all in memory
type testEnv struct {
	deps    *Dependencies
	store   *config.MemoryCredentialStore
	gen     *api.MockClient
	browser *fakeBrowser
	cfg     config.Config

	// loaded is the configuration passed to NewGenerator, after flag overrides
	loaded     config.Config
	connectErr error
}

func newTestEnv(t *testing.T, key string) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Transcript.Dir = t.TempDir()
	cfg.Log.File = ""

	env := &testEnv{
		store:   config.NewMemoryCredentialStore(key),
		gen:     &api.MockClient{},
		browser: &fakeBrowser{tab: twoSumTab()},
		cfg:     cfg,
	}
	env.deps = &Dependencies{
		LoadConfig: func(string) (config.Config, error) { return env.cfg, nil },
		NewStore: func(config.Config) (config.CredentialStore, error) {
			return env.store, nil
		},
		NewGenerator: func(cfg config.Config, _ zerolog.Logger) (api.Client, error) {
			env.loaded = cfg
			return env.gen, nil
		},
		ConnectBrowser: func(context.Context, config.ScraperConfig, zerolog.Logger) (Browser, error) {
			if env.connectErr != nil {
				return nil, env.connectErr
			}
			return env.browser, nil
		},
		NewLogger: func(logging.Options) (zerolog.Logger, io.Closer, error) {
			return zerolog.Nop(), nopCloser{}, nil
		},
	}
	return env
}

// run executes the command tree with args and returns stdout and stderr
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return execute(t, e.deps, stdin, args...)
}

func execute(t *testing.T, deps *Dependencies, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd(deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
