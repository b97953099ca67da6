package scraper

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/leety/internal/api"
	"github.com/diogo/leety/internal/relay"
)

type fakeLauncherPage struct {
	sender    relay.Sender
	senderErr error
	outcome   string
	evalErr   error
	exposeErr error

	evals    int
	exposes  int
	lastArgs []any
	bindings map[string]func()
}

func (p *fakeLauncherPage) Sender() (relay.Sender, error) {
	return p.sender, p.senderErr
}

func (p *fakeLauncherPage) Expose(_ context.Context, name string, fn func()) error {
	p.exposes++
	if p.exposeErr != nil {
		return p.exposeErr
	}
	if p.bindings == nil {
		p.bindings = map[string]func(){}
	}
	p.bindings[name] = fn
	return nil
}

func (p *fakeLauncherPage) EvalString(_ context.Context, _ string, args ...any) (string, error) {
	p.evals++
	p.lastArgs = args
	return p.outcome, p.evalErr
}

func newLauncherBrowser(log zerolog.Logger) *Browser {
	return &Browser{
		sel:     DefaultSelectors(),
		log:     log,
		targets: map[string]*targetState{},
	}
}

func sweep(b *Browser, page *fakeLauncherPage, client *relay.Client, times int) {
	for i := 0; i < times; i++ {
		b.attachLaunchers(context.Background(), []launcherTarget{{sender: page.sender, page: page}}, client)
	}
}

const missingToolbarLog = "editor toolbar not found"

func TestAttachLaunchersOutcomes(t *testing.T) {
	tests := []struct {
		outcome      string
		wantEvals    int
		wantWarnings int
	}{
		{launcherInjected, 3, 0},
		{launcherPresent, 3, 0},
		{launcherMissing, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			var logs bytes.Buffer
			b := newLauncherBrowser(zerolog.New(&logs))
			page := &fakeLauncherPage{sender: testSender, outcome: tt.outcome}

			sweep(b, page, relay.NewClient(relay.NewBus(zerolog.Nop())), 3)

			if page.evals != tt.wantEvals {
				t.Errorf("insert attempts = %d, want %d", page.evals, tt.wantEvals)
			}
			if page.exposes != 1 {
				t.Errorf("binding exposed %d times, want 1", page.exposes)
			}
			if got := strings.Count(logs.String(), missingToolbarLog); got != tt.wantWarnings {
				t.Errorf("missing toolbar logged %d times, want %d", got, tt.wantWarnings)
			}
			if len(page.lastArgs) == 0 || page.lastArgs[0] != "ide-top-btns" {
				t.Errorf("inject args = %v", page.lastArgs)
			}
		})
	}
}

func TestAttachLaunchersRetriesAfterNavigation(t *testing.T) {
	var logs bytes.Buffer
	b := newLauncherBrowser(zerolog.New(&logs))
	page := &fakeLauncherPage{sender: testSender, outcome: launcherMissing}
	client := relay.NewClient(relay.NewBus(zerolog.Nop()))

	sweep(b, page, client, 2)
	if page.evals != 1 {
		t.Fatalf("insert attempts = %d, want 1 before navigation", page.evals)
	}

	page.sender.URL = "https://leetcode.com/problems/3sum/"
	page.outcome = launcherInjected
	sweep(b, page, client, 1)

	if page.evals != 2 {
		t.Errorf("insert attempts = %d, want 2 after navigation", page.evals)
	}
	if got := strings.Count(logs.String(), missingToolbarLog); got != 1 {
		t.Errorf("missing toolbar logged %d times, want 1", got)
	}
}

func TestAttachLaunchersExposeFailure(t *testing.T) {
	b := newLauncherBrowser(zerolog.Nop())
	page := &fakeLauncherPage{sender: testSender, outcome: launcherInjected, exposeErr: errors.New("target closed")}
	client := relay.NewClient(relay.NewBus(zerolog.Nop()))

	sweep(b, page, client, 1)
	if page.evals != 0 {
		t.Errorf("launcher inserted without a binding")
	}

	page.exposeErr = nil
	sweep(b, page, client, 1)
	if page.exposes != 2 || page.evals != 1 {
		t.Errorf("exposes = %d, evals = %d, want 2 and 1", page.exposes, page.evals)
	}
}

func TestAttachLaunchersEvalError(t *testing.T) {
	b := newLauncherBrowser(zerolog.Nop())
	page := &fakeLauncherPage{sender: testSender, evalErr: errors.New("execution context was destroyed")}

	sweep(b, page, relay.NewClient(relay.NewBus(zerolog.Nop())), 2)

	if page.evals != 2 {
		t.Errorf("insert attempts = %d, want a retry after an eval error", page.evals)
	}
}

func TestLauncherClickOpensPanel(t *testing.T) {
	var (
		mu     sync.Mutex
		opened []relay.Sender
	)
	host := relay.HostFunc(func(_ context.Context, s relay.Sender) error {
		mu.Lock()
		defer mu.Unlock()
		opened = append(opened, s)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := relay.NewBus(zerolog.Nop())
	r := relay.New(newTestStore(), staticTabs{}, &api.MockClient{}, relay.WithHost(host))
	go func() { _ = bus.Serve(ctx, r) }()
	<-bus.Ready()

	page := &fakeLauncherPage{sender: testSender, outcome: launcherInjected}
	newLauncherBrowser(zerolog.Nop()).attachLaunchers(ctx, []launcherTarget{{sender: testSender, page: page}}, relay.NewClient(bus))

	click, ok := page.bindings[launcherBinding]
	if !ok {
		t.Fatalf("binding %s not exposed", launcherBinding)
	}

	// The click reports the page as it is now
	page.sender.Title = "15. 3Sum - LeetCode"
	click()
	// and falls back to the attached page when it cannot be read
	page.senderErr = errors.New("target closed")
	click()

	mu.Lock()
	defer mu.Unlock()
	if len(opened) != 2 {
		t.Fatalf("host opened %d times, want 2", len(opened))
	}
	if opened[0].Title != "15. 3Sum - LeetCode" {
		t.Errorf("first click sender = %+v", opened[0])
	}
	if opened[1] != testSender {
		t.Errorf("fallback sender = %+v, want %+v", opened[1], testSender)
	}
}
