package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/diogo/leety/internal/config"
	apierrors "github.com/diogo/leety/internal/errors"
	"github.com/diogo/leety/internal/models"
	"github.com/diogo/leety/internal/relay"
)

// visibilityScript reports whether the page is shown and holds focus
const visibilityScript = `() => ({
	visible: document.visibilityState === "visible",
	focused: document.hasFocus(),
})`

// candidate is a problem page considered for ActiveTab
type candidate struct {
	URL     string
	Visible bool
	Focused bool
}

// pickActive returns the index of the page a chat turn is about: a visible
// focused problem page, else a visible one, else the first problem page.
// It returns -1 when there is no problem page.
func pickActive(cands []candidate) int {
	best, bestScore := -1, -1
	for i, c := range cands {
		if !IsProblemURL(c.URL) {
			continue
		}
		score := 0
		if c.Visible {
			score++
			if c.Focused {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// targetState tracks launcher insertion per browser target
type targetState struct {
	exposed     bool
	url         string
	missingSeen bool
}

// Browser is a Chrome instance reached over the DevTools protocol. It
// implements relay.Tabs.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	sel      Selectors
	timeout  time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	targets map[string]*targetState
}

// Option configures a Browser
type Option func(*Browser)

// WithLogger sets the browser logger
func WithLogger(log zerolog.Logger) Option {
	return func(b *Browser) {
		b.log = log
	}
}

// Connect attaches to the browser named by cfg.DebuggerURL, or launches
// one. A launched browser is seeded with LeetCode cookies when
// cfg.CookiesFrom is set and opens cfg.StartURL.
func Connect(ctx context.Context, cfg config.ScraperConfig, opts ...Option) (*Browser, error) {
	b := &Browser{
		sel:     DefaultSelectors(),
		timeout: cfg.ElementTimeout,
		log:     zerolog.Nop(),
		targets: map[string]*targetState{},
	}
	for _, opt := range opts {
		opt(b)
	}

	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		b.launcher = launcher.New().Headless(cfg.Headless)
		u, err := b.launcher.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	} else if !strings.HasPrefix(controlURL, "ws") {
		u, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve debugger url %s: %w", controlURL, err)
		}
		controlURL = u
	}

	b.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.browser.Connect(); err != nil {
		b.kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	b.log.Info().Str("control_url", controlURL).Bool("launched", b.launcher != nil).Msg("browser connected")

	if b.launcher == nil {
		return b, nil
	}

	if cfg.CookiesFrom != "" {
		name, n, err := seedCookies(ctx, b.browser, cfg.CookiesFrom)
		if err != nil {
			b.log.Warn().Err(err).Str("from", cfg.CookiesFrom).Msg("failed to seed leetcode cookies")
		} else {
			b.log.Info().Str("from", name).Int("cookies", n).Msg("seeded leetcode cookies")
		}
	}
	if cfg.StartURL != "" {
		if _, err := b.browser.Page(proto.TargetCreateTarget{URL: cfg.StartURL}); err != nil {
			b.log.Warn().Err(err).Str("url", cfg.StartURL).Msg("failed to open start page")
		}
	}
	return b, nil
}

// Close disconnects, and stops the browser if leety launched it
func (b *Browser) Close() error {
	if b.launcher == nil {
		return nil
	}
	err := b.browser.Close()
	b.kill()
	return err
}

func (b *Browser) kill() {
	if b.launcher != nil {
		b.launcher.Kill()
	}
}

type problemPage struct {
	page *rod.Page
	info *proto.TargetTargetInfo
}

// problemPages lists the open problem pages with their visibility
func (b *Browser) problemPages(ctx context.Context) ([]problemPage, []candidate, error) {
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list pages: %w", err)
	}

	var found []problemPage
	var cands []candidate
	for _, p := range pages {
		info, err := p.Info()
		if err != nil || !IsProblemURL(info.URL) {
			continue
		}
		c := candidate{URL: info.URL}
		if res, err := p.Context(ctx).Timeout(time.Second).Eval(visibilityScript); err == nil {
			c.Visible = res.Value.Get("visible").Bool()
			c.Focused = res.Value.Get("focused").Bool()
		}
		found = append(found, problemPage{page: p, info: info})
		cands = append(cands, c)
	}
	return found, cands, nil
}

func senderOf(p problemPage) relay.Sender {
	return relay.Sender{
		TabID: string(p.info.TargetID),
		Title: p.info.Title,
		URL:   p.info.URL,
	}
}

func (b *Browser) pageFor(p problemPage) *Page {
	doc := &rodDocument{page: p.page, timeout: b.timeout}
	return NewPage(senderOf(p), &DOMExtractor{doc: doc, sel: b.sel}, b.log)
}

// activePage returns the problem page a chat turn is about, or nil when
// none is open
func (b *Browser) activePage(ctx context.Context) (*Page, error) {
	pages, cands, err := b.problemPages(ctx)
	if err != nil {
		return nil, err
	}
	i := pickActive(cands)
	if i < 0 {
		return nil, nil
	}
	return b.pageFor(pages[i]), nil
}

// ActiveTab returns the active problem page. The relay reaches it only
// through encoded getData messages.
func (b *Browser) ActiveTab(ctx context.Context) (relay.Tab, error) {
	page, err := b.activePage(ctx)
	if err != nil || page == nil {
		return nil, err
	}
	return relay.RemoteTab(page), nil
}

// Problem scrapes the active problem page
func (b *Browser) Problem(ctx context.Context) (relay.Sender, models.ProblemContext, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return relay.Sender{}, models.ProblemContext{}, err
	}
	if page == nil {
		return relay.Sender{}, models.ProblemContext{}, apierrors.ErrNoActivePage
	}
	problem, err := page.extractor.ExtractProblemContext(ctx)
	return page.Sender(), problem, err
}

var _ relay.Tabs = (*Browser)(nil)

// AttachLaunchers inserts the launcher into every open problem page that
// lacks it. Clicking it sends openSidePanel through client.
func (b *Browser) AttachLaunchers(ctx context.Context, client *relay.Client) error {
	pages, _, err := b.problemPages(ctx)
	if err != nil {
		return err
	}

	targets := make([]launcherTarget, len(pages))
	for i, p := range pages {
		targets[i] = launcherTarget{sender: senderOf(p), page: &rodLauncherPage{page: p.page}}
	}
	b.attachLaunchers(ctx, targets, client)
	return nil
}

// attachLaunchers exposes the binding once per target and inserts the
// launcher. A page whose toolbar was missing is not tried again until it
// navigates to another URL.
func (b *Browser) attachLaunchers(ctx context.Context, targets []launcherTarget, client *relay.Client) {
	for _, t := range targets {
		st := b.target(t.sender.TabID)

		if !st.exposed {
			if err := exposeLauncher(ctx, t.page, t.sender, client, b.log); err != nil {
				b.log.Warn().Err(err).Str("tab", t.sender.TabID).Msg("launcher binding failed")
				continue
			}
			st.exposed = true
		}
		if st.url != t.sender.URL {
			st.url = t.sender.URL
			st.missingSeen = false
		}
		if st.missingSeen {
			continue
		}

		outcome, err := insertLauncher(ctx, t.page, b.sel, t.sender, b.log)
		if err != nil {
			b.log.Debug().Err(err).Str("tab", t.sender.TabID).Msg("launcher insertion failed")
			continue
		}
		if outcome == launcherMissing {
			st.missingSeen = true
		}
	}
}

// WatchLaunchers runs AttachLaunchers every interval until ctx is done
func (b *Browser) WatchLaunchers(ctx context.Context, client *relay.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := b.AttachLaunchers(ctx, client); err != nil && ctx.Err() == nil {
			b.log.Debug().Err(err).Msg("launcher sweep failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *Browser) target(id string) *targetState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.targets[id]
	if !ok {
		st = &targetState{}
		b.targets[id] = st
	}
	return st
}
