package scraper

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"
	"github.com/ysmood/gson"

	"github.com/diogo/leety/internal/relay"
)

const (
	launcherMarker  = "leety-launcher"
	launcherBinding = "leetyOpenSidePanel"
)

// Launcher insertion results reported by injectScript
const (
	launcherInjected = "injected"
	launcherPresent  = "present"
	launcherMissing  = "missing"
)

// injectScript appends the launcher to the editor toolbar once. The click
// handler calls the exposed binding.
const injectScript = `(toolbarID, marker, binding) => {
	const toolbar = document.getElementById(toolbarID);
	if (!toolbar) return "missing";
	if (toolbar.querySelector("." + marker)) return "present";

	const outer = document.createElement("div");
	outer.className = "relative flex overflow-hidden rounded bg-fill-tertiary dark:bg-fill-tertiary ml-[6px] " + marker;
	const inner = document.createElement("div");
	inner.className = "flex cursor-pointer p-2 hover:bg-fill-secondary";
	inner.setAttribute("aria-label", "LeetyButton");
	inner.setAttribute("title", "Open Leety");
	inner.innerHTML = '<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M21 15a2 2 0 0 1-2 2H7l-4 4V5a2 2 0 0 1 2-2h14a2 2 0 0 1 2 2z"/></svg>';
	outer.appendChild(inner);
	outer.addEventListener("click", () => window[binding]());
	toolbar.appendChild(outer);
	return "injected";
}`

// launcherPage is the part of a page the launcher touches
type launcherPage interface {
	// Sender identifies the page as it is now
	Sender() (relay.Sender, error)
	// Expose installs fn as the global function name
	Expose(ctx context.Context, name string, fn func()) error
	// EvalString runs a JS function with args and returns its string result
	EvalString(ctx context.Context, js string, args ...any) (string, error)
}

// launcherTarget is a problem page considered for the launcher
type launcherTarget struct {
	sender relay.Sender
	page   launcherPage
}

// rodLauncherPage is a launcherPage backed by a live page
type rodLauncherPage struct {
	page *rod.Page
}

func (p *rodLauncherPage) Sender() (relay.Sender, error) {
	info, err := p.page.Info()
	if err != nil {
		return relay.Sender{}, err
	}
	return relay.Sender{TabID: string(info.TargetID), Title: info.Title, URL: info.URL}, nil
}

func (p *rodLauncherPage) Expose(ctx context.Context, name string, fn func()) error {
	_, err := p.page.Context(ctx).Expose(name, func(gson.JSON) (any, error) {
		fn()
		return nil, nil
	})
	return err
}

func (p *rodLauncherPage) EvalString(ctx context.Context, js string, args ...any) (string, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// exposeLauncher installs the binding the launcher button calls. It
// survives navigation, so it is installed once per target. A click reports
// the page as it is at click time, falling back to sender.
func exposeLauncher(ctx context.Context, page launcherPage, sender relay.Sender, client *relay.Client, log zerolog.Logger) error {
	err := page.Expose(ctx, launcherBinding, func() {
		s, err := page.Sender()
		if err != nil {
			s = sender
		}
		if err := client.OpenSidePanel(context.WithoutCancel(ctx), s); err != nil {
			log.Warn().Err(err).Str("tab", s.TabID).Msg("openSidePanel was not delivered")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to expose launcher binding: %w", err)
	}
	return nil
}

// insertLauncher adds the launcher button to the editor toolbar unless it
// is already there. A page without a toolbar is left alone.
func insertLauncher(ctx context.Context, page launcherPage, sel Selectors, sender relay.Sender, log zerolog.Logger) (string, error) {
	outcome, err := page.EvalString(ctx, injectScript, sel.Toolbar, launcherMarker, launcherBinding)
	if err != nil {
		return "", fmt.Errorf("failed to insert launcher: %w", err)
	}

	switch outcome {
	case launcherMissing:
		log.Warn().Str("tab", sender.TabID).Str("toolbar", sel.Toolbar).Msg("editor toolbar not found, launcher not inserted")
	case launcherInjected:
		log.Debug().Str("tab", sender.TabID).Msg("launcher inserted")
	}
	return outcome, nil
}
