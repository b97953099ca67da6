package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/diogo/leety/internal/history"
	"github.com/diogo/leety/internal/logging"
	"github.com/diogo/leety/internal/relay"
	"github.com/diogo/leety/internal/render"
	"github.com/diogo/leety/internal/tui"
)

// launcherInterval is how often open problem pages are checked for the
// launcher button
const launcherInterval = 2 * time.Second

// NewPanelCmd creates the panel command
func NewPanelCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Open the chat panel",
		Long: `Open the interactive chat panel. Questions are answered with the
LeetCode problem open in the connected browser as context.

Keys:
  Enter       Send the message
  Alt+Enter   New line
  Ctrl+Y      Copy the last code block
  Esc         Quit

Commands: /clear, /export, exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanel(cmd, deps)
		},
	}
}

func runPanel(cmd *cobra.Command, deps *Dependencies) error {
	s, err := deps.open(false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	format, err := history.ParseFormat(s.cfg.Transcript.Format)
	if err != nil {
		return err
	}

	var tabs relay.Tabs = noTabs{}
	browser, err := s.connect(ctx)
	if err != nil {
		// The panel still manages the key without a browser
		s.log.Warn().Err(err).Msg("browser unavailable")
		fmt.Fprintln(cmd.ErrOrStderr(), formatErrorMessage(err, "Browser unavailable"))
	} else {
		defer browser.Close()
		tabs = browser
	}

	bus := s.newBus()
	client := relay.NewClient(bus)

	model := tui.NewModel(ctx, client, tui.Options{
		Model:            s.cfg.Model,
		Markdown:         render.OptionsFromConfig(s.cfg.Markdown),
		Transcripts:      history.NewStore(s.cfg.Transcript.Dir),
		TranscriptFormat: format,
		Logger:           logging.Component(s.log, "panel"),
	})
	panel := tui.NewPanel(model, tea.WithAltScreen())

	stop := s.serve(ctx, bus, tabs, relay.WithHost(panel))
	defer stop()

	if browser != nil {
		go browser.WatchLaunchers(ctx, client, launcherInterval)
	}

	s.log.Info().Str("model", s.cfg.Model).Bool("browser", browser != nil).Msg("panel started")
	if err := panel.Run(); err != nil {
		return fmt.Errorf("panel error: %w", err)
	}
	return nil
}
