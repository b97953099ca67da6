package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/leety/internal/api"
	"github.com/diogo/leety/internal/config"
	"github.com/diogo/leety/internal/logging"
	"github.com/diogo/leety/internal/models"
	"github.com/diogo/leety/internal/relay"
	"github.com/diogo/leety/internal/scraper"
	"github.com/diogo/leety/internal/tui"
)

// Browser is the page surface the commands drive. *scraper.Browser
// implements it.
type Browser interface {
	relay.Tabs
	Problem(ctx context.Context) (relay.Sender, models.ProblemContext, error)
	WatchLaunchers(ctx context.Context, client *relay.Client, interval time.Duration)
	Close() error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the configuration file named by --config, or the default one.
	LoadConfig func(path string) (config.Config, error)

	// NewStore opens the credential store selected by the configuration.
	NewStore func(cfg config.Config) (config.CredentialStore, error)

	// NewGenerator creates the Gemini backend selected by api.backend.
	NewGenerator func(cfg config.Config, log zerolog.Logger) (api.Client, error)

	// ConnectBrowser attaches to (or launches) the browser holding the problem pages.
	ConnectBrowser func(ctx context.Context, cfg config.ScraperConfig, log zerolog.Logger) (Browser, error)

	// NewLogger builds the process logger.
	NewLogger func(opts logging.Options) (zerolog.Logger, io.Closer, error)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:     loadConfig,
		NewStore:       config.NewCredentialStore,
		NewGenerator:   newGenerator,
		ConnectBrowser: connectBrowser,
		NewLogger:      logging.New,
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadConfigFrom(path)
	}
	return config.LoadConfig()
}

func newGenerator(cfg config.Config, log zerolog.Logger) (api.Client, error) {
	opts := []api.ClientOption{
		api.WithModel(cfg.Model),
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logging.Component(log, "api")),
	}
	if cfg.API.Backend == "genai" {
		return api.NewGenAIClient(opts...), nil
	}
	return api.NewClient(opts...)
}

func connectBrowser(ctx context.Context, cfg config.ScraperConfig, log zerolog.Logger) (Browser, error) {
	b, err := scraper.Connect(ctx, cfg, scraper.WithLogger(logging.Component(log, "scraper")))
	if err != nil {
		return nil, err
	}
	return b, nil
}

// noTabs is used when no browser is connected; every chat turn then
// reports that no problem page is open.
type noTabs struct{}

func (noTabs) ActiveTab(context.Context) (relay.Tab, error) { return nil, nil }

// session is one command invocation's resolved configuration and services
type session struct {
	deps   *Dependencies
	cfg    config.Config
	log    zerolog.Logger
	store  config.CredentialStore
	gen    api.Client
	closer io.Closer
}

// open loads the configuration, applies the global flags and builds the
// logger, credential store and Gemini backend. With console set, --verbose
// also mirrors the log to stderr.
func (d *Dependencies) open(console bool) (*session, error) {
	cfg, err := d.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if debuggerURLFlag != "" {
		cfg.Scraper.DebuggerURL = debuggerURLFlag
	}

	// Errors and answers printed by any command follow the panel theme
	themeOK := cfg.TUITheme == "" || tui.SetTheme(cfg.TUITheme)

	logOpts := logging.FromConfig(cfg, verboseFlag)
	logOpts.Console = console && verboseFlag
	log, closer, err := d.NewLogger(logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	if !themeOK {
		log.Warn().Str("theme", cfg.TUITheme).Msg("unknown theme, keeping the default")
	}

	store, err := d.NewStore(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	gen, err := d.NewGenerator(cfg, log)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &session{
		deps:   d,
		cfg:    cfg,
		log:    log,
		store:  store,
		gen:    gen,
		closer: closer,
	}, nil
}

// Close flushes the log
func (s *session) Close() error {
	return s.closer.Close()
}

// connect attaches to the browser
func (s *session) connect(ctx context.Context) (Browser, error) {
	return s.deps.ConnectBrowser(ctx, s.cfg.Scraper, s.log)
}

// newBus creates the message bus between the front ends and the relay
func (s *session) newBus() *relay.Bus {
	return relay.NewBus(logging.Component(s.log, "bus"))
}

// serve runs a relay over bus until the returned stop func is called.
// It returns once the bus accepts requests.
func (s *session) serve(ctx context.Context, bus *relay.Bus, tabs relay.Tabs, opts ...relay.Option) (stop func()) {
	opts = append([]relay.Option{
		relay.WithModel(s.cfg.Model),
		relay.WithLogger(logging.Component(s.log, "relay")),
	}, opts...)
	r := relay.New(s.store, tabs, s.gen, opts...)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := bus.Serve(ctx, r); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("relay stopped")
		}
	}()

	select {
	case <-bus.Ready():
	case <-done:
	}

	return func() {
		cancel()
		<-done
	}
}

// client opens a relay with no page attached and returns its client
func (s *session) client(ctx context.Context) (*relay.Client, func()) {
	bus := s.newBus()
	stop := s.serve(ctx, bus, noTabs{})
	return relay.NewClient(bus), stop
}

// commandContext returns the context cobra attached to cmd
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
