// Package config handles configuration and credential storage for leety.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/diogo/leety/internal/models"
)

// EnvPrefix is the prefix of environment overrides (LEETY_API_TIMEOUT, ...)
const EnvPrefix = "LEETY"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `mapstructure:"style"`              // glamour style: "dark", "light", "dracula", ...
	EnableEmoji      bool   `mapstructure:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `mapstructure:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `mapstructure:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `mapstructure:"inline_table_links"` // Render links inline in tables
}

// APIConfig configures the Gemini client
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Backend selects the transport: "rest" (tls-client) or "genai" (Google SDK).
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 disables the timeout
}

// CredentialsConfig selects where the API key lives
type CredentialsConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "keyring"
}

// ScraperConfig configures the browser connection used to read problem pages
type ScraperConfig struct {
	// DebuggerURL connects to an already running Chrome started with
	// --remote-debugging-port. When empty a browser is launched.
	DebuggerURL    string        `mapstructure:"debugger_url"`
	Headless       bool          `mapstructure:"headless"`
	StartURL       string        `mapstructure:"start_url"`
	ElementTimeout time.Duration `mapstructure:"element_timeout"`
	// CookiesFrom names an installed browser whose LeetCode cookies seed a
	// launched browser ("auto", "chrome", "firefox", ...). Empty disables it.
	CookiesFrom string `mapstructure:"cookies_from"`
}

// TranscriptConfig configures /export
type TranscriptConfig struct {
	Format string `mapstructure:"format"` // "markdown", "html" or "json"
	Dir    string `mapstructure:"dir"`
}

// LogConfig configures the zerolog sink
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Config represents the user configuration
type Config struct {
	Model       string            `mapstructure:"model"`
	API         APIConfig         `mapstructure:"api"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Scraper     ScraperConfig     `mapstructure:"scraper"`
	Markdown    MarkdownConfig    `mapstructure:"markdown"`
	TUITheme    string            `mapstructure:"tui_theme"`
	Transcript  TranscriptConfig  `mapstructure:"transcript"`
	Log         LogConfig         `mapstructure:"log"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	dir, _ := GetConfigDir()
	return Config{
		Model: models.DefaultModel,
		API: APIConfig{
			BaseURL: models.DefaultBaseURL,
			Backend: "rest",
			Timeout: 120 * time.Second,
		},
		Credentials: CredentialsConfig{Backend: "file"},
		Scraper: ScraperConfig{
			Headless:       false,
			StartURL:       "https://leetcode.com/problemset/",
			ElementTimeout: 3 * time.Second,
		},
		Markdown: DefaultMarkdownConfig(),
		TUITheme: "tokyonight",
		Transcript: TranscriptConfig{
			Format: "markdown",
			Dir:    filepath.Join(dir, "transcripts"),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "leety.log"),
		},
	}
}

// GetConfigDir returns the configuration directory path.
// LEETY_HOME overrides the default ~/.leety.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("LEETY_HOME"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".leety"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetCredentialsPath returns the path to the file credential store
func GetCredentialsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "credentials.json"), nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("model", d.Model)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.backend", d.API.Backend)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("credentials.backend", d.Credentials.Backend)
	v.SetDefault("scraper.debugger_url", d.Scraper.DebuggerURL)
	v.SetDefault("scraper.headless", d.Scraper.Headless)
	v.SetDefault("scraper.start_url", d.Scraper.StartURL)
	v.SetDefault("scraper.element_timeout", d.Scraper.ElementTimeout)
	v.SetDefault("scraper.cookies_from", d.Scraper.CookiesFrom)
	v.SetDefault("markdown.style", d.Markdown.Style)
	v.SetDefault("markdown.enable_emoji", d.Markdown.EnableEmoji)
	v.SetDefault("markdown.preserve_newlines", d.Markdown.PreserveNewLines)
	v.SetDefault("markdown.table_wrap", d.Markdown.TableWrap)
	v.SetDefault("markdown.inline_table_links", d.Markdown.InlineTableLinks)
	v.SetDefault("tui_theme", d.TUITheme)
	v.SetDefault("transcript.format", d.Transcript.Format)
	v.SetDefault("transcript.dir", d.Transcript.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	return v
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom loads the configuration from path. A missing file yields
// the defaults (plus environment overrides).
func LoadConfigFrom(path string) (Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks enumerated settings
func (c Config) Validate() error {
	switch c.API.Backend {
	case "rest", "genai":
	default:
		return fmt.Errorf("invalid api.backend %q: expected rest or genai", c.API.Backend)
	}
	switch c.Credentials.Backend {
	case "file", "keyring":
	default:
		return fmt.Errorf("invalid credentials.backend %q: expected file or keyring", c.Credentials.Backend)
	}
	switch c.Transcript.Format {
	case "markdown", "html", "json":
	default:
		return fmt.Errorf("invalid transcript.format %q: expected markdown, html or json", c.Transcript.Format)
	}
	if c.API.Timeout < 0 || c.Scraper.ElementTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// SetValue updates a single key in the config file at path and writes it back
func SetValue(path, key, value string) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	key = strings.ToLower(key)
	if !isKnownKey(v, key) {
		return fmt.Errorf("unknown config key: %s", key)
	}
	v.Set(key, value)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// Keys returns every known configuration key in sorted order
func Keys() []string {
	keys := newViper("").AllKeys()
	sort.Strings(keys)
	return keys
}

func isKnownKey(v *viper.Viper, key string) bool {
	for _, k := range v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Setting is one effective configuration value
type Setting struct {
	Key   string
	Value any
}

// Settings returns the effective value of every known key for the config
// file at path, sorted by key
func Settings(path string) ([]Setting, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	keys := v.AllKeys()
	sort.Strings(keys)
	settings := make([]Setting, 0, len(keys))
	for _, k := range keys {
		settings = append(settings, Setting{Key: k, Value: v.Get(k)})
	}
	return settings, nil
}
