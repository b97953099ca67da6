package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/diogo/leety/internal/models"
)

// GenerateRequest carries one generateContent call
type GenerateRequest struct {
	SystemInstruction string
	Prompt            string
	// Model overrides the client default when set
	Model string
}

// Client is the surface the relay needs from a Gemini backend
type Client interface {
	VerifyKey(ctx context.Context, apiKey string) error
	GenerateContent(ctx context.Context, apiKey string, req GenerateRequest) (*models.ModelOutput, error)
}

// HTTPDoer is the subset of tls_client.HttpClient used by GeminiClient
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GeminiClient talks to the Gemini REST API through a browser-profiled TLS client
type GeminiClient struct {
	httpClient HTTPDoer
	baseURL    string
	model      string
	timeout    time.Duration
	log        zerolog.Logger
	mu         sync.RWMutex
}

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the default model for the client
func WithModel(model string) ClientOption {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at another endpoint (tests, proxies)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GeminiClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = doer
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *GeminiClient) {
		c.timeout = timeout
	}
}

// WithLogger sets the client logger
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *GeminiClient) {
		c.log = log
	}
}

// NewClient creates a new GeminiClient
func NewClient(opts ...ClientOption) (*GeminiClient, error) {
	client := &GeminiClient{
		baseURL: models.DefaultBaseURL,
		model:   models.DefaultModel,
		timeout: 120 * time.Second,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		// Create TLS client with Chrome profile for browser emulation
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		if client.timeout > 0 {
			options = append(options, tls_client.WithTimeoutSeconds(int(client.timeout.Seconds())))
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// GetModel returns the default model
func (c *GeminiClient) GetModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel changes the default model
func (c *GeminiClient) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// BaseURL returns the configured endpoint root
func (c *GeminiClient) BaseURL() string {
	return c.baseURL
}

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *GeminiClient) newRequest(ctx context.Context, method, path, apiKey string, body string) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(body))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set(models.HeaderAPIKey, apiKey)
	return req, nil
}

var _ Client = (*GeminiClient)(nil)
