package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diogo/leety/internal/api"
	apierrors "github.com/diogo/leety/internal/errors"
)

// Chat reply strings
const (
	MsgKeyNotSet     = "Error: API Key is not set. Please add your key in the side panel."
	MsgNoActiveTab   = "Error: No active tab found."
	MsgNoPageData    = "Error: Received no data from content script."
	msgDOMPrefix     = "Error: Could not read the problem from the page: "
	msgMalformed     = "Error: Gemini returned a malformed response: "
	msgGenericPrefix = "An error occurred. Please ensure your API Key is valid and has access to the Gemini API. Error: "
)

// CredentialStore is the storage capability the relay needs
type CredentialStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, apiKey string) error
}

// Tab is a page that can answer getData
type Tab interface {
	Sender() Sender
	GetData(ctx context.Context, req GetDataRequest) (DataResponse, error)
}

// Tabs locates the page a chat turn is about. ActiveTab returns a nil Tab
// and nil error when no suitable page is open.
type Tabs interface {
	ActiveTab(ctx context.Context) (Tab, error)
}

// Host surfaces the panel for a page
type Host interface {
	OpenSidePanel(ctx context.Context, sender Sender) error
}

// HostFunc adapts a function to Host
type HostFunc func(ctx context.Context, sender Sender) error

// OpenSidePanel calls f
func (f HostFunc) OpenSidePanel(ctx context.Context, sender Sender) error {
	return f(ctx, sender)
}

// Relay is the background dispatcher. It implements Handler.
type Relay struct {
	store     CredentialStore
	tabs      Tabs
	generator api.Client
	host      Host
	model     string
	log       zerolog.Logger
}

// Option configures a Relay
type Option func(*Relay)

// WithHost sets the host that receives openSidePanel
func WithHost(host Host) Option {
	return func(r *Relay) {
		r.host = host
	}
}

// WithModel overrides the generator's default model
func WithModel(model string) Option {
	return func(r *Relay) {
		r.model = model
	}
}

// WithLogger sets the relay logger
func WithLogger(log zerolog.Logger) Option {
	return func(r *Relay) {
		r.log = log
	}
}

// New creates a Relay
func New(store CredentialStore, tabs Tabs, generator api.Client, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		tabs:      tabs,
		generator: generator,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Handler = (*Relay)(nil)

// GetAPIKey reads the stored credential. A storage failure reads as absent.
func (r *Relay) GetAPIKey(ctx context.Context, _ GetAPIKeyRequest) (GetAPIKeyResponse, error) {
	key, ok, err := r.store.Get(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to read api key")
		return GetAPIKeyResponse{}, nil
	}
	if !ok {
		return GetAPIKeyResponse{}, nil
	}
	return GetAPIKeyResponse{APIKey: key}, nil
}

// SaveAPIKey overwrites the stored credential
func (r *Relay) SaveAPIKey(ctx context.Context, req SaveAPIKeyRequest) (SuccessResponse, error) {
	if err := r.store.Set(ctx, req.APIKey); err != nil {
		return SuccessResponse{}, fmt.Errorf("failed to save api key: %w", err)
	}
	r.log.Info().Msg("api key saved")
	return SuccessResponse{Success: true}, nil
}

// VerifyAPIKey checks the candidate key against the API. Rejection and
// transport failure both reply success=false; only the log tells them apart.
func (r *Relay) VerifyAPIKey(ctx context.Context, req VerifyAPIKeyRequest) (SuccessResponse, error) {
	if err := r.generator.VerifyKey(ctx, req.APIKey); err != nil {
		r.log.Info().Err(err).Str("kind", apierrors.KindOf(err).String()).Msg("api key verification failed")
		return SuccessResponse{Success: false}, nil
	}
	return SuccessResponse{Success: true}, nil
}

// OpenSidePanel forwards the request to the host when it names a page
func (r *Relay) OpenSidePanel(ctx context.Context, req OpenSidePanelRequest) (EmptyResponse, error) {
	if req.Sender == nil {
		r.log.Debug().Msg("openSidePanel without a sender page, ignored")
		return EmptyResponse{}, nil
	}
	if r.host == nil {
		return EmptyResponse{}, nil
	}
	if err := r.host.OpenSidePanel(ctx, *req.Sender); err != nil {
		r.log.Warn().Err(err).Str("tab", req.Sender.TabID).Msg("failed to open side panel")
	}
	return EmptyResponse{}, nil
}

// Chat runs one turn. Every failure is folded into the reply; the error
// result is always nil.
func (r *Relay) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	output, err := r.chat(ctx, req.UserPrompt)
	if err != nil {
		kind := apierrors.KindOf(err)
		r.log.Error().Err(err).Str("kind", kind.String()).Msg("chat turn failed")
		return ChatResponse{Output: ChatErrorMessage(err), Error: true}, nil
	}
	return ChatResponse{Output: output}, nil
}

func (r *Relay) chat(ctx context.Context, userPrompt string) (string, error) {
	key, ok, err := r.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	if !ok {
		return "", apierrors.ErrCredentialMissing
	}

	tab, err := r.tabs.ActiveTab(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apierrors.ErrNoActivePage, err)
	}
	if tab == nil {
		return "", apierrors.ErrNoActivePage
	}

	resp, err := tab.GetData(ctx, GetDataRequest{})
	if err != nil {
		var domErr *apierrors.DOMElementError
		if errors.As(err, &domErr) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", apierrors.ErrNoPageData, err)
	}
	if resp.Data == nil {
		return "", apierrors.ErrNoPageData
	}

	problem := resp.Data.Context()
	r.log.Debug().
		Str("tab", tab.Sender().TabID).
		Str("problem", problem.Title).
		Msg("scraped problem context")

	out, err := r.generator.GenerateContent(ctx, key, api.GenerateRequest{
		SystemInstruction: SystemPrompt,
		Prompt:            BuildPrompt(problem, userPrompt),
		Model:             r.model,
	})
	if err != nil {
		return "", err
	}
	if out == nil || len(out.Candidates) == 0 {
		return "", apierrors.NewParseError("no candidates found", "candidates")
	}
	return out.Text(), nil
}

// ChatErrorMessage turns a chat failure into the string shown to the user
func ChatErrorMessage(err error) string {
	switch apierrors.KindOf(err) {
	case apierrors.KindCredentialMissing:
		return MsgKeyNotSet
	case apierrors.KindContextUnavailable:
		if errors.Is(err, apierrors.ErrNoActivePage) {
			return MsgNoActiveTab
		}
		return MsgNoPageData
	case apierrors.KindDOMMissingElement:
		var domErr *apierrors.DOMElementError
		errors.As(err, &domErr)
		return msgDOMPrefix + domErr.Element + " not found."
	case apierrors.KindMalformedResponse:
		var parseErr *apierrors.ParseError
		if errors.As(err, &parseErr) {
			return msgMalformed + parseErr.Message
		}
		return msgMalformed + err.Error()
	}
	return msgGenericPrefix + err.Error()
}
