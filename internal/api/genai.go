package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	apierrors "github.com/diogo/leety/internal/errors"
	"github.com/diogo/leety/internal/models"
)

// GenAIClient is the alternative backend built on the official Google SDK.
// A genai.Client is bound to a single key, so one is created per call.
type GenAIClient struct {
	baseURL string
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewGenAIClient creates a GenAIClient. It accepts the same options as
// NewClient; WithHTTPClient is ignored.
func NewGenAIClient(opts ...ClientOption) *GenAIClient {
	base := &GeminiClient{
		baseURL: models.DefaultBaseURL,
		model:   models.DefaultModel,
		timeout: 120 * time.Second,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(base)
	}
	return &GenAIClient{
		baseURL: base.baseURL,
		model:   base.model,
		timeout: base.timeout,
		log:     base.log,
	}
}

func (c *GenAIClient) newClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, apierrors.ErrCredentialMissing
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" && c.baseURL != models.DefaultBaseURL {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL + "/"}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, apierrors.NewNetworkError("create genai client", c.baseURL, err)
	}
	return client, nil
}

func (c *GenAIClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// VerifyKey lists a single model with apiKey
func (c *GenAIClient) VerifyKey(ctx context.Context, apiKey string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.newClient(ctx, apiKey)
	if err != nil {
		return err
	}

	if _, err := client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return c.mapError("verify api key", models.PathListModels, err)
	}
	return nil
}

// GenerateContent sends the prompt through the SDK
func (c *GenAIClient) GenerateContent(ctx context.Context, apiKey string, req GenerateRequest) (*models.ModelOutput, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	c.log.Debug().Str("model", model).Str("backend", "genai").Msg("generate content")

	resp, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, c.mapError("generate content", models.GeneratePath(model), err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, apierrors.NewParseError("prompt was blocked: "+string(resp.PromptFeedback.BlockReason), PathBlockReason)
	}

	var candidates []models.Candidate
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Text:         cand.Content.Parts[0].Text,
			FinishReason: string(cand.FinishReason),
		})
	}
	if len(candidates) == 0 {
		return nil, apierrors.NewParseError("first candidate has no text", PathFirstText)
	}

	name := model
	if resp.ModelVersion != "" {
		name = resp.ModelVersion
	}
	return &models.ModelOutput{Candidates: candidates, ModelName: name}, nil
}

// mapError folds SDK errors into the shared taxonomy
func (c *GenAIClient) mapError(op, endpoint string, err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr):
		apiErr = *apiErrPtr
	default:
		return apierrors.NewNetworkError(op, c.baseURL+endpoint, err)
	}

	switch {
	case apiErr.Code == 401, apiErr.Code == 403:
		return apierrors.NewAuthError(apiErr.Code, apiErr.Message)
	case apiErr.Code == 400 && apiErr.Status == "INVALID_ARGUMENT" && containsInvalidKey(apiErr.Message):
		return apierrors.NewAuthError(apiErr.Code, apiErr.Message)
	}
	return apierrors.NewAPIError(apiErr.Code, endpoint, op+" failed: "+apiErr.Message)
}

func containsInvalidKey(message string) bool {
	return strings.Contains(message, "API key not valid") || strings.Contains(message, "API_KEY_INVALID")
}

var _ Client = (*GenAIClient)(nil)
