package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/leety/internal/errors"
	"github.com/diogo/leety/internal/models"
)

type textPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string     `json:"role,omitempty"`
	Parts []textPart `json:"parts"`
}

type generatePayload struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

// buildPayload creates the generateContent request body
func buildPayload(req GenerateRequest) (string, error) {
	payload := generatePayload{
		Contents: []content{{Role: "user", Parts: []textPart{{Text: req.Prompt}}}},
	}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &content{Parts: []textPart{{Text: req.SystemInstruction}}}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GenerateContent sends a prompt to Gemini and returns the response
func (c *GeminiClient) GenerateContent(ctx context.Context, apiKey string, req GenerateRequest) (*models.ModelOutput, error) {
	if apiKey == "" {
		return nil, apierrors.ErrCredentialMissing
	}
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	model := req.Model
	if model == "" {
		model = c.GetModel()
	}
	path := models.GeneratePath(url.PathEscape(model))

	payload, err := buildPayload(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, apiKey, payload)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("model", model).Int("prompt_len", len(req.Prompt)).Msg("generate content")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apierrors.NewNetworkError("generate content", c.baseURL+path, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readErrorBody(resp.Body)
		return nil, statusError(resp.StatusCode, path, "generate content failed", body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("read generate response", c.baseURL+path, err)
	}

	return parseResponse(body, model)
}

// parseResponse extracts the candidates from a generateContent body
func parseResponse(body []byte, modelName string) (*models.ModelOutput, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}
	parsed := gjson.ParseBytes(body)

	if reason := parsed.Get(PathBlockReason); reason.Exists() {
		return nil, apierrors.NewParseError("prompt was blocked: "+reason.String(), PathBlockReason)
	}

	list := parsed.Get(PathCandidates)
	if !list.IsArray() || len(list.Array()) == 0 {
		return nil, apierrors.NewParseError("no candidates found", PathCandidates)
	}

	if !parsed.Get(PathFirstText).Exists() {
		return nil, apierrors.NewParseError("first candidate has no text", PathFirstText)
	}

	var candidates []models.Candidate
	list.ForEach(func(_, value gjson.Result) bool {
		text := value.Get(PathCandText)
		if !text.Exists() {
			return true
		}
		candidates = append(candidates, models.Candidate{
			Text:         text.String(),
			FinishReason: value.Get(PathFinishReason).String(),
		})
		return true
	})

	if version := parsed.Get(PathModelVersion).String(); version != "" {
		modelName = version
	}

	return &models.ModelOutput{
		Candidates: candidates,
		ModelName:  modelName,
	}, nil
}

// readErrorBody reads at most errorBodyLimit bytes of a failed response
func readErrorBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	return string(data)
}

// statusError maps a non-2xx status onto the error taxonomy
func statusError(status int, endpoint, message, body string) error {
	detail := gjson.Get(body, PathErrorMessage).String()

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apierrors.NewAuthError(status, detail)
	case status == http.StatusBadRequest && isInvalidKey(body):
		return apierrors.NewAuthError(status, detail)
	}

	if detail != "" {
		message = message + ": " + detail
	}
	return apierrors.NewAPIErrorWithBody(status, endpoint, message, body)
}

// isInvalidKey detects the 400 response Google sends for a malformed key
func isInvalidKey(body string) bool {
	for _, reason := range gjson.Get(body, PathErrorReasons).Array() {
		if reason.String() == "API_KEY_INVALID" {
			return true
		}
	}
	return strings.Contains(gjson.Get(body, PathErrorMessage).String(), "API key not valid")
}
