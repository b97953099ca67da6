// Package relay implements the message dispatcher that sits between the chat
// panel, the problem page and the Gemini API.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/diogo/leety/internal/models"
)

// Type is the wire discriminant of a message
type Type string

const (
	TypeGetAPIKey     Type = "getApiKey"
	TypeSaveAPIKey    Type = "saveApiKey"
	TypeVerifyAPIKey  Type = "verifyApiKey"
	TypeChat          Type = "chat"
	TypeOpenSidePanel Type = "openSidePanel"
	// TypeGetData flows from the relay to a page, never the other way
	TypeGetData Type = "getData"
)

var (
	// ErrUnknownType is returned by Decode for a missing or unrecognized type
	ErrUnknownType = errors.New("unknown message type")
	// ErrNoReceiver is returned when nothing is serving the bus
	ErrNoReceiver = errors.New("could not establish connection: receiving end does not exist")
)

// Request is a message the relay accepts. The set is closed: the unexported
// dispatch method ties every request to exactly one Handler method.
type Request interface {
	Type() Type
	dispatch(ctx context.Context, h Handler) (any, error)
}

// Handler has one method per request kind
type Handler interface {
	GetAPIKey(ctx context.Context, req GetAPIKeyRequest) (GetAPIKeyResponse, error)
	SaveAPIKey(ctx context.Context, req SaveAPIKeyRequest) (SuccessResponse, error)
	VerifyAPIKey(ctx context.Context, req VerifyAPIKeyRequest) (SuccessResponse, error)
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	OpenSidePanel(ctx context.Context, req OpenSidePanelRequest) (EmptyResponse, error)
}

// GetAPIKeyRequest reads the stored credential
type GetAPIKeyRequest struct{}

// SaveAPIKeyRequest overwrites the stored credential
type SaveAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// VerifyAPIKeyRequest checks a candidate key against the API
type VerifyAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// ChatRequest runs one chat turn
type ChatRequest struct {
	UserPrompt string `json:"userPrompt"`
}

// Sender identifies the page a message came from
type Sender struct {
	TabID string `json:"tabId"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// OpenSidePanelRequest asks the host to surface the panel for a page
type OpenSidePanelRequest struct {
	Sender *Sender `json:"sender,omitempty"`
}

// GetDataRequest asks a page for its problem context
type GetDataRequest struct{}

func (GetAPIKeyRequest) Type() Type     { return TypeGetAPIKey }
func (SaveAPIKeyRequest) Type() Type    { return TypeSaveAPIKey }
func (VerifyAPIKeyRequest) Type() Type  { return TypeVerifyAPIKey }
func (ChatRequest) Type() Type          { return TypeChat }
func (OpenSidePanelRequest) Type() Type { return TypeOpenSidePanel }
func (GetDataRequest) Type() Type       { return TypeGetData }

func (r GetAPIKeyRequest) dispatch(ctx context.Context, h Handler) (any, error) {
	return h.GetAPIKey(ctx, r)
}

func (r SaveAPIKeyRequest) dispatch(ctx context.Context, h Handler) (any, error) {
	return h.SaveAPIKey(ctx, r)
}

func (r VerifyAPIKeyRequest) dispatch(ctx context.Context, h Handler) (any, error) {
	return h.VerifyAPIKey(ctx, r)
}

func (r ChatRequest) dispatch(ctx context.Context, h Handler) (any, error) {
	return h.Chat(ctx, r)
}

func (r OpenSidePanelRequest) dispatch(ctx context.Context, h Handler) (any, error) {
	return h.OpenSidePanel(ctx, r)
}

// GetAPIKeyResponse carries the stored key; APIKey is omitted when absent
type GetAPIKeyResponse struct {
	APIKey string `json:"apiKey,omitempty"`
}

// SuccessResponse answers saveApiKey and verifyApiKey
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ChatResponse carries either the answer or an error string in Output.
// Error marks the latter so the panel can style it.
type ChatResponse struct {
	Output string `json:"output"`
	Error  bool   `json:"error,omitempty"`
}

// EmptyResponse answers openSidePanel
type EmptyResponse struct{}

// ProblemData is the getData payload
type ProblemData struct {
	Question    string `json:"question"`
	Description string `json:"description"`
	UserAns     string `json:"userAns"`
}

// DataResponse answers getData. Data is nil when the page had nothing to give.
type DataResponse struct {
	Data *ProblemData `json:"data,omitempty"`
}

// NewProblemData converts a scraped context to its wire form
func NewProblemData(p models.ProblemContext) *ProblemData {
	return &ProblemData{
		Question:    p.Title,
		Description: p.Description,
		UserAns:     p.CurrentAnswer,
	}
}

// Context converts the wire form back to a ProblemContext
func (d *ProblemData) Context() models.ProblemContext {
	if d == nil {
		return models.ProblemContext{}
	}
	return models.ProblemContext{
		Title:         d.Question,
		Description:   d.Description,
		CurrentAnswer: d.UserAns,
	}
}

// Encode renders a request as a JSON object with a "type" field
func Encode(req Request) ([]byte, error) {
	return encodeTyped(req.Type(), req)
}

// EncodeGetData renders the relay-to-page getData message
func EncodeGetData() ([]byte, error) {
	return encodeTyped(TypeGetData, GetDataRequest{})
}

func encodeTyped(t Type, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", t, err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", t, err)
	}
	fields["type"], _ = json.Marshal(t)
	return json.Marshal(fields)
}

// PeekType returns the discriminant of an encoded message
func PeekType(data []byte) Type {
	return Type(gjson.GetBytes(data, "type").String())
}

// Decode parses an encoded relay request
func Decode(data []byte) (Request, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("malformed message: invalid JSON")
	}

	var (
		req Request
		err error
	)
	switch t := PeekType(data); t {
	case TypeGetAPIKey:
		req = GetAPIKeyRequest{}
	case TypeSaveAPIKey:
		var r SaveAPIKeyRequest
		err = json.Unmarshal(data, &r)
		req = r
	case TypeVerifyAPIKey:
		var r VerifyAPIKeyRequest
		err = json.Unmarshal(data, &r)
		req = r
	case TypeChat:
		var r ChatRequest
		err = json.Unmarshal(data, &r)
		req = r
	case TypeOpenSidePanel:
		var r OpenSidePanelRequest
		err = json.Unmarshal(data, &r)
		req = r
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if err != nil {
		return nil, fmt.Errorf("malformed %s message: %w", PeekType(data), err)
	}
	return req, nil
}
