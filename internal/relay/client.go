package relay

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client is the typed sender side of a Bus, used by the panel and the page
type Client struct {
	bus *Bus
}

// NewClient wraps bus
func NewClient(bus *Bus) *Client {
	return &Client{bus: bus}
}

func call[R any](ctx context.Context, bus *Bus, req Request) (R, error) {
	var resp R
	payload, err := bus.Send(ctx, req)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return resp, fmt.Errorf("malformed %s reply: %w", req.Type(), err)
	}
	return resp, nil
}

// GetAPIKey returns the stored key, or "" when none is stored
func (c *Client) GetAPIKey(ctx context.Context) (string, error) {
	resp, err := call[GetAPIKeyResponse](ctx, c.bus, GetAPIKeyRequest{})
	return resp.APIKey, err
}

// SaveAPIKey stores key
func (c *Client) SaveAPIKey(ctx context.Context, key string) error {
	resp, err := call[SuccessResponse](ctx, c.bus, SaveAPIKeyRequest{APIKey: key})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("api key was not saved")
	}
	return nil
}

// VerifyAPIKey reports whether the API accepted key
func (c *Client) VerifyAPIKey(ctx context.Context, key string) (bool, error) {
	resp, err := call[SuccessResponse](ctx, c.bus, VerifyAPIKeyRequest{APIKey: key})
	return resp.Success, err
}

// Chat runs one chat turn
func (c *Client) Chat(ctx context.Context, userPrompt string) (ChatResponse, error) {
	return call[ChatResponse](ctx, c.bus, ChatRequest{UserPrompt: userPrompt})
}

// OpenSidePanel asks the host to surface the panel for sender
func (c *Client) OpenSidePanel(ctx context.Context, sender Sender) error {
	_, err := call[EmptyResponse](ctx, c.bus, OpenSidePanelRequest{Sender: &sender})
	return err
}
