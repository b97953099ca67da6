package relay

import (
	"context"
	"encoding/json"
	"fmt"
)

// Endpoint is a page reached only through encoded messages
type Endpoint interface {
	Sender() Sender
	HandleMessage(ctx context.Context, data []byte) ([]byte, error)
}

// remoteTab is a Tab whose getData crosses the message boundary
type remoteTab struct {
	endpoint Endpoint
}

// RemoteTab returns a Tab that sends getData to e as an encoded message and
// decodes the reply
func RemoteTab(e Endpoint) Tab {
	return remoteTab{endpoint: e}
}

func (t remoteTab) Sender() Sender {
	return t.endpoint.Sender()
}

func (t remoteTab) GetData(ctx context.Context, _ GetDataRequest) (DataResponse, error) {
	msg, err := EncodeGetData()
	if err != nil {
		return DataResponse{}, err
	}
	reply, err := t.endpoint.HandleMessage(ctx, msg)
	if err != nil {
		return DataResponse{}, err
	}
	if len(reply) == 0 {
		return DataResponse{}, nil
	}

	var resp DataResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return DataResponse{}, fmt.Errorf("malformed getData reply: %w", err)
	}
	return resp, nil
}
