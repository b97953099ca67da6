package api

import (
	"context"
	"sync"

	"github.com/diogo/leety/internal/models"
)

// MockClient is a scriptable Client for tests of the relay and commands
type MockClient struct {
	// Mock return values
	VerifyErr          error
	GenerateContentVal *models.ModelOutput
	GenerateContentErr error
	// GenerateFunc, when set, takes precedence over the fixed values
	GenerateFunc func(ctx context.Context, apiKey string, req GenerateRequest) (*models.ModelOutput, error)

	// Call counters/recorders
	mu            sync.Mutex
	VerifyCalls   int
	GenerateCalls int
	LastKey       string
	LastRequest   GenerateRequest
}

var _ Client = (*MockClient)(nil)

// VerifyKey records the call and returns VerifyErr
func (m *MockClient) VerifyKey(_ context.Context, apiKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyCalls++
	m.LastKey = apiKey
	return m.VerifyErr
}

// GenerateContent records the call and returns the scripted output
func (m *MockClient) GenerateContent(ctx context.Context, apiKey string, req GenerateRequest) (*models.ModelOutput, error) {
	m.mu.Lock()
	m.GenerateCalls++
	m.LastKey = apiKey
	m.LastRequest = req
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, apiKey, req)
	}
	if m.GenerateContentErr != nil {
		return nil, m.GenerateContentErr
	}
	if m.GenerateContentVal != nil {
		return m.GenerateContentVal, nil
	}
	return &models.ModelOutput{Candidates: []models.Candidate{{Text: "mock response"}}}, nil
}

// Calls returns the verify and generate call counts
func (m *MockClient) Calls() (verify, generate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VerifyCalls, m.GenerateCalls
}
