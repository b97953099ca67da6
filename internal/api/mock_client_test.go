package api

import (
	"context"
	"errors"
	"testing"

	"github.com/diogo/leety/internal/models"
)

func TestMockClientDefaults(t *testing.T) {
	m := &MockClient{}

	out, err := m.GenerateContent(context.Background(), "k", GenerateRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if out.Text() != "mock response" {
		t.Errorf("Text() = %q", out.Text())
	}
	if m.LastRequest.Prompt != "p" || m.LastKey != "k" {
		t.Errorf("call not recorded: %+v", m.LastRequest)
	}
}

func TestMockClientScripted(t *testing.T) {
	boom := errors.New("boom")
	m := &MockClient{VerifyErr: boom, GenerateContentVal: &models.ModelOutput{Candidates: []models.Candidate{{Text: "x"}}}}

	if err := m.VerifyKey(context.Background(), "k"); !errors.Is(err, boom) {
		t.Errorf("VerifyKey() error = %v", err)
	}
	out, _ := m.GenerateContent(context.Background(), "k", GenerateRequest{Prompt: "p"})
	if out.Text() != "x" {
		t.Errorf("Text() = %q", out.Text())
	}

	v, g := m.Calls()
	if v != 1 || g != 1 {
		t.Errorf("Calls() = %d, %d", v, g)
	}
}
