package agent

import (
	"context"
	"testing"
)

func TestMockAgentCannedResponse(t *testing.T) {
	m := NewMockAgentWithResponses(map[string]string{"ping": "pong"}, "")
	r, err := m.Invoke(context.Background(), "ping")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if r.Text != "pong" {
		t.Fatalf("unexpected reply: %q", r.Text)
	}
	if r.Metadata["agent"] != "mock" {
		t.Fatalf("expected agent metadata, got %v", r.Metadata)
	}
}

func TestMockAgentDefaultResponse(t *testing.T) {
	m := NewMockAgent()
	r, err := m.Invoke(context.Background(), "anything")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if r.Text != "mock response:\nanything" {
		t.Fatalf("unexpected reply: %q", r.Text)
	}
}

func TestEchoAgent(t *testing.T) {
	m := NewEchoAgent()
	r, err := m.Invoke(context.Background(), "repeat me")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if r.Text != "repeat me" {
		t.Fatalf("unexpected reply: %q", r.Text)
	}
}

func TestMockAgentStreamMatchesInvoke(t *testing.T) {
	m := NewEchoAgent()
	s, err := m.InvokeStream(context.Background(), "streamed words here")
	if err != nil {
		t.Fatalf("invoke stream: %v", err)
	}
	defer s.Close()

	text, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if text != "streamed words here" {
		t.Fatalf("unexpected text: %q", text)
	}
}
