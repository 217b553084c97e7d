package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/timeline-digest/pkg/llm"
	"github.com/dtnitsch/timeline-digest/pkg/retry"
)

// fakeClient records every prompt and replays scripted responses.
type fakeClient struct {
	calls     [][]string
	responses []string
	err       error
}

func (f *fakeClient) Generate(ctx context.Context, parts []string) (string, error) {
	f.calls = append(f.calls, parts)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func newTestEngine(client llm.Client) *Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(client, "INSTRUCTIONS", retry.Config{MaxRetries: 0, BaseDelay: time.Millisecond}, log)
}

func TestMapPromptShape(t *testing.T) {
	client := &fakeClient{responses: []string{"  partial one  "}}
	e := newTestEngine(client)

	got, err := e.Map(context.Background(), "chunk body", 2, 5)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if got != "partial one" {
		t.Errorf("Map() = %q, want trimmed response", got)
	}
	if len(client.calls) != 1 {
		t.Fatalf("Generate called %d times, want 1", len(client.calls))
	}

	parts := client.calls[0]
	if len(parts) != 2 {
		t.Fatalf("got %d prompt parts, want system + prompt", len(parts))
	}
	if !strings.Contains(parts[0], "Follow the user's instructions exactly") {
		t.Errorf("first part should be the system instruction, got %q", parts[0])
	}
	prompt := parts[1]
	for _, want := range []string{"INSTRUCTIONS", "CHUNK 2/5", "chunk body"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("map prompt missing %q", want)
		}
	}
}

func TestMapEmptyResponseIsNotAnError(t *testing.T) {
	e := newTestEngine(&fakeClient{responses: []string{""}})

	got, err := e.Map(context.Background(), "chunk", 1, 1)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if got != "" {
		t.Errorf("Map() = %q, want empty string", got)
	}
}

func TestReduceJoinsPartialsInOrder(t *testing.T) {
	client := &fakeClient{responses: []string{"final doc"}}
	e := newTestEngine(client)

	got, err := e.Reduce(context.Background(), []string{"p1", "p2", "p3"})
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if got != "final doc" {
		t.Errorf("Reduce() = %q", got)
	}

	prompt := client.calls[0][0]
	joined := "p1\n\n--- CHUNK SPLIT ---\n\np2\n\n--- CHUNK SPLIT ---\n\np3"
	if !strings.Contains(prompt, joined) {
		t.Errorf("reduce prompt should join partials in order with the split marker, got %q", prompt)
	}
	if !strings.Contains(prompt, "INSTRUCTIONS") {
		t.Error("reduce prompt should embed the instruction template")
	}
	if strings.Index(prompt, "INSTRUCTIONS") > strings.Index(prompt, joined) {
		t.Error("instructions should precede the partial summaries")
	}
}

func TestMapPropagatesServiceFailure(t *testing.T) {
	serviceErr := &llm.APIError{StatusCode: 403, Status: "PERMISSION_DENIED"}
	e := newTestEngine(&fakeClient{err: serviceErr})

	_, err := e.Map(context.Background(), "chunk", 1, 1)
	var apiErr *llm.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Map() = %v, want wrapped *APIError", err)
	}
}

func TestMapRetriesTransientFailures(t *testing.T) {
	// First call rate-limited, second succeeds.
	client := &retryOnceClient{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New(client, "I", retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond}, log)

	got, err := e.Map(context.Background(), "chunk", 1, 1)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Map() = %q, want ok", got)
	}
	if client.calls != 2 {
		t.Errorf("Generate called %d times, want 2", client.calls)
	}
}

type retryOnceClient struct {
	calls int
}

func (c *retryOnceClient) Generate(ctx context.Context, parts []string) (string, error) {
	c.calls++
	if c.calls == 1 {
		return "", &llm.APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED"}
	}
	return "ok", nil
}
