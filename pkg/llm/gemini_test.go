package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dtnitsch/timeline-digest/models"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) (*Gemini, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	g, err := NewGemini("test-key", "gemini-1.5-flash")
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	g.baseURL = ts.URL
	g.client = ts.Client()
	return g, ts
}

func TestNewGeminiMissingKey(t *testing.T) {
	_, err := NewGemini("", "gemini-1.5-flash")
	if !errors.Is(err, models.ErrMissingAPIKey) {
		t.Errorf("NewGemini(\"\") = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerateSendsPartsInOrder(t *testing.T) {
	var gotPath string
	var gotKey string
	var gotBody geminiRequest

	g, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{{Text: "  summary text  "}}}}},
		})
	})

	text, err := g.Generate(context.Background(), []string{"system part", "prompt part"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if text != "  summary text  " {
		t.Errorf("Generate() = %q, want raw response text", text)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	parts := gotBody.Contents[0].Parts
	if len(parts) != 2 || parts[0].Text != "system part" || parts[1].Text != "prompt part" {
		t.Errorf("request parts = %+v, want both parts in order", parts)
	}
}

func TestGenerateEmptyCandidatesIsEmptyString(t *testing.T) {
	g, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	})

	text, err := g.Generate(context.Background(), []string{"p"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "" {
		t.Errorf("Generate() = %q, want empty string", text)
	}
}

func TestGenerateErrorEnvelope(t *testing.T) {
	g, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(geminiResponse{
			Error: &geminiError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"},
		})
	})

	_, err := g.Generate(context.Background(), []string{"p"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Generate() = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
}

func TestGenerateNonJSONErrorBody(t *testing.T) {
	g, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	_, err := g.Generate(context.Background(), []string{"p"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Generate() = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", apiErr.StatusCode)
	}
}
