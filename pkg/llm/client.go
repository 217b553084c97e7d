// Package llm wraps the text-generation service behind a minimal client
// interface so the summary engine can be tested without network access.
package llm

import (
	"context"
	"fmt"
)

// Client issues one generation request. The service keeps no state between
// calls; every request carries everything it needs.
type Client interface {
	// Generate sends the prompt parts in order and returns the response
	// text. An empty response is returned as "" with a nil error.
	Generate(ctx context.Context, parts []string) (string, error)
}

// APIError is a non-2xx response from the generation service. Retry logic
// branches on the status code.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm: API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
}
