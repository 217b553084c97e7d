package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dtnitsch/timeline-digest/pkg/llm"
)

func fastConfig() Config {
	return Config{MaxRetries: 3, BaseDelay: time.Millisecond}
}

func TestWithBackoffSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("WithBackoff() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestWithBackoffRetriesServerErrors(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &llm.APIError{StatusCode: 503, Status: "UNAVAILABLE"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithBackoff() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3", calls)
	}
}

func TestWithBackoffStopsOnClientError(t *testing.T) {
	calls := 0
	clientErr := &llm.APIError{StatusCode: 400, Status: "INVALID_ARGUMENT"}
	err := WithBackoff(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return clientErr
	})
	if !errors.Is(err, clientErr) {
		t.Fatalf("WithBackoff() = %v, want the client error unchanged", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestWithBackoffGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return &llm.APIError{StatusCode: 500}
	})
	if err == nil {
		t.Fatal("WithBackoff() expected error after exhausting retries")
	}
	if calls != 4 {
		t.Errorf("op called %d times, want 4 (initial + 3 retries)", calls)
	}
}

func TestWithBackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithBackoff(ctx, Config{MaxRetries: 5, BaseDelay: time.Hour}, func(ctx context.Context) error {
		return &llm.APIError{StatusCode: 500}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithBackoff() = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &llm.APIError{StatusCode: 429}, true},
		{"server error", &llm.APIError{StatusCode: 502}, true},
		{"client error", &llm.APIError{StatusCode: 403}, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"transport", errors.New("connection reset by peer"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
