// Package summary implements the two-stage chunk summarization: a map call
// per chunk and one reduce call that synthesizes the final document.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/timeline-digest/pkg/llm"
	"github.com/dtnitsch/timeline-digest/pkg/retry"
)

// systemPart pins the service to the instruction template; without it the
// model tends to invent extra sections.
const systemPart = "Follow the user's instructions exactly. Do not add extra sections beyond what they ask."

// chunkSplitMarker separates partial summaries inside the reduce prompt.
const chunkSplitMarker = "\n\n--- CHUNK SPLIT ---\n\n"

// Engine wraps the generation service with the fixed instruction template.
// Map and Reduce are stateless with respect to each other; all shared service
// state lives in the prompt.
type Engine struct {
	client       llm.Client
	instructions string
	retry        retry.Config
	log          *slog.Logger
}

// New builds an engine. The instructions text is embedded verbatim in every
// map and reduce prompt.
func New(client llm.Client, instructions string, retryCfg retry.Config, log *slog.Logger) *Engine {
	return &Engine{
		client:       client,
		instructions: instructions,
		retry:        retryCfg,
		log:          log,
	}
}

// Map summarizes one chunk. Position is 1-based; the position/total markers
// let the service know it is seeing a slice, not the whole corpus. An empty
// service response is an empty partial, not an error.
func (e *Engine) Map(ctx context.Context, chunk string, position, total int) (string, error) {
	prompt := fmt.Sprintf("%s\n\nCHUNK %d/%d — POSTS START\n<<<\n%s\n>>>\nReturn a concise markdown summary (headings + bullet points).",
		e.instructions, position, total, chunk)

	text, err := e.generate(ctx, []string{systemPart, prompt})
	if err != nil {
		return "", fmt.Errorf("summary: map %d/%d failed: %w", position, total, err)
	}

	e.log.Info("chunk summarized", "position", position, "total", total, "bytes", len(text))
	return strings.TrimSpace(text), nil
}

// Reduce merges the ordered partial summaries into one Markdown document that
// follows the instruction template.
func (e *Engine) Reduce(ctx context.Context, partials []string) (string, error) {
	joined := strings.Join(partials, chunkSplitMarker)
	prompt := e.instructions +
		"\n\nYou are given partial summaries of post batches. " +
		"Merge them into ONE well-structured Markdown document following the exact instructions above.\n\n" +
		"PARTIAL SUMMARIES START\n<<<\n" + joined + "\n>>>\n" +
		"Return ONLY the final markdown."

	text, err := e.generate(ctx, []string{prompt})
	if err != nil {
		return "", fmt.Errorf("summary: reduce over %d partials failed: %w", len(partials), err)
	}
	return strings.TrimSpace(text), nil
}

func (e *Engine) generate(ctx context.Context, parts []string) (string, error) {
	var text string
	err := retry.WithBackoff(ctx, e.retry, func(ctx context.Context) error {
		var genErr error
		text, genErr = e.client.Generate(ctx, parts)
		return genErr
	})
	return text, err
}
