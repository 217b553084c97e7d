// Package pipeline sequences the stages: collect -> persist corpus -> chunk
// -> map -> reduce -> persist summary, with progress counters and the run
// ledger along the way.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dtnitsch/timeline-digest/models"
	"github.com/dtnitsch/timeline-digest/pkg/analytics"
	"github.com/dtnitsch/timeline-digest/pkg/browser"
	"github.com/dtnitsch/timeline-digest/pkg/collector"
	"github.com/dtnitsch/timeline-digest/pkg/corpus"
	"github.com/dtnitsch/timeline-digest/pkg/db"
	"github.com/dtnitsch/timeline-digest/pkg/llm"
	"github.com/dtnitsch/timeline-digest/pkg/retry"
	"github.com/dtnitsch/timeline-digest/pkg/summary"
)

const topKeywordCount = 25

// Counters reports what a run produced.
type Counters struct {
	Records     int
	CorpusBytes int
	Chunks      int
}

// Pipeline wires the stages together. Session is only needed by Collect,
// client only by Summarize; the ledger is optional and nil disables
// bookkeeping.
type Pipeline struct {
	cfg     *models.Config
	session browser.Session
	client  llm.Client
	ledger  *db.DB
	log     *slog.Logger
	retry   retry.Config
}

func New(cfg *models.Config, session browser.Session, client llm.Client, ledger *db.DB, log *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		session: session,
		client:  client,
		ledger:  ledger,
		log:     log,
		retry:   retry.DefaultConfig(),
	}
}

// Collect runs the scroll loop and persists the corpus file. The partial
// ledger row survives a failed run so the runs command shows what happened.
func (p *Pipeline) Collect(ctx context.Context) (Counters, error) {
	var c Counters

	loc, err := p.cfg.Location()
	if err != nil {
		return c, fmt.Errorf("pipeline: %w", err)
	}

	// The ledger is bookkeeping, never a reason to skip collection.
	var runID int64
	if p.ledger != nil {
		runID, err = p.ledger.CreateRun(p.cfg.Handle, p.cfg.HoursBack)
		if err != nil {
			p.log.Warn("failed to open run in ledger, continuing without it", "error", err)
			runID = 0
		}
	}

	col := collector.New(p.session, p.cfg.Window(), p.cfg.MaxScrolls, p.cfg.ScrollWait(), p.log)
	records, err := col.Collect(ctx, p.cfg.Handle)
	if err != nil {
		p.failRun(runID, err)
		return c, err
	}

	corp := corpus.New(records)
	flat := corp.Flatten(loc)
	if err := corp.WriteFile(p.cfg.CorpusFile, loc); err != nil {
		p.failRun(runID, err)
		return c, err
	}

	c.Records = corp.Len()
	c.CorpusBytes = len(flat)
	p.log.Info("corpus persisted", "path", p.cfg.CorpusFile, "records", c.Records, "bytes", c.CorpusBytes)

	if p.ledger != nil && runID != 0 {
		languages := analytics.NewLanguages().Distribution(corp.Records)
		keywords := analytics.TopKeywords(corp.Records, topKeywordCount)
		p.log.Info("corpus analytics", "languages", languages, "keywords", keywords)

		if err := p.ledger.FinishCollect(runID, c.Records, c.CorpusBytes, p.cfg.CorpusFile, languages, keywords); err != nil {
			p.log.Warn("failed to record collection in ledger", "run_id", runID, "error", err)
		}
	}

	return c, nil
}

// Summarize chunks the persisted corpus and runs the map/reduce against the
// generation service. All-or-nothing: no summary file is written unless the
// reduce step succeeds.
func (p *Pipeline) Summarize(ctx context.Context) (Counters, error) {
	var c Counters

	flat, err := corpus.LoadFlat(p.cfg.CorpusFile)
	if err != nil {
		return c, fmt.Errorf("pipeline: %w", err)
	}
	if flat == "" {
		return c, fmt.Errorf("pipeline: %w: %s", models.ErrEmptyCorpus, p.cfg.CorpusFile)
	}
	c.CorpusBytes = len(flat)

	chunks := corpus.Split(flat, p.cfg.MaxChunkBytes)
	c.Chunks = len(chunks)
	p.log.Info("corpus chunked", "bytes", c.CorpusBytes, "chunks", c.Chunks, "budget", p.cfg.MaxChunkBytes)

	engine := summary.New(p.client, p.cfg.Instructions, p.retry, p.log)

	// Map calls stay sequential in chunk order; reduce depends on the
	// partials arriving in position order.
	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := engine.Map(ctx, chunk, i+1, len(chunks))
		if err != nil {
			return c, err
		}
		partials = append(partials, partial)
	}

	final, err := engine.Reduce(ctx, partials)
	if err != nil {
		return c, err
	}

	if err := writeAtomic(p.cfg.SummaryFile, []byte(final)); err != nil {
		return c, fmt.Errorf("pipeline: %w", err)
	}
	p.log.Info("summary persisted", "path", p.cfg.SummaryFile, "bytes", len(final))

	if p.ledger != nil {
		runID, err := p.ledger.LatestRunForCorpus(p.cfg.CorpusFile)
		if err != nil {
			p.log.Warn("ledger lookup failed", "error", err)
		} else if runID != 0 {
			if err := p.ledger.MarkSummarized(runID, c.Chunks, p.cfg.SummaryFile); err != nil {
				p.log.Warn("failed to close run in ledger", "run_id", runID, "error", err)
			}
		}
	}

	return c, nil
}

// Run executes the full pipeline once.
func (p *Pipeline) Run(ctx context.Context) (Counters, error) {
	collected, err := p.Collect(ctx)
	if err != nil {
		return collected, err
	}

	summarized, err := p.Summarize(ctx)
	summarized.Records = collected.Records
	return summarized, err
}

func (p *Pipeline) failRun(runID int64, runErr error) {
	if p.ledger == nil || runID == 0 {
		return
	}
	if err := p.ledger.MarkFailed(runID, runErr); err != nil {
		p.log.Warn("failed to mark run failed in ledger", "run_id", runID, "error", err)
	}
}

// writeAtomic writes the whole file via a temp file and rename so a crash
// mid-write never leaves a truncated summary behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".summary-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}
