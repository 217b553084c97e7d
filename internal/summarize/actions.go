package summarize

import (
	"fmt"

	"github.com/dtnitsch/timeline-digest/internal/common"
	"github.com/dtnitsch/timeline-digest/pkg/llm"
	"github.com/dtnitsch/timeline-digest/pkg/pipeline"
	"github.com/urfave/cli/v2"
)

// SummarizeAction condenses an existing corpus file into the final digest.
func SummarizeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	// The key check happens before any file access so a misconfigured
	// environment fails immediately instead of after reading the corpus.
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	client, err := llm.NewGemini(cfg.APIKey, cfg.Model)
	if err != nil {
		return err
	}

	ledger, err := common.OpenLedger(cfg)
	if err != nil {
		logger.Warn("run ledger unavailable, continuing without it", "path", cfg.DBPath, "error", err)
		ledger = nil
	} else {
		defer ledger.Close()
	}

	p := pipeline.New(cfg, nil, client, ledger, logger)
	counters, err := p.Summarize(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("Summarized %d chunks into %s\n", counters.Chunks, cfg.SummaryFile)
	return nil
}
