package collect

import (
	"fmt"

	"github.com/dtnitsch/timeline-digest/internal/common"
	"github.com/dtnitsch/timeline-digest/pkg/browser"
	"github.com/dtnitsch/timeline-digest/pkg/pipeline"
	"github.com/urfave/cli/v2"
)

// CollectAction scrapes the configured timeline and writes the flat corpus file.
func CollectAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
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

	session, err := browser.NewChrome(c.Context, browser.Options{
		UserAgent:   cfg.UserAgent,
		Headless:    *cfg.Headless,
		CookiesFile: cfg.CookiesFile,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser session: %w", err)
	}
	defer session.Close()

	p := pipeline.New(cfg, session, nil, ledger, logger)
	counters, err := p.Collect(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("Collected %d records (%d bytes) into %s\n",
		counters.Records, counters.CorpusBytes, cfg.CorpusFile)
	return nil
}
