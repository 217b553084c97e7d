package run

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/timeline-digest/internal/common"
	"github.com/dtnitsch/timeline-digest/models"
	"github.com/dtnitsch/timeline-digest/pkg/browser"
	"github.com/dtnitsch/timeline-digest/pkg/db"
	"github.com/dtnitsch/timeline-digest/pkg/llm"
	"github.com/dtnitsch/timeline-digest/pkg/pipeline"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
)

// RunAction executes the full collect-then-summarize pipeline. With
// --schedule it keeps running on the given cron expression until a shutdown
// signal arrives.
func RunAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
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

	schedule := c.String("schedule")
	if schedule == "" {
		counters, err := runOnce(c.Context, cfg, client, ledger, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Collected %d records, summarized %d chunks into %s\n",
			counters.Records, counters.Chunks, cfg.SummaryFile)
		return nil
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(schedule, func() {
		logger.Info("scheduled run starting", "schedule", schedule)
		counters, runErr := runOnce(ctx, cfg, client, ledger, logger)
		if runErr != nil {
			logger.Error("scheduled run failed", "error", runErr)
			return
		}
		logger.Info("scheduled run finished",
			"records", counters.Records, "chunks", counters.Chunks, "summary", cfg.SummaryFile)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	scheduler.Start()
	logger.Info("scheduler started", "schedule", schedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	cancel()
	<-scheduler.Stop().Done()
	return nil
}

// runOnce launches a fresh browser session for a single pipeline pass. The
// session never outlives the pass; scheduled runs each get their own.
func runOnce(ctx context.Context, cfg *models.Config, client llm.Client, ledger *db.DB, logger *slog.Logger) (pipeline.Counters, error) {
	session, err := browser.NewChrome(ctx, browser.Options{
		UserAgent:   cfg.UserAgent,
		Headless:    *cfg.Headless,
		CookiesFile: cfg.CookiesFile,
	}, logger)
	if err != nil {
		return pipeline.Counters{}, fmt.Errorf("failed to start browser session: %w", err)
	}
	defer session.Close()

	p := pipeline.New(cfg, session, client, ledger, logger)
	return p.Run(ctx)
}
