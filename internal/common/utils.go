// Package common holds helpers shared by the CLI command actions.
package common

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/timeline-digest/models"
	"github.com/dtnitsch/timeline-digest/pkg/db"
	"github.com/urfave/cli/v2"
)

// NewLogger builds the structured logger every command uses. Logs go to
// stderr so stdout stays clean for command output.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads the config file named by --config and applies the
// command-line overrides that take precedence over file values.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("handle") {
		cfg.Handle = c.String("handle")
	}
	if c.IsSet("hours") {
		cfg.HoursBack = c.Float64("hours")
	}
	if c.IsSet("corpus") {
		cfg.CorpusFile = c.String("corpus")
	}
	if c.IsSet("output") {
		cfg.SummaryFile = c.String("output")
	}

	return cfg, nil
}

// OpenLedger opens the run ledger at the configured path. A ledger failure
// is not fatal to a pipeline run; callers log the error and continue with a
// nil ledger.
func OpenLedger(cfg *models.Config) (*db.DB, error) {
	return db.Open(cfg.DBPath)
}
