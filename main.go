package main

import (
	"log"
	"os"

	"github.com/dtnitsch/timeline-digest/internal/collect"
	"github.com/dtnitsch/timeline-digest/internal/login"
	"github.com/dtnitsch/timeline-digest/internal/run"
	"github.com/dtnitsch/timeline-digest/internal/runs"
	"github.com/dtnitsch/timeline-digest/internal/summarize"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "timeline-digest",
		Usage: "Collect a social timeline into a flat corpus and condense it into a daily digest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "collect",
				Usage:  "Scrape the timeline and write the corpus file",
				Action: collect.CollectAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "handle",
						Usage: "timeline handle to scrape (overrides config)",
					},
					&cli.Float64Flag{
						Name:  "hours",
						Usage: "collection window in hours (overrides config)",
					},
					&cli.StringFlag{
						Name:  "corpus",
						Usage: "corpus output path (overrides config)",
					},
				},
			},
			{
				Name:   "summarize",
				Usage:  "Condense an existing corpus file into the final digest",
				Action: summarize.SummarizeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "corpus",
						Usage: "corpus input path (overrides config)",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "digest output path (overrides config)",
					},
				},
			},
			{
				Name:   "run",
				Usage:  "Collect then summarize in one pass",
				Action: run.RunAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "handle",
						Usage: "timeline handle to scrape (overrides config)",
					},
					&cli.Float64Flag{
						Name:  "hours",
						Usage: "collection window in hours (overrides config)",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "digest output path (overrides config)",
					},
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "cron expression; keep running on this schedule instead of once",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "List recent pipeline runs from the ledger",
				Action: runs.RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "max runs to list",
					},
				},
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show details for one run",
						ArgsUsage: "<run_id>",
						Action:    runs.ShowRunAction,
					},
				},
			},
			{
				Name:   "login",
				Usage:  "Open a visible browser to sign in and save session cookies",
				Action: login.LoginAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
