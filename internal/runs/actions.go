package runs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtnitsch/timeline-digest/internal/common"
	"github.com/urfave/cli/v2"
)

// RunsAction lists recent pipeline runs from the ledger.
func RunsAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	ledger, err := common.OpenLedger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open run ledger: %w", err)
	}
	defer ledger.Close()

	runs, err := ledger.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-16s %-7s %-12s %-8s %-8s %-7s\n",
		"ID", "Started", "Handle", "Hours", "Status", "Records", "Bytes", "Chunks")
	fmt.Println(strings.Repeat("-", 92))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-16s %-7.1f %-12s %-8d %-8d %-7d\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Handle,
			r.HoursBack,
			r.Status,
			r.RecordCount,
			r.CorpusBytes,
			r.ChunkCount,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'timeline-digest runs show <id>' to see details\n")

	return nil
}

// ShowRunAction prints the full detail of a single run.
func ShowRunAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("run ID required\nUsage: timeline-digest runs show <run_id>")
	}
	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID: %s", c.Args().First())
	}

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	ledger, err := common.OpenLedger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open run ledger: %w", err)
	}
	defer ledger.Close()

	run, err := ledger.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Started:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt.Valid {
		fmt.Printf("Finished:    %s\n", run.FinishedAt.Time.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Handle:      %s\n", run.Handle)
	fmt.Printf("Window:      %.1f hours\n", run.HoursBack)
	fmt.Printf("Status:      %s\n", run.Status)
	if run.Error.Valid {
		fmt.Printf("Error:       %s\n", run.Error.String)
	}
	fmt.Printf("Records:     %d (%d corpus bytes, %d chunks)\n",
		run.RecordCount, run.CorpusBytes, run.ChunkCount)
	if run.CorpusPath.Valid {
		fmt.Printf("Corpus:      %s\n", run.CorpusPath.String)
	}
	if run.SummaryPath.Valid {
		fmt.Printf("Summary:     %s\n", run.SummaryPath.String)
	}

	if run.Languages.Valid && run.Languages.String != "" {
		var languages map[string]int
		if err := json.Unmarshal([]byte(run.Languages.String), &languages); err == nil && len(languages) > 0 {
			fmt.Printf("\nLanguages:\n")
			for lang, count := range languages {
				fmt.Printf("  %-12s %d\n", lang, count)
			}
		}
	}

	if run.Keywords.Valid && run.Keywords.String != "" {
		var keywords []string
		if err := json.Unmarshal([]byte(run.Keywords.String), &keywords); err == nil && len(keywords) > 0 {
			fmt.Printf("\nKeywords: %s\n", strings.Join(keywords, ", "))
		}
	}

	return nil
}
