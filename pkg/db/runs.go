package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Run is one ledger row.
type Run struct {
	RunID       int64
	Handle      string
	HoursBack   float64
	StartedAt   time.Time
	FinishedAt  sql.NullTime
	Status      string
	Error       sql.NullString
	RecordCount int
	CorpusBytes int
	ChunkCount  int
	CorpusPath  sql.NullString
	SummaryPath sql.NullString
	Languages   sql.NullString
	Keywords    sql.NullString
}

// Run statuses.
const (
	StatusCollected  = "collected"
	StatusSummarized = "summarized"
	StatusFailed     = "failed"
)

// CreateRun inserts a new run row and returns its ID.
func (db *DB) CreateRun(handle string, hoursBack float64) (int64, error) {
	res, err := db.Exec(
		"INSERT INTO runs (handle, hours_back, status) VALUES (?, ?, ?)",
		handle, hoursBack, StatusCollected,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// FinishCollect records the collection outcome: counts, corpus path, and the
// per-run analytics.
func (db *DB) FinishCollect(runID int64, recordCount, corpusBytes int, corpusPath string, languages map[string]int, keywords []string) error {
	langJSON, err := json.Marshal(languages)
	if err != nil {
		return fmt.Errorf("failed to marshal languages: %w", err)
	}
	kwJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	_, err = db.Exec(`
		UPDATE runs
		SET record_count = ?, corpus_bytes = ?, corpus_path = ?, languages = ?, keywords = ?
		WHERE run_id = ?`,
		recordCount, corpusBytes, corpusPath, string(langJSON), string(kwJSON), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	return nil
}

// MarkSummarized closes a run after the final document is persisted.
func (db *DB) MarkSummarized(runID int64, chunkCount int, summaryPath string) error {
	_, err := db.Exec(`
		UPDATE runs
		SET status = ?, chunk_count = ?, summary_path = ?, finished_at = CURRENT_TIMESTAMP
		WHERE run_id = ?`,
		StatusSummarized, chunkCount, summaryPath, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run %d summarized: %w", runID, err)
	}
	return nil
}

// MarkFailed closes a run with its failure message.
func (db *DB) MarkFailed(runID int64, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := db.Exec(`
		UPDATE runs
		SET status = ?, error = ?, finished_at = CURRENT_TIMESTAMP
		WHERE run_id = ?`,
		StatusFailed, msg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run %d failed: %w", runID, err)
	}
	return nil
}

// GetRun fetches one run by ID.
func (db *DB) GetRun(runID int64) (*Run, error) {
	row := db.QueryRow(`
		SELECT run_id, handle, hours_back, started_at, finished_at, status, error,
		       record_count, corpus_bytes, chunk_count, corpus_path, summary_path,
		       languages, keywords
		FROM runs WHERE run_id = ?`, runID)

	var r Run
	err := row.Scan(&r.RunID, &r.Handle, &r.HoursBack, &r.StartedAt, &r.FinishedAt,
		&r.Status, &r.Error, &r.RecordCount, &r.CorpusBytes, &r.ChunkCount,
		&r.CorpusPath, &r.SummaryPath, &r.Languages, &r.Keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return &r, nil
}

// LatestRunForCorpus finds the most recent collected-but-not-summarized run
// that produced the given corpus file, so a standalone summarize can close it
// out. Returns 0 when none matches.
func (db *DB) LatestRunForCorpus(corpusPath string) (int64, error) {
	var runID int64
	err := db.QueryRow(`
		SELECT run_id FROM runs
		WHERE corpus_path = ? AND status = ?
		ORDER BY started_at DESC, run_id DESC
		LIMIT 1`, corpusPath, StatusCollected).Scan(&runID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find run for corpus %s: %w", corpusPath, err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, handle, hours_back, started_at, finished_at, status, error,
		       record_count, corpus_bytes, chunk_count, corpus_path, summary_path,
		       languages, keywords
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Handle, &r.HoursBack, &r.StartedAt, &r.FinishedAt,
			&r.Status, &r.Error, &r.RecordCount, &r.CorpusBytes, &r.ChunkCount,
			&r.CorpusPath, &r.SummaryPath, &r.Languages, &r.Keywords); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
