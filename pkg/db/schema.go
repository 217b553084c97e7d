package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs table: one row per collection/summarization run
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    handle TEXT NOT NULL,
    hours_back REAL NOT NULL,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,

    -- collected -> summarized, or failed
    status TEXT NOT NULL DEFAULT 'collected',
    error TEXT,

    record_count INTEGER DEFAULT 0,
    corpus_bytes INTEGER DEFAULT 0,
    chunk_count INTEGER DEFAULT 0,

    corpus_path TEXT,
    summary_path TEXT,

    -- language distribution as JSON object: {"English": 240, ...}
    languages TEXT,
    -- top keywords as JSON array: ["inflation", "fed", ...]
    keywords TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_handle ON runs(handle);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
