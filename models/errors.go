package models

import "errors"

// Sentinel errors that callers branch on. Everything else is wrapped ad hoc
// with fmt.Errorf and %w.
var (
	// ErrMissingAPIKey means no generation-service credential was found in
	// the config file or the GOOGLE_API_KEY environment variable. Raised
	// before any request is issued.
	ErrMissingAPIKey = errors.New("missing API key (set GOOGLE_API_KEY or api_key in config)")

	// ErrEmptyCorpus means the persisted corpus file had no content when
	// summarization began.
	ErrEmptyCorpus = errors.New("corpus file is empty")
)
