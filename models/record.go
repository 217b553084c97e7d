package models

import "time"

// Record is one timestamped post extracted from the timeline. ID is the
// status permalink path, stable for one collection run and used for
// deduplication. Records are never mutated after extraction.
type Record struct {
	ID   string
	Time time.Time
	Text string
}

// Identity returns the record's dedup key: the permalink alone. Two records
// with the same permalink are the same post even when the rendering surface
// re-renders it with different text across scroll iterations.
func (r Record) Identity() string {
	return r.ID
}
