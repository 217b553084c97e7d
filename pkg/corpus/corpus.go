// Package corpus holds the deduplicated, time-ordered record set for one
// collection run, its flat text serialization, and the chunker that splits
// the flat form for summarization.
package corpus

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dtnitsch/timeline-digest/models"
)

// timeLayout is the record timestamp format in the flat file, rendered in the
// configured output timezone.
const timeLayout = "2006-01-02 15:04:05 MST"

// Corpus is an ordered sequence of records, newest first, with no duplicate
// identities.
type Corpus struct {
	Records []models.Record
}

// New normalizes the given records into a corpus: first occurrence wins per
// identity, then a stable sort newest first. The input slice is not modified.
func New(records []models.Record) *Corpus {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		id := r.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})

	return &Corpus{Records: out}
}

// Len returns the record count.
func (c *Corpus) Len() int { return len(c.Records) }

// Flatten serializes the corpus to its flat text form: one
// "timestamp | text" block per record followed by a blank line, timestamps
// rendered in loc.
func (c *Corpus) Flatten(loc *time.Location) string {
	var sb strings.Builder
	for _, r := range c.Records {
		sb.WriteString(r.Time.In(loc).Format(timeLayout))
		sb.WriteString(" | ")
		sb.WriteString(r.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteFile persists the flat form, UTF-8, newest first.
func (c *Corpus) WriteFile(path string, loc *time.Location) error {
	if err := os.WriteFile(path, []byte(c.Flatten(loc)), 0600); err != nil {
		return fmt.Errorf("corpus: failed to write %s: %w", path, err)
	}
	return nil
}

// LoadFlat reads a persisted corpus file back as trimmed plain text for
// chunking. Record boundaries stay blank-line separators; the per-record
// structure is not reconstructed.
func LoadFlat(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("corpus: failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
