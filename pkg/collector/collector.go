// Package collector drives the incremental scroll-and-extract loop against a
// live timeline and applies the time cutoff and dedup policy.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dtnitsch/timeline-digest/models"
	"github.com/dtnitsch/timeline-digest/pkg/browser"
	"github.com/dtnitsch/timeline-digest/pkg/extract"
)

const timelineBaseURL = "https://x.com/"

// Collector accumulates records from one timeline within a trailing window.
type Collector struct {
	session    browser.Session
	window     time.Duration
	maxScrolls int
	settle     time.Duration
	log        *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New builds a collector around an already-open session. The session stays
// owned by the caller; the collector never closes it.
func New(session browser.Session, window time.Duration, maxScrolls int, settle time.Duration, log *slog.Logger) *Collector {
	return &Collector{
		session:    session,
		window:     window,
		maxScrolls: maxScrolls,
		settle:     settle,
		log:        log,
		now:        time.Now,
	}
}

// Collect navigates to the handle's timeline and runs the scroll loop,
// returning every in-window record newest first with no duplicate
// identities. A navigation failure is fatal; a bad snapshot on a single
// iteration is logged and skipped.
func (c *Collector) Collect(ctx context.Context, handle string) ([]models.Record, error) {
	cutoff := c.now().UTC().Add(-c.window)

	if err := c.session.Navigate(timelineBaseURL + handle); err != nil {
		return nil, fmt.Errorf("collector: failed to reach timeline for %s: %w", handle, err)
	}

	c.session.DismissOverlays()

	seen := make(map[string]struct{})
	var rows []models.Record

	for i := 0; i < c.maxScrolls; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		html, err := c.session.Snapshot()
		if err != nil {
			c.log.Warn("snapshot failed, skipping iteration", "iteration", i, "error", err)
		} else {
			records, err := extract.Records(html)
			if err != nil {
				c.log.Warn("extraction failed, skipping iteration", "iteration", i, "error", err)
			} else {
				rows = c.absorb(rows, records, seen, cutoff)
			}
		}

		if err := c.session.ScrollMore(); err != nil {
			c.log.Warn("scroll failed", "iteration", i, "error", err)
		}
		c.session.Wait(c.settle)
	}

	c.log.Info("collection finished", "handle", handle, "records", len(rows), "cutoff", cutoff)
	return finalize(rows), nil
}

// absorb merges newly visible records into rows. Stale records are discarded
// without entering the seen set: re-discarding the same stale item on a later
// iteration is a harmless no-op.
func (c *Collector) absorb(rows, records []models.Record, seen map[string]struct{}, cutoff time.Time) []models.Record {
	for _, r := range records {
		id := r.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		if r.Time.Before(cutoff) {
			continue
		}
		rows = append(rows, r)
		seen[id] = struct{}{}
	}
	return rows
}

// finalize dedups by identity (first occurrence wins, a safety net on top of
// the seen-set logic) and sorts newest first.
func finalize(rows []models.Record) []models.Record {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
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
	return out
}
