// Package extract pulls timestamped records out of a rendered timeline
// snapshot. It is pure: no network, no browser, just the supplied HTML.
package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/dtnitsch/timeline-digest/models"
)

const (
	itemSelector      = `article[data-testid="tweet"]`
	permalinkSelector = `a[role="link"][href*="/status/"]`
	bodySelector      = `[data-testid="tweetText"]`
)

// Records parses a snapshot of the rendered timeline and returns one Record
// per item that carries both a status permalink and a machine-readable
// timestamp. Items missing either are skipped silently: the rendering surface
// mixes real posts with promos, spacers, and partially hydrated cards, and
// those are not errors.
func Records(html string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var records []models.Record
	doc.Find(itemSelector).Each(func(i int, item *goquery.Selection) {
		href, ok := item.Find(permalinkSelector).First().Attr("href")
		if !ok || href == "" {
			return
		}

		dt, ok := itemTimestamp(item)
		if !ok {
			return
		}

		records = append(records, models.Record{
			ID:   href,
			Time: dt,
			Text: itemText(item),
		})
	})

	return records, nil
}

// itemTimestamp reads the datetime attribute off the item's time element.
// The surface emits RFC 3339; dateparse covers the near-ISO variants seen in
// the wild (missing T, offset without colon).
func itemTimestamp(item *goquery.Selection) (time.Time, bool) {
	attr, ok := item.Find("time").First().Attr("datetime")
	if !ok || attr == "" {
		return time.Time{}, false
	}

	if dt, err := time.Parse(time.RFC3339, attr); err == nil {
		return dt, true
	}
	dt, err := dateparse.ParseAny(attr)
	if err != nil {
		return time.Time{}, false
	}
	return dt, true
}

// itemText concatenates every body-text node with newline separators and
// trims the result. An item whose body region is structurally present but
// textually empty yields "".
func itemText(item *goquery.Selection) string {
	var parts []string
	item.Find(bodySelector).Each(func(i int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
