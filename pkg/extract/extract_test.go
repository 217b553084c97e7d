package extract

import (
	"testing"
	"time"
)

const sampleSnapshot = `<html><body>
<article data-testid="tweet">
  <a role="link" href="/financialjuice/status/111"></a>
  <time datetime="2024-01-01T10:00:00.000Z"></time>
  <div data-testid="tweetText">Headline A</div>
</article>
<article data-testid="tweet">
  <a role="link" href="/financialjuice/status/222"></a>
  <time datetime="2024-01-01T09:00:00.000Z"></time>
  <div data-testid="tweetText">Headline B part one</div>
  <div data-testid="tweetText">quoted follow-up</div>
</article>
<article data-testid="tweet">
  <time datetime="2024-01-01T08:00:00.000Z"></time>
  <div data-testid="tweetText">promo card without permalink</div>
</article>
<article data-testid="tweet">
  <a role="link" href="/financialjuice/status/333"></a>
  <div data-testid="tweetText">no timestamp, skipped</div>
</article>
<article data-testid="tweet">
  <a role="link" href="/financialjuice/status/444"></a>
  <time datetime="2024-01-01T07:00:00.000Z"></time>
</article>
</body></html>`

func TestRecordsExtractsValidItems(t *testing.T) {
	records, err := Records(sampleSnapshot)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Records() returned %d records, want 3", len(records))
	}

	r := records[0]
	if r.ID != "/financialjuice/status/111" {
		t.Errorf("ID = %q, want permalink href", r.ID)
	}
	if r.Text != "Headline A" {
		t.Errorf("Text = %q, want Headline A", r.Text)
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !r.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", r.Time, want)
	}
}

func TestRecordsJoinsMultiNodeBody(t *testing.T) {
	records, err := Records(sampleSnapshot)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}

	if records[1].Text != "Headline B part one\nquoted follow-up" {
		t.Errorf("multi-node text = %q, want newline-joined parts", records[1].Text)
	}
}

func TestRecordsEmptyBodyIsNotAnError(t *testing.T) {
	records, err := Records(sampleSnapshot)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}

	last := records[len(records)-1]
	if last.ID != "/financialjuice/status/444" {
		t.Fatalf("expected record 444 retained, got %q", last.ID)
	}
	if last.Text != "" {
		t.Errorf("Text = %q, want empty string for bodyless item", last.Text)
	}
}

func TestRecordsSkipsNonContentItems(t *testing.T) {
	records, err := Records(sampleSnapshot)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}

	for _, r := range records {
		if r.Text == "promo card without permalink" || r.Text == "no timestamp, skipped" {
			t.Errorf("record %q should have been skipped", r.Text)
		}
	}
}

func TestRecordsLenientTimestampParse(t *testing.T) {
	html := `<article data-testid="tweet">
	  <a role="link" href="/h/status/9"></a>
	  <time datetime="2024-01-01 10:00:00 +0000"></time>
	  <div data-testid="tweetText">x</div>
	</article>`

	records, err := Records(html)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Time.UTC().Hour() != 10 {
		t.Errorf("Time = %v, want 10:00 UTC", records[0].Time)
	}
}

func TestRecordsEmptySnapshot(t *testing.T) {
	records, err := Records("<html><body></body></html>")
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from empty snapshot, want 0", len(records))
	}
}
