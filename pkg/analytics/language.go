// Package analytics computes per-run statistics over the collected records:
// the language distribution of the corpus and its dominant keywords. Both are
// stored in the run ledger and logged, nothing downstream depends on them.
package analytics

import (
	"sort"
	"strings"

	"github.com/dtnitsch/timeline-digest/models"
	"github.com/pemistahl/lingua-go"
)

// Unknown is the bucket for records too short or ambiguous to classify.
const Unknown = "Unknown"

// Languages detects record languages. Building the detector loads language
// models, so construct once per run.
type Languages struct {
	detector lingua.LanguageDetector
}

// NewLanguages restricts detection to the languages that actually occur on
// macro/markets feeds; a smaller set keeps classification confident on short
// headlines.
func NewLanguages() *Languages {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.German,
			lingua.French,
			lingua.Italian,
			lingua.Spanish,
			lingua.Japanese,
			lingua.Chinese,
		).
		Build()
	return &Languages{detector: detector}
}

// Distribution counts records per detected language. Empty texts land in the
// Unknown bucket.
func (l *Languages) Distribution(records []models.Record) map[string]int {
	dist := make(map[string]int)
	for _, r := range records {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			dist[Unknown]++
			continue
		}
		lang, ok := l.detector.DetectLanguageOf(text)
		if !ok {
			dist[Unknown]++
			continue
		}
		dist[lang.String()]++
	}
	return dist
}

// stopwords is intentionally small: just enough to keep the keyword list from
// filling up with function words.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"says": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {},
}

// TopKeywords returns the n most frequent non-stopword tokens across all
// record texts, most frequent first.
func TopKeywords(records []models.Record, n int) []string {
	freq := make(map[string]int)
	for _, r := range records {
		for _, word := range strings.Fields(strings.ToLower(r.Text)) {
			word = strings.TrimFunc(word, func(r rune) bool {
				return ('a' > r || r > 'z') && ('0' > r || r > '9')
			})
			if word == "" {
				continue
			}
			if _, skip := stopwords[word]; skip {
				continue
			}
			freq[word]++
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	counts := make([]wordCount, 0, len(freq))
	for w, c := range freq {
		counts = append(counts, wordCount{w, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})

	if n > len(counts) {
		n = len(counts)
	}
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = counts[i].word
	}
	return top
}
