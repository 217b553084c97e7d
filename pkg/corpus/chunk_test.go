package corpus

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitRoundTrip(t *testing.T) {
	inputs := []string{
		"a\n\nb\n\nc",
		"a\n\nb\n\nc\n\n",
		"single block",
		"block one\nstill block one\n\nblock two",
		"\n\n",
		strings.Repeat("block\n\n", 50),
	}

	for _, input := range inputs {
		for _, budget := range []int{1, 4, 8, 64, 10000} {
			chunks := Split(input, budget)
			if got := strings.Join(chunks, ""); got != input {
				t.Errorf("Split(%q, %d) round-trip = %q", input, budget, got)
			}
		}
	}
}

func TestSplitRespectsBudget(t *testing.T) {
	input := "aaaa\n\nbbbb\n\ncccc\n\ndddd"
	budget := 12

	for i, chunk := range Split(input, budget) {
		if len(chunk) > budget {
			// Only a single oversized block may exceed the budget.
			if strings.Count(strings.TrimSuffix(chunk, "\n\n"), "\n\n") > 0 {
				t.Errorf("chunk %d exceeds budget and spans multiple blocks: %q", i, chunk)
			}
		}
	}
}

func TestSplitOversizedBlockEmittedAlone(t *testing.T) {
	big := strings.Repeat("x", 100)
	input := "small\n\n" + big + "\n\ntiny"

	chunks := Split(input, 20)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[1], big) {
		t.Errorf("oversized block should be its own chunk, got %q", chunks[1])
	}
}

func TestSplitBoundariesOnlyAtSeparators(t *testing.T) {
	input := "first block\n\nsecond block\n\nthird block"
	for _, chunk := range Split(input, 15) {
		trimmed := strings.TrimSuffix(chunk, "\n\n")
		if strings.HasPrefix(trimmed, "\n") {
			t.Errorf("chunk starts mid-separator: %q", chunk)
		}
	}
	// Every chunk except the last must end on a separator.
	chunks := Split(input, 15)
	for i := 0; i < len(chunks)-1; i++ {
		if !strings.HasSuffix(chunks[i], "\n\n") {
			t.Errorf("chunk %d does not end at a block separator: %q", i, chunks[i])
		}
	}
}

func TestSplitCountMonotonicity(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "block number %d with some text\n\n", i)
	}
	input := sb.String()

	prev := 0
	for _, budget := range []int{10000, 1000, 100, 10, 1} {
		n := len(Split(input, budget))
		if n < prev {
			t.Errorf("budget %d produced %d chunks, fewer than %d at a larger budget", budget, n, prev)
		}
		prev = n
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if chunks := Split("", 100); chunks != nil {
		t.Errorf("Split(\"\") = %v, want nil", chunks)
	}
}

func TestSplitSingleChunkWhenUnderBudget(t *testing.T) {
	input := "2024-01-01 10:00:00 UTC | Headline A\n\n2024-01-01 09:00:00 UTC | Headline B\n\n"
	chunks := Split(input, 1<<20)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != input {
		t.Errorf("single chunk should equal the full input")
	}
}
