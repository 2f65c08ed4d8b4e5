package ingestion

import (
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	s := NewSplitter(1500, 150)

	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		if chunks := s.Split(input); len(chunks) != 0 {
			t.Fatalf("expected no chunks for %q, got %d", input, len(chunks))
		}
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(1500, 150)

	chunks := s.Split("just a short paragraph")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "just a short paragraph" {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitRespectsSizeBound(t *testing.T) {
	s := NewSplitter(100, 20)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("paragraph number with some words\n\n")
	}

	chunks := s.Split(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Fatalf("chunk %d exceeds size bound: %d chars", i, len(chunk))
		}
	}
}

func TestSplitOversizedUnitKeptWhole(t *testing.T) {
	s := NewSplitter(50, 10)

	oversized := strings.Repeat("x", 200) // no separator anywhere
	chunks := s.Split(oversized)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 oversized chunk, got %d", len(chunks))
	}
	if chunks[0] != oversized {
		t.Fatal("oversized unit was altered")
	}
}

func TestSplitCoverageNoContentDropped(t *testing.T) {
	s := NewSplitter(80, 16)

	units := []string{
		"the first paragraph of the page",
		"a second paragraph follows here",
		"and a third one closes the page",
		"plus a final trailing line",
	}
	text := strings.Join(units, "\n\n")

	chunks := s.Split(text)
	joined := strings.Join(chunks, "\n")

	// Every unit must appear, in order, across the chunk sequence.
	offset := 0
	for _, unit := range units {
		idx := strings.Index(joined[offset:], unit)
		if idx < 0 {
			t.Fatalf("unit %q missing from chunks (or out of order)", unit)
		}
		offset += idx + len(unit)
	}
}

func TestSplitOverlapBetweenChunks(t *testing.T) {
	s := NewSplitter(60, 30)

	text := "alpha beta gamma delta\n\nepsilon zeta eta theta\n\niota kappa lambda mu"
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	// The start of each later chunk repeats the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := strings.SplitN(chunks[i], "\n", 2)[0]
		if !strings.HasSuffix(chunks[i-1], head) {
			t.Fatalf("chunk %d does not start with the tail of chunk %d: %q vs %q", i, i-1, head, chunks[i-1])
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(90, 20)

	text := strings.Repeat("one line of content here\n", 30)
	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}
