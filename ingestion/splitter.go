package ingestion

import (
	"strings"
)

const (
	defaultChunkSize    = 1500
	defaultChunkOverlap = 150
)

// defaultSeparators are tried in order: paragraph boundaries first, then
// single line breaks.
var defaultSeparators = []string{"\n\n", "\n"}

// Splitter cuts page text into chunks of at most chunkSize characters, with
// consecutive chunks sharing roughly overlap characters. Splitting is
// deterministic and never drops content: a single unit longer than chunkSize
// that no separator can break is emitted whole.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = defaultChunkOverlap
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split returns the ordered chunks of pageText. Empty or whitespace-only
// input yields no chunks.
func (s *Splitter) Split(pageText string) []string {
	text := strings.ReplaceAll(pageText, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.merge(splitUnits(text, s.separators, s.chunkSize))
}

// splitUnits breaks text into units no longer than limit where the separator
// set allows it. Units that none of the remaining separators can shorten stay
// intact regardless of length.
func splitUnits(text string, separators []string, limit int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= limit || len(separators) == 0 {
		return []string{trimmed}
	}

	parts := strings.Split(trimmed, separators[0])
	units := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(part) > limit {
			units = append(units, splitUnits(part, separators[1:], limit)...)
		} else {
			units = append(units, part)
		}
	}
	return units
}

// merge joins units greedily up to chunkSize, carrying trailing units of up
// to overlap characters into the next chunk. Every emitted chunk contains at
// least one unit that is not carried overlap.
func (s *Splitter) merge(units []string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	for _, unit := range units {
		if currentLen > 0 && currentLen+1+len(unit) > s.chunkSize {
			chunks = append(chunks, strings.Join(current, "\n"))

			current = overlapTail(current, s.overlap)
			currentLen = joinedLen(current)
			if currentLen > 0 && currentLen+1+len(unit) > s.chunkSize {
				current = nil
				currentLen = 0
			}
		}

		if currentLen > 0 {
			currentLen++
		}
		current = append(current, unit)
		currentLen += len(unit)
	}

	if currentLen > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}

// overlapTail returns the longest suffix of units whose joined length does
// not exceed overlap.
func overlapTail(units []string, overlap int) []string {
	if overlap <= 0 {
		return nil
	}
	total := 0
	i := len(units)
	for i > 0 {
		add := len(units[i-1])
		if total > 0 {
			add++
		}
		if total+add > overlap {
			break
		}
		total += add
		i--
	}
	if i == len(units) {
		return nil
	}
	return append([]string(nil), units[i:]...)
}

func joinedLen(units []string) int {
	if len(units) == 0 {
		return 0
	}
	total := len(units) - 1
	for _, u := range units {
		total += len(u)
	}
	return total
}
