// Package store implements the flat vector table backing retrieval: embedded
// chunks with their provenance, exact blob serialization, and the exhaustive
// similarity ranker.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Record is one embedded chunk. Records are immutable once appended; there is
// no uniqueness constraint, so re-ingesting a document appends duplicates.
type Record struct {
	ID         string
	Text       string
	Source     string
	PageNumber int
	ChunkIndex int
	Embedding  []float32
}

// Store is an append-only in-memory table of records sharing one embedding
// dimension. A store is single-writer during ingestion and read-only
// afterwards, so it carries no locking.
type Store struct {
	dimension int
	records   []Record
}

func New() *Store { return &Store{} }

// Append adds a record. The first record fixes the store's dimension; any
// later mismatch is an invariant violation.
func (s *Store) Append(rec Record) error {
	if rec.Text == "" {
		return fmt.Errorf("record text is empty")
	}
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("record embedding is empty")
	}
	if s.dimension == 0 {
		s.dimension = len(rec.Embedding)
	} else if len(rec.Embedding) != s.dimension {
		return fmt.Errorf("%w: store dimension %d, record dimension %d", ErrDimensionMismatch, s.dimension, len(rec.Embedding))
	}
	s.records = append(s.records, rec)
	return nil
}

// All returns the records in insertion order. The slice is shared; callers
// must not mutate it.
func (s *Store) All() []Record { return s.records }

func (s *Store) Len() int { return len(s.records) }

// Dimension returns the embedding length shared by all records, or zero for
// an empty store.
func (s *Store) Dimension() int { return s.dimension }

// Sources returns the unique source names in first-appearance order.
func (s *Store) Sources() []string {
	seen := make(map[string]struct{}, len(s.records))
	sources := make([]string, 0)
	for _, rec := range s.records {
		if _, ok := seen[rec.Source]; ok {
			continue
		}
		seen[rec.Source] = struct{}{}
		sources = append(sources, rec.Source)
	}
	return sources
}

// Concat rebuilds a collection store from per-document sub-stores. The
// result is a fresh store; inputs are not modified.
func Concat(stores ...*Store) (*Store, error) {
	merged := New()
	for _, s := range stores {
		if s == nil {
			continue
		}
		for _, rec := range s.records {
			if err := merged.Append(rec); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}

// blob is the serialized form. Gob keeps float32 values bit-exact.
type blob struct {
	Dimension int
	Records   []Record
}

// Encode serializes the store to an opaque blob suitable for the storage
// collaborator. Vector values survive the round trip exactly.
func (s *Store) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blob{Dimension: s.dimension, Records: s.records}); err != nil {
		return nil, fmt.Errorf("encode store: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode rebuilds a store from an Encode blob.
func Decode(data []byte) (*Store, error) {
	var b blob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	for _, rec := range b.Records {
		if len(rec.Embedding) != b.Dimension {
			return nil, fmt.Errorf("%w: store dimension %d, record dimension %d", ErrDimensionMismatch, b.Dimension, len(rec.Embedding))
		}
	}
	return &Store{dimension: b.Dimension, records: b.Records}, nil
}
