package store

import (
	"errors"
	"testing"
)

func record(text, source string, page int, embedding []float32) Record {
	return Record{Text: text, Source: source, PageNumber: page, Embedding: embedding}
}

func TestAppendFixesDimension(t *testing.T) {
	s := New()

	if err := s.Append(record("a", "doc1", 1, []float32{1, 0, 0})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dimension() != 3 {
		t.Fatalf("expected dimension 3, got %d", s.Dimension())
	}

	err := s.Append(record("b", "doc1", 1, []float32{1, 0}))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("mismatched record must not be stored, len=%d", s.Len())
	}
}

func TestAppendAllowsDuplicates(t *testing.T) {
	s := New()

	rec := record("same text", "doc1", 2, []float32{0.5, 0.5})
	if err := s.Append(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Append(rec); err != nil {
		t.Fatalf("duplicate append should succeed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Len())
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := New()
	records := []Record{
		{ID: "r1", Text: "alpha", Source: "doc1", PageNumber: 1, ChunkIndex: 0, Embedding: []float32{0.1234567, -0.7654321, 3.0000001e-7}},
		{ID: "r2", Text: "beta", Source: "doc2", PageNumber: 4, ChunkIndex: 1, Embedding: []float32{1, 0, -1}},
	}
	for _, rec := range records {
		if err := s.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	blob, err := s.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Dimension() != s.Dimension() {
		t.Fatalf("dimension changed: %d vs %d", decoded.Dimension(), s.Dimension())
	}
	if decoded.Len() != s.Len() {
		t.Fatalf("record count changed: %d vs %d", decoded.Len(), s.Len())
	}
	for i, rec := range decoded.All() {
		want := records[i]
		if rec.ID != want.ID || rec.Text != want.Text || rec.Source != want.Source ||
			rec.PageNumber != want.PageNumber || rec.ChunkIndex != want.ChunkIndex {
			t.Fatalf("record %d metadata changed: %+v", i, rec)
		}
		for j, v := range rec.Embedding {
			if v != want.Embedding[j] {
				t.Fatalf("record %d embedding[%d] not exact: %v vs %v", i, j, v, want.Embedding[j])
			}
		}
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a store blob")); err == nil {
		t.Fatal("expected error for garbage blob")
	}
}

func TestConcatPreservesOrder(t *testing.T) {
	a := New()
	if err := a.Append(record("first", "doc1", 1, []float32{1, 0})); err != nil {
		t.Fatalf("append: %v", err)
	}
	b := New()
	if err := b.Append(record("second", "doc2", 1, []float32{0, 1})); err != nil {
		t.Fatalf("append: %v", err)
	}

	merged, err := Concat(a, nil, b)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	if merged.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", merged.Len())
	}
	if merged.All()[0].Text != "first" || merged.All()[1].Text != "second" {
		t.Fatal("concat changed record order")
	}
}

func TestConcatDimensionMismatch(t *testing.T) {
	a := New()
	if err := a.Append(record("first", "doc1", 1, []float32{1, 0})); err != nil {
		t.Fatalf("append: %v", err)
	}
	b := New()
	if err := b.Append(record("second", "doc2", 1, []float32{0, 1, 0})); err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, err := Concat(a, b); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSourcesUniqueInOrder(t *testing.T) {
	s := New()
	for _, rec := range []Record{
		record("a", "report.pdf", 1, []float32{1}),
		record("b", "notes.pdf", 1, []float32{2}),
		record("c", "report.pdf", 2, []float32{3}),
	} {
		if err := s.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	sources := s.Sources()
	if len(sources) != 2 || sources[0] != "report.pdf" || sources[1] != "notes.pdf" {
		t.Fatalf("unexpected sources: %v", sources)
	}
}
