package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jvbleek/docsearch/embeddings"
	"github.com/jvbleek/docsearch/store"
)

// Document is one uploaded file reduced to per-page text.
type Document struct {
	Name  string
	Pages []string
}

// ProgressFunc receives human-readable progress notices during ingestion.
type ProgressFunc func(message string)

type Service struct {
	embedder embeddings.Embedder
	splitter *Splitter
	logger   zerolog.Logger
	progress ProgressFunc
}

func NewService(embedder embeddings.Embedder, splitter *Splitter, logger zerolog.Logger, progress ProgressFunc) *Service {
	if splitter == nil {
		splitter = NewSplitter(defaultChunkSize, defaultChunkOverlap)
	}
	if progress == nil {
		progress = func(string) {}
	}
	return &Service{
		embedder: embedder,
		splitter: splitter,
		logger:   logger,
		progress: progress,
	}
}

// LoadDocument reads a file from disk into per-page text. PDFs keep their
// page structure; plain text files become a single page.
func LoadDocument(path string) (Document, error) {
	name := filepath.Base(path)
	switch DetectFormat(path) {
	case FormatPDF:
		pages, err := ExtractPages(path)
		if err != nil {
			return Document{}, fmt.Errorf("load %s: %w", name, err)
		}
		return Document{Name: name, Pages: pages}, nil
	case FormatText:
		data, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("load %s: %w", name, err)
		}
		return Document{Name: name, Pages: []string{string(data)}}, nil
	default:
		return Document{}, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// Ingest chunks and embeds every document sequentially and returns the
// rebuilt collection store. Any failure aborts the whole batch; no partial
// store is returned.
func (s *Service) Ingest(ctx context.Context, docs []Document) (*store.Store, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}

	substores := make([]*store.Store, 0, len(docs))
	for _, doc := range docs {
		st, err := s.IngestDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		substores = append(substores, st)
	}

	merged, err := store.Concat(substores...)
	if err != nil {
		return nil, fmt.Errorf("merge document stores: %w", err)
	}

	s.logger.Info().Int("records", merged.Len()).Int("documents", len(docs)).Msg("ingestion complete")
	return merged, nil
}

// IngestDocument builds the sub-store for a single document. Chunks are
// embedded one at a time, in page order, so record order follows the text.
func (s *Service) IngestDocument(ctx context.Context, doc Document) (*store.Store, error) {
	st := store.New()

	for pageIdx, pageText := range doc.Pages {
		pageNumber := pageIdx + 1
		s.progress(fmt.Sprintf("Reading page %d/%d from %s", pageNumber, len(doc.Pages), doc.Name))

		chunks := s.splitter.Split(pageText)
		if len(chunks) == 0 {
			continue
		}

		for chunkIdx, chunk := range chunks {
			vector, err := s.embedder.Embed(ctx, chunk)
			if err != nil {
				return nil, fmt.Errorf("embed page %d of %s: %w", pageNumber, doc.Name, err)
			}
			rec := store.Record{
				ID:         uuid.NewString(),
				Text:       chunk,
				Source:     doc.Name,
				PageNumber: pageNumber,
				ChunkIndex: chunkIdx,
				Embedding:  vector,
			}
			if err := st.Append(rec); err != nil {
				return nil, fmt.Errorf("store chunk %d of page %d of %s: %w", chunkIdx, pageNumber, doc.Name, err)
			}
		}
		s.progress(fmt.Sprintf("Embedding page %d/%d for %s", pageNumber, len(doc.Pages), doc.Name))
	}

	return st, nil
}
