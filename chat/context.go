package chat

import (
	"strings"

	"github.com/jvbleek/docsearch/store"
)

// ContextDelimiter separates chunk texts inside the assembled context.
const ContextDelimiter = "\n\n###\n\n"

// RetrievedContext is the assembled top-K context for one question. Sources
// aligns positionally with Chunks, most relevant first.
type RetrievedContext struct {
	Text    string
	Chunks  []string
	Sources []SourceRef
}

// BuildContext joins ranked chunk texts in rank order. No truncation happens
// here; the ranker's k cap bounds the context, and keeping k times the chunk
// size inside the completion model's input limit is an operating constraint
// of the configuration.
func BuildContext(matches []store.Match) RetrievedContext {
	chunks := make([]string, 0, len(matches))
	sources := make([]SourceRef, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, m.Record.Text)
		sources = append(sources, SourceRef{Source: m.Record.Source, PageNumber: m.Record.PageNumber})
	}
	return RetrievedContext{
		Text:    strings.Join(chunks, ContextDelimiter),
		Chunks:  chunks,
		Sources: sources,
	}
}
