// Package chat answers questions against an ingested vector store: it embeds
// the question, ranks the stored chunks, assembles the context, and drives
// the completion calls with the retry policy.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jvbleek/docsearch/config"
	"github.com/jvbleek/docsearch/embeddings"
	"github.com/jvbleek/docsearch/llm"
	"github.com/jvbleek/docsearch/store"
)

// ErrEmptyQuestion is returned before any remote call is made.
var ErrEmptyQuestion = errors.New("question is empty")

const defaultContextSize = 5

// Options fixes the assistant's behavior at construction time; there is no
// mutable shared client state.
type Options struct {
	ContextSize   int
	Retries       int
	Metric        store.Metric
	SystemMessage string
}

type Assistant struct {
	embedder embeddings.Embedder
	llm      llm.Client
	opts     Options
	logger   zerolog.Logger
	progress func(string)
}

func NewAssistant(embedder embeddings.Embedder, client llm.Client, opts Options, logger zerolog.Logger, progress func(string)) *Assistant {
	if opts.ContextSize <= 0 {
		opts.ContextSize = defaultContextSize
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Metric == "" {
		opts.Metric = store.Cosine
	}
	if opts.SystemMessage == "" {
		opts.SystemMessage = config.SystemMessage
	}
	if progress == nil {
		progress = func(string) {}
	}
	return &Assistant{
		embedder: embedder,
		llm:      client,
		opts:     opts,
		logger:   logger,
		progress: progress,
	}
}

// Ask runs the full question flow: validate, embed, rank, assemble context,
// detect the question's language, and request the completion. Retryable
// remote failures are retried up to the configured budget with a notice per
// attempt; non-retryable ones fail at once.
func (a *Assistant) Ask(ctx context.Context, question string, st *store.Store) (Response, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Response{}, ErrEmptyQuestion
	}
	if a.embedder == nil {
		return Response{}, fmt.Errorf("embedder is not configured")
	}
	if a.llm == nil {
		return Response{}, fmt.Errorf("llm client is not configured")
	}
	if st == nil || st.Len() == 0 {
		return Response{}, store.ErrEmptyStore
	}

	a.progress("Creating context for question")
	var queryVector []float32
	err := llm.WithRetries(ctx, a.opts.Retries, a.progress, func() error {
		vector, embedErr := a.embedder.Embed(ctx, question)
		if embedErr != nil {
			return embedErr
		}
		queryVector = vector
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("embed question: %w", err)
	}

	matches, err := store.Rank(queryVector, st, a.opts.ContextSize, a.opts.Metric)
	if err != nil {
		return Response{}, err
	}
	retrieved := BuildContext(matches)

	a.progress("Setting up question...")
	language, err := a.detectLanguage(ctx, question)
	if err != nil {
		return Response{}, err
	}

	// The system turn goes after the user turn; answers track the context
	// better that way.
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: questionWithContext(question, retrieved.Text)},
		{Role: llm.RoleSystem, Content: a.opts.SystemMessage + " " + language},
	}

	a.progress("Prompt is sent to the model, waiting for response...")
	var answer string
	err = llm.WithRetries(ctx, a.opts.Retries, a.progress, func() error {
		generated, genErr := a.llm.Generate(ctx, messages)
		if genErr != nil {
			return genErr
		}
		answer = generated
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	a.progress("Answer received, saving results...")

	a.logger.Debug().Int("context_chunks", len(retrieved.Chunks)).Msg("question answered")
	return Response{Answer: strings.TrimSpace(answer), Context: retrieved}, nil
}

// detectLanguage asks the model for the question's language as an
// instruction ("Answer in Dutch"), so the final answer matches the question.
func (a *Assistant) detectLanguage(ctx context.Context, question string) (string, error) {
	messages := []llm.Message{{
		Role: llm.RoleUser,
		Content: fmt.Sprintf("What language is the following text? Answer in a single word "+
			"%s. Provide your answer as an instruction, "+
			"such as: 'Answer in Dutch', 'Answer in English'", question),
	}}

	var language string
	err := llm.WithRetries(ctx, a.opts.Retries, a.progress, func() error {
		generated, genErr := a.llm.Generate(ctx, messages)
		if genErr != nil {
			return genErr
		}
		language = strings.TrimSpace(generated)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("detect question language: %w", err)
	}
	return language, nil
}

func questionWithContext(question, context string) string {
	return fmt.Sprintf("Question: %s\n"+
		"Answer the question based on the context below. When you don't know the answer, "+
		"say \"I don't know the answer, based on the provided context.\"\n"+
		"Context: %s\n", question, context)
}
