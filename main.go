package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jvbleek/docsearch/chat"
	"github.com/jvbleek/docsearch/config"
	"github.com/jvbleek/docsearch/embeddings"
	"github.com/jvbleek/docsearch/ingestion"
	"github.com/jvbleek/docsearch/llm"
	"github.com/jvbleek/docsearch/storage"
	"github.com/jvbleek/docsearch/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	switch os.Args[1] {
	case "ingest":
		ingestCmd(cfg, os.Args[2:])
	case "ask":
		askCmd(cfg, os.Args[2:])
	case "documents":
		documentsCmd(cfg, os.Args[2:])
	default:
		log.Error().Str("command", os.Args[1]).Msg("unknown command")
		printUsage()
		os.Exit(1)
	}
}

func ingestCmd(cfg config.Config, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	collection := flags.String("collection", "default", "collection to (re)build from the given files")
	if err := flags.Parse(args); err != nil {
		log.Fatal().Err(err).Msg("parse ingest flags")
	}
	paths := flags.Args()
	if len(paths) == 0 {
		log.Fatal().Msg("ingest requires at least one PDF or text file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	docs := make([]ingestion.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := ingestion.LoadDocument(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("load document")
		}
		docs = append(docs, doc)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("embedder setup")
	}

	splitter := ingestion.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	svc := ingestion.NewService(embedder, splitter, log.Logger, progressFunc())

	st, err := svc.Ingest(ctx, docs)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}
	if st.Len() == 0 {
		log.Fatal().Msg("no text could be extracted from the given files")
	}

	blob, err := st.Encode()
	if err != nil {
		log.Fatal().Err(err).Msg("encode store")
	}

	blobs, cleanup := newBlobStore(ctx, cfg)
	defer cleanup()

	if err := blobs.Put(ctx, *collection, blob); err != nil {
		log.Fatal().Err(err).Msg("persist collection")
	}

	log.Info().Str("collection", *collection).Int("records", st.Len()).Strs("sources", st.Sources()).Msg("collection ready")
}

func askCmd(cfg config.Config, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	collection := flags.String("collection", "default", "collection to search")
	question := flags.String("question", "", "question to answer from the ingested documents")
	if err := flags.Parse(args); err != nil {
		log.Fatal().Err(err).Msg("parse ask flags")
	}
	if strings.TrimSpace(*question) == "" && flags.NArg() > 0 {
		*question = strings.Join(flags.Args(), " ")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st := loadCollection(ctx, cfg, *collection)

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("embedder setup")
	}
	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("llm setup")
	}
	metric, err := store.ParseMetric(cfg.Metric)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	assistant := chat.NewAssistant(embedder, client, chat.Options{
		ContextSize:   cfg.ContextSize,
		Retries:       cfg.Retries,
		Metric:        metric,
		SystemMessage: config.SystemMessage,
	}, log.Logger, progressFunc())

	resp, err := assistant.Ask(ctx, *question, st)
	if err != nil {
		if errors.Is(err, store.ErrEmptyStore) {
			log.Fatal().Msg("no documents have been ingested yet; run `docsearch ingest` first")
		}
		if errors.Is(err, chat.ErrEmptyQuestion) {
			log.Fatal().Msg("please provide a question with -question")
		}
		log.Fatal().Err(err).Msg("question failed")
	}

	fmt.Println(resp.Answer)
	if len(resp.Context.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for idx, src := range resp.Context.Sources {
			fmt.Printf("%d. %s, page %d\n", idx+1, src.Source, src.PageNumber)
		}
	}
}

func documentsCmd(cfg config.Config, args []string) {
	flags := flag.NewFlagSet("documents", flag.ExitOnError)
	collection := flags.String("collection", "default", "collection to inspect")
	if err := flags.Parse(args); err != nil {
		log.Fatal().Err(err).Msg("parse documents flags")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st := loadCollection(ctx, cfg, *collection)
	for _, source := range st.Sources() {
		fmt.Println(source)
	}
}

func loadCollection(ctx context.Context, cfg config.Config, collection string) *store.Store {
	blobs, cleanup := newBlobStore(ctx, cfg)
	defer cleanup()

	blob, err := blobs.Get(ctx, collection)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Fatal().Str("collection", collection).Msg("no documents have been ingested yet; run `docsearch ingest` first")
		}
		log.Fatal().Err(err).Msg("load collection")
	}

	st, err := store.Decode(blob)
	if err != nil {
		log.Fatal().Err(err).Msg("decode collection")
	}
	return st
}

// newBlobStore picks Postgres when a DSN is configured, the local filesystem
// otherwise.
func newBlobStore(ctx context.Context, cfg config.Config) (storage.Blobs, func()) {
	if cfg.PostgresDSN != "" {
		pool, err := storage.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection")
		}
		pg := storage.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres schema")
		}
		return pg, pool.Close
	}

	fs, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		log.Fatal().Err(err).Msg("storage setup")
	}
	return fs, func() {}
}

func progressFunc() func(string) {
	return func(message string) {
		log.Info().Msg(message)
	}
}

func printUsage() {
	fmt.Println("Usage: docsearch <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  ingest     Chunk and embed PDF/text files into a collection (-collection, file paths as args)")
	fmt.Println("  ask        Answer a question from an ingested collection (-collection, -question)")
	fmt.Println("  documents  List the documents embedded in a collection (-collection)")
}
