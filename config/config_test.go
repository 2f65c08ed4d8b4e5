package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ChunkSize != 1500 || cfg.ChunkOverlap != 150 {
		t.Fatalf("unexpected chunking defaults: %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.ContextSize != 5 || cfg.Retries != 3 {
		t.Fatalf("unexpected retrieval defaults: context %d, retries %d", cfg.ContextSize, cfg.Retries)
	}
	if cfg.Temperature != 0 {
		t.Fatalf("temperature should default to 0, got %v", cfg.Temperature)
	}
	if cfg.Embeddings.Model != "text-embedding-ada-002" || cfg.Completion.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model defaults: %s / %s", cfg.Embeddings.Model, cfg.Completion.Model)
	}
	if cfg.Metric != "cosine" {
		t.Fatalf("metric should default to cosine, got %q", cfg.Metric)
	}
}

func TestLoadFileOverridesAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "chunk_size: 800\ncompletion:\n  provider: ollama\n  model: llama3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ChunkSize != 800 {
		t.Fatalf("file value ignored: chunk_size %d", cfg.ChunkSize)
	}
	if cfg.Completion.Provider != ProviderOllama || cfg.Completion.Model != "llama3" {
		t.Fatalf("completion override lost: %+v", cfg.Completion)
	}
	// Values absent from the file keep their defaults.
	if cfg.ChunkOverlap != 150 || cfg.ContextSize != 5 {
		t.Fatalf("defaults not filled in: %+v", cfg)
	}
	if cfg.Embeddings.Provider != ProviderOpenAI {
		t.Fatalf("embeddings provider should default to openai, got %q", cfg.Embeddings.Provider)
	}
}

func TestValidateRejectsMissingKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.OpenAIAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when openai is selected without an API key")
	}

	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	cfg := defaultConfig()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.ChunkSize = 100
	cfg.ChunkOverlap = 100
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when overlap equals chunk size")
	}
}
