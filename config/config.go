// Package config holds the runtime configuration for the document searcher:
// provider credentials, model identifiers, and the fixed retrieval pipeline
// constants (chunk size, context size, retry budget).
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// SystemMessage grounds every answer in the retrieved context.
const SystemMessage = "You are a helpful assistant and answer the questions, based on the provided context."

// RetryNotices are emitted, one at random, before each retried remote call.
var RetryNotices = []string{
	"My apologies. I was not concentrating. Let me retry your request...",
	"Thank you for your patience. Today I'm not performing as well as I should. Let's try again...",
	"It seems that I am struggling more than I should. Let's see if I can better understand your case...",
	"Uhm... That's weird... I thought I gave you an answer... Let's try again...",
}

type ProviderConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type Config struct {
	Embeddings ProviderConfig `yaml:"embeddings"`
	Completion ProviderConfig `yaml:"completion"`

	// Dimension is the expected embedding vector length. Zero disables the
	// check until the first vector arrives.
	Dimension int `yaml:"dimension"`

	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
	ContextSize  int     `yaml:"context_size"`
	Retries      int     `yaml:"retries"`
	Temperature  float32 `yaml:"temperature"`
	Metric       string  `yaml:"metric"`

	TimeoutSecs int    `yaml:"timeout_secs"`
	StorageDir  string `yaml:"storage_dir"`

	OpenAIBaseURL string `yaml:"openai_base_url"`

	// Secrets come from the environment, never from the config file.
	OpenAIAPIKey string `yaml:"-"`
	PostgresDSN  string `yaml:"-"`
	OllamaHost   string `yaml:"-"`
}

// Load reads the yaml config at path, falling back to defaults when the file
// does not exist, and overlays secrets from the environment.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(&cfg)

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	cfg.OllamaHost = getEnv("OLLAMA_HOST", "http://localhost:11434")

	return cfg, nil
}

// Validate reports configuration problems that must abort startup.
func (c Config) Validate() error {
	if c.Embeddings.Provider == ProviderOpenAI && c.OpenAIAPIKey == "" {
		return fmt.Errorf("openai embeddings provider selected but OPENAI_API_KEY not set")
	}
	if c.Completion.Provider == ProviderOpenAI && c.OpenAIAPIKey == "" {
		return fmt.Errorf("openai completion provider selected but OPENAI_API_KEY not set")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap %d must be smaller than chunk_size %d", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Embeddings:   ProviderConfig{Provider: ProviderOpenAI, Model: "text-embedding-ada-002"},
		Completion:   ProviderConfig{Provider: ProviderOpenAI, Model: "gpt-3.5-turbo"},
		ChunkSize:    1500,
		ChunkOverlap: 150,
		ContextSize:  5,
		Retries:      3,
		Temperature:  0,
		Metric:       "cosine",
		TimeoutSecs:  60,
		StorageDir:   "./collections",
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = def.Embeddings.Provider
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = def.Embeddings.Model
	}
	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = def.Completion.Provider
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = def.Completion.Model
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ContextSize <= 0 {
		cfg.ContextSize = def.ContextSize
	}
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.Metric == "" {
		cfg.Metric = def.Metric
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = def.TimeoutSecs
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = def.StorageDir
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
