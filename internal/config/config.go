// Package config loads and persists medsearch configuration from a
// TOML file in the user's config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file name inside the medsearch
// directory.
const DefaultFileName = "config.toml"

// Config is the full medsearch configuration.
type Config struct {
	// DataDir is where the library database lives.
	// Empty means ~/.medsearch/data.
	DataDir string `toml:"data_dir"`

	// IngestDir is the directory watched by `medsearch watch`.
	IngestDir string `toml:"ingest_dir"`

	Embedding Embedding `toml:"embedding"`
	LLM       LLM       `toml:"llm"`
	Retrieval Retrieval `toml:"retrieval"`
	Chunking  Chunking  `toml:"chunking"`
}

// Embedding selects and configures the embedding provider.
type Embedding struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider endpoint (ollama only).
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions is the embedding vector size.
	Dimensions int `toml:"dimensions"`
}

// LLM configures the optional answer-generation model.
type LLM struct {
	// Enabled turns answer generation on.
	Enabled bool `toml:"enabled"`

	// BaseURL overrides the Ollama endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the generation model name.
	Model string `toml:"model"`
}

// Retrieval holds the hybrid fusion parameters.
type Retrieval struct {
	VectorWeight        float64 `toml:"vector_weight"`
	LexicalWeight       float64 `toml:"lexical_weight"`
	CandidateMultiplier int     `toml:"candidate_multiplier"`
	TopK                int     `toml:"top_k"`
}

// Chunking holds the text chunking parameters.
type Chunking struct {
	TargetChars   int `toml:"target_chars"`
	OverlapChars  int `toml:"overlap_chars"`
	MaxChunkChars int `toml:"max_chunk_chars"`
	MinChunkChars int `toml:"min_chunk_chars"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Embedding: Embedding{
			Provider: "ollama",
			Model:    "nomic-embed-text",
		},
		LLM: LLM{
			Enabled: true,
			Model:   "llama3.2:1b",
		},
		Retrieval: Retrieval{
			VectorWeight:        0.7,
			LexicalWeight:       0.3,
			CandidateMultiplier: 2,
			TopK:                5,
		},
		Chunking: Chunking{
			TargetChars:   1200,
			OverlapChars:  120,
			MaxChunkChars: 6000,
			MinChunkChars: 50,
		},
	}
}

// Dir returns the medsearch config directory, creating it if needed.
// If override is non-empty it is used as-is.
func Dir(override string) (string, error) {
	dir := override
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".medsearch")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Load reads the config file from dir, returning defaults when the
// file does not exist. Fields absent from the file keep their
// defaults.
func Load(dir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, DefaultFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to dir with restricted permissions.
func Save(dir string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
