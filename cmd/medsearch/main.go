// Command medsearch is a local clinical-literature search tool with
// hybrid retrieval and optional LLM-generated answers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/aletheia-labs/medsearch-cli/internal/adapters/driven/embedding/ollama"
	"github.com/aletheia-labs/medsearch-cli/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/aletheia-labs/medsearch-cli/internal/adapters/driven/llm/ollama"
	"github.com/aletheia-labs/medsearch-cli/internal/adapters/driven/storage/sqlite"
	"github.com/aletheia-labs/medsearch-cli/internal/adapters/driving/cli"
	"github.com/aletheia-labs/medsearch-cli/internal/chunker"
	"github.com/aletheia-labs/medsearch-cli/internal/config"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
	"github.com/aletheia-labs/medsearch-cli/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for provider keys; absence is fine.
	_ = godotenv.Load()

	cfgDir, err := config.Dir(os.Getenv("MEDSEARCH_CONFIG_DIR"))
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return err
	}

	dataDir := cfg.DataDir
	if override := cli.DataDirFlag(os.Args[1:]); override != "" {
		dataDir = override
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer store.Close()

	embedding, err := newEmbeddingService(cfg)
	if err != nil {
		return err
	}
	defer embedding.Close()

	var llm driven.LLMService
	if cfg.LLM.Enabled {
		llm = ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		defer llm.Close()
	}

	ch := chunker.New(chunker.Config{
		TargetChars:   cfg.Chunking.TargetChars,
		OverlapChars:  cfg.Chunking.OverlapChars,
		MaxChunkChars: cfg.Chunking.MaxChunkChars,
		MinChunkChars: cfg.Chunking.MinChunkChars,
	})

	retrieval := services.NewRetrievalService(store, embedding, services.RetrievalConfig{
		VectorWeight:        cfg.Retrieval.VectorWeight,
		LexicalWeight:       cfg.Retrieval.LexicalWeight,
		CandidateMultiplier: cfg.Retrieval.CandidateMultiplier,
		DefaultTopK:         cfg.Retrieval.TopK,
	})
	library := services.NewLibraryService(store, embedding, ch, retrieval)
	answer := services.NewAnswerService(retrieval, llm, cfg.Retrieval.TopK)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Library:   library,
		Retrieval: retrieval,
		Answer:    answer,
		Embedding: embedding,
		LLM:       llm,
		Config:    cfg,
	})

	return cli.Execute(context.Background())
}

func newEmbeddingService(cfg config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
