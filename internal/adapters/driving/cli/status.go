package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

// pingTimeout bounds the provider reachability checks.
const pingTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library and provider status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	stats, err := libraryService.Stats(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println(titleStyle.Render("Library"))
	cmd.Printf("  articles: %d\n", stats.Articles)
	cmd.Printf("  chunks:   %d\n", stats.Chunks)

	indexState := warnStyle.Render("cold (built on first search)")
	if retrievalService != nil && retrievalService.Ready() {
		indexState = okStyle.Render("ready")
	}
	cmd.Printf("  index:    %s\n", indexState)
	cmd.Println()

	cmd.Println(titleStyle.Render("Providers"))
	printProviderStatus(cmd, "embedding", embeddingModelName(), pingEmbedding)
	if llmService == nil {
		cmd.Printf("  llm:       %s\n", metaStyle.Render("disabled"))
	} else {
		printProviderStatus(cmd, "llm", llmService.ModelName(), pingLLM)
	}
	return nil
}

func embeddingModelName() string {
	if embeddingService == nil {
		return ""
	}
	return embeddingService.ModelName()
}

func pingEmbedding(ctx context.Context) error {
	if embeddingService == nil {
		return errors.New("not configured")
	}
	return embeddingService.Ping(ctx)
}

func pingLLM(ctx context.Context) error {
	return llmService.Ping(ctx)
}

func printProviderStatus(cmd *cobra.Command, name, model string, ping func(context.Context) error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
	defer cancel()

	state := okStyle.Render("reachable")
	if err := ping(ctx); err != nil {
		state = errStyle.Render("unreachable") + metaStyle.Render(" ("+err.Error()+")")
	}

	label := name + ":"
	for len(label) < 10 {
		label += " "
	}
	if model != "" {
		cmd.Printf("  %s%s %s\n", label, model, state)
	} else {
		cmd.Printf("  %s%s\n", label, state)
	}
}
