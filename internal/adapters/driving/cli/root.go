// Package cli implements the medsearch command-line interface.
package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aletheia-labs/medsearch-cli/internal/config"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driven"
	"github.com/aletheia-labs/medsearch-cli/internal/core/ports/driving"
	"github.com/aletheia-labs/medsearch-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	libraryService   driving.LibraryService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	appConfig        config.Config
)

var (
	flagVerbose bool
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:   "medsearch",
	Short: "Search and question your clinical article library",
	Long: `Medsearch ingests clinical articles into a local library and
retrieves passages with hybrid search: keyword (BM25) fused with
semantic (vector) similarity. With a local LLM configured it also
answers questions grounded in the retrieved passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the library data directory")
}

// Services bundles everything the commands need.
type Services struct {
	Library   driving.LibraryService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Config    config.Config
}

// SetServices injects the application services into the command tree.
func SetServices(s Services) {
	libraryService = s.Library
	retrievalService = s.Retrieval
	answerService = s.Answer
	embeddingService = s.Embedding
	llmService = s.LLM
	appConfig = s.Config
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// DataDirFlag scans args for the --data-dir override, empty when
// unset. Main needs it before cobra parses anything, because the
// store is constructed ahead of Execute.
func DataDirFlag(args []string) string {
	for i, arg := range args {
		if arg == "--data-dir" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--data-dir="); ok {
			return v
		}
	}
	return ""
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
