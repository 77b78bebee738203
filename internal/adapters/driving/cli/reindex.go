package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the lexical search index",
	Long: `Rebuilds the in-memory keyword index from the stored chunks. Useful
after restoring a library database or when the index looks stale.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	if err := retrievalService.Initialize(cmd.Context()); err != nil {
		return err
	}
	cmd.Println(okStyle.Render("Index rebuilt."))
	return nil
}
