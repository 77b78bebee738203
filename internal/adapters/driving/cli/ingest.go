package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest an article file or a directory of articles",
	Long: `Reads one file, or every supported file in a directory, into the
library. Text is chunked, embedded, and indexed for search.
Supported formats: .txt, .md, .markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if libraryService == nil {
		return errors.New("library service not configured")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		article, err := libraryService.IngestFile(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("%s %s\n", okStyle.Render("Ingested"), titleStyle.Render(article.Title))
		cmd.Println(metaStyle.Render("  id: " + article.ID))
		return nil
	}

	report, err := libraryService.IngestDirectory(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("%s %d ingested, %d skipped, %d failed\n",
		okStyle.Render("Done:"), report.Ingested, report.Skipped, len(report.Failed))

	if len(report.Failed) > 0 {
		paths := make([]string, 0, len(report.Failed))
		for p := range report.Failed {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			cmd.Printf("  %s %s: %v\n", errStyle.Render("failed"), p, report.Failed[p])
		}
	}
	return nil
}
