package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the article library",
	Long: `Performs hybrid search across all ingested articles.
Combines keyword (BM25) and semantic (vector) signals into one ranking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	results, elapsed, err := retrievalService.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	outputSearchResults(cmd, results)
	cmd.Println(metaStyle.Render(fmt.Sprintf("%d results in %s", len(results), elapsed.Round(time.Millisecond))))
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.FusedResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchResults(cmd *cobra.Command, results []domain.FusedResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		title := r.Chunk.Title
		if title == "" {
			title = r.Chunk.ArticleID
		}

		header := fmt.Sprintf("  [%d] %s", i+1, titleStyle.Render(title))
		if r.Chunk.Year > 0 {
			header += metaStyle.Render(fmt.Sprintf(" (%d)", r.Chunk.Year))
		}
		header += scoreStyle.Render(fmt.Sprintf("  %.3f", r.FusedScore))
		cmd.Println(header)

		if r.Chunk.Authors != "" {
			cmd.Printf("      %s\n", metaStyle.Render(r.Chunk.Authors))
		}
		cmd.Printf("      %s\n", snippet(r.Chunk.Content, 200))
		cmd.Println()
	}
}

// snippet flattens whitespace and truncates at a word boundary.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return text[:cut] + "..."
}
