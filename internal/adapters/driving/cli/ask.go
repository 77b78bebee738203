package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question answered from the library",
	Long: `Retrieves the most relevant passages for the question and asks the
configured LLM to answer from them, citing the source articles.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Ask(cmd.Context(), question)
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return errors.New("answer generation is disabled; enable the llm section in config.toml")
	}
	if errors.Is(err, domain.ErrEmptyLibrary) {
		return errors.New("the library is empty; ingest some articles first")
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println(titleStyle.Render("Sources:"))
		for _, c := range answer.Citations {
			line := "  " + c.Title
			if c.Year > 0 {
				line += fmt.Sprintf(" (%d)", c.Year)
			}
			if c.Authors != "" {
				line += metaStyle.Render(" - " + c.Authors)
			}
			cmd.Println(line)
		}
	}

	cmd.Println()
	cmd.Println(metaStyle.Render(fmt.Sprintf("retrieval %s, generation %s",
		answer.RetrievalTime.Round(time.Millisecond),
		answer.GenerationTime.Round(time.Millisecond))))
	return nil
}
