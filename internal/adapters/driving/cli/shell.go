package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aletheia-labs/medsearch-cli/internal/adapters/driving/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive search and question session",
	Long: `Starts an interactive session. Type a question to get a cited
answer, or prefix with /s to search directly.

Controls:
  Enter    - Submit
  Esc, q   - Quit`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("the shell needs an interactive terminal")
	}

	model := shell.New(cmd.Context(), shell.Ports{
		Retrieval: retrievalService,
		Answer:    answerService,
	})

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("shell error: %w", err)
	}
	return nil
}
