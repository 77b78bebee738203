package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [article-id]",
	Short: "Delete an article and its chunks from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	err := libraryService.Delete(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no article with id %s", args[0])
	}
	if err != nil {
		return err
	}
	cmd.Println(okStyle.Render("Deleted."))
	return nil
}
