package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested articles, newest first",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	articles, err := libraryService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		cmd.Println("The library is empty.")
		return nil
	}

	for _, a := range articles {
		line := titleStyle.Render(a.Title)
		if a.Year > 0 {
			line += metaStyle.Render(fmt.Sprintf(" (%d)", a.Year))
		}
		cmd.Println(line)
		if a.Authors != "" {
			cmd.Printf("  %s\n", metaStyle.Render(a.Authors))
		}
		cmd.Printf("  %s\n", metaStyle.Render("id: "+a.ID))
	}
	return nil
}
