package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aletheia-labs/medsearch-cli/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest new articles automatically",
	Long: `Watches a directory and ingests supported files as they appear or
change. With no argument the configured ingest_dir is used. Runs until
interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	dir := appConfig.IngestDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no directory given and ingest_dir is not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (ctrl-c to stop)\n", titleStyle.Render(dir))

	watcher := ingest.NewWatcher(dir, func(ctx context.Context, path string) error {
		article, err := libraryService.IngestFile(ctx, path)
		if err != nil {
			cmd.Printf("%s %s: %v\n", errStyle.Render("failed"), path, err)
			return err
		}
		cmd.Printf("%s %s\n", okStyle.Render("Ingested"), article.Title)
		return nil
	})

	err := watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
