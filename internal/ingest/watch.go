package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aletheia-labs/medsearch-cli/internal/logger"
)

// settleDelay is how long a file must be quiet before it is ingested.
// Editors and downloads often produce bursts of write events.
const settleDelay = 500 * time.Millisecond

// IngestFunc ingests a single file.
type IngestFunc func(ctx context.Context, path string) error

// Watcher ingests supported files as they appear in a directory.
type Watcher struct {
	dir    string
	ingest IngestFunc
}

// NewWatcher creates a directory watcher that calls ingest for each
// new or modified supported file.
func NewWatcher(dir string, ingest IngestFunc) *Watcher {
	return &Watcher{dir: dir, ingest: ingest}
}

// Run watches until the context is cancelled. Write and create events
// are debounced per path so a file is ingested once it stops changing.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	logger.Info("Watching %s for new articles", w.dir)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !Supported(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settleDelay {
					continue
				}
				delete(pending, path)
				if err := w.ingest(ctx, path); err != nil {
					logger.Warn("Watched ingest %s failed: %v", path, err)
				}
			}
		}
	}
}
