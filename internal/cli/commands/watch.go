package commands

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/cli/config"
	"github.com/relforge/relforge/internal/design"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [design-file]",
		Short: "Revalidate the design document whenever it changes",
		Long: `Watch monitors the design document and re-runs compilation and expression
validation on every change. Failures are reported but do not stop the
watch; interrupt to exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())
			path := designPath(cfg, args)

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()

			// Watch the directory, not the file: editors replace files on
			// save, which drops a file-level watch.
			dir := filepath.Dir(path)
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}

			revalidate := func() {
				doc, err := design.Load(path)
				if err != nil {
					logger.Error("design load failed", "path", path, "error", err)
					return
				}
				results, err := validateDocument(logger, doc, false)
				if err != nil {
					logger.Error("validation failed", "path", path, "error", err)
					return
				}
				failures := reportResults(cmd.OutOrStdout(), results)
				if failures > 0 {
					logger.Warn("expressions failing", "failed", failures, "total", len(results))
				} else {
					logger.Info("design valid", "expressions", len(results))
				}
			}

			logger.Info("watching design document", "path", path)
			revalidate()

			target := filepath.Clean(path)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != target {
						continue
					}
					if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
						logger.Debug("design changed", "op", event.Op.String())
						revalidate()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Error("watch error", "error", err)
				}
			}
		},
	}
	return cmd
}
