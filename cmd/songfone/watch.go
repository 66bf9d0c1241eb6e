package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jakob/songfone/internal/util"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run continuously, reconciling whenever the want list changes",
	Long: `Perform one full sync, then keep running and re-reconcile the want list
every time it is modified. Stops on SIGINT or SIGTERM.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// debounceDelay coalesces the burst of filesystem events an editor or a
// syncing client produces while rewriting the want list
const debounceDelay = 500 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := newEventLogger(cfg)
	defer logger.Close()

	// initial full pass
	res, err := runReconcile(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	logPipelineResult(res)
	if _, err := newIndexer(cfg, store, logger).ScanAll(ctx, cfg.Audio); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// watch the directory, not the file: editors and sync clients replace
	// the want list atomically, which would orphan a file watch
	wantsFile := cfg.WantsFile()
	if err := watcher.Add(filepath.Dir(wantsFile)); err != nil {
		return err
	}

	util.InfoLog("Watching %s", wantsFile)

	var debounce *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			util.InfoLog("Shutting down")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(wantsFile) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.WarnLog("Watcher error: %v", err)

		case <-trigger:
			util.InfoLog("Want list changed, reconciling")
			res, err := runReconcile(ctx, cfg, store, logger)
			if err != nil {
				return err
			}
			logPipelineResult(res)
		}
	}
}
