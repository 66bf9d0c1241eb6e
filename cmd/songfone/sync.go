package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fulfill the want list, then update the catalogue",
	Long: `Run one full pass: reconcile the want list against the destination tree
(removing unwanted files, copying and converting wanted ones), then bring
the song catalogue up to date. If the want list changed while the pass ran,
it is reconciled again before returning.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	wantsChanged := mtimeOf(cfg.WantsFile())

	res, err := runReconcile(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	logPipelineResult(res)

	indexer := newIndexer(cfg, store, logger)
	if _, err := indexer.ScanAll(ctx, cfg.Audio); err != nil {
		return err
	}

	// the want list may have changed while indexing ran; catch up before
	// returning so a client editing it during a long scan is not left
	// waiting for the next run
	for last := wantsChanged; last.Before(mtimeOf(cfg.WantsFile())); {
		last = mtimeOf(cfg.WantsFile())
		res, err := runReconcile(ctx, cfg, store, logger)
		if err != nil {
			return err
		}
		logPipelineResult(res)
	}

	return nil
}

func mtimeOf(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
