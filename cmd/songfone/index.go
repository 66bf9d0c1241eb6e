package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakob/songfone/internal/util"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Update the song catalogue from the audio directories",
	Long: `Walk every configured audio directory and bring the catalogue up to
date. Files whose size and modification time are unchanged since the last
run are skipped without being read, so re-indexing a large library is
cheap.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
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

	start := time.Now()
	result, err := newIndexer(cfg, store, logger).ScanAll(ctx, cfg.Audio)
	if err != nil {
		return err
	}

	util.SuccessLog("Catalogue update complete in %v: %d files, %d indexed, %d unchanged, %d dropped",
		time.Since(start).Round(time.Millisecond),
		result.Found, result.Indexed, result.Skipped, result.Removed)
	if len(result.Errors) > 0 {
		util.WarnLog("%d files could not be read and remain unindexed", len(result.Errors))
	}
	return nil
}
