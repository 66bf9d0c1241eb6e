package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jakob/songfone/internal/catalog"
	"github.com/jakob/songfone/internal/config"
	"github.com/jakob/songfone/internal/convert"
	"github.com/jakob/songfone/internal/cover"
	"github.com/jakob/songfone/internal/index"
	"github.com/jakob/songfone/internal/report"
	"github.com/jakob/songfone/internal/util"
	"github.com/jakob/songfone/internal/wants"
)

// loadConfig builds and validates the configuration and makes sure the
// output tree exists. Both failures are fatal for any command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MakeOutput(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openCatalog(cfg *config.Config) (*catalog.Store, error) {
	store, err := catalog.Open(cfg.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue %s: %w", cfg.DatabaseFile(), err)
	}
	return store, nil
}

// newEventLogger opens the per-run JSONL event log below the output tree
func newEventLogger(cfg *config.Config) *report.EventLogger {
	level := report.LevelInfo
	if viper.GetBool("quiet") {
		level = report.LevelWarning
	} else if viper.GetBool("verbose") {
		level = report.LevelDebug
	}

	logger, err := report.NewEventLogger(filepath.Join(cfg.Output, ".songfone", "logs"), level)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	return logger
}

func newIndexer(cfg *config.Config, store *catalog.Store, logger *report.EventLogger) *index.Indexer {
	return index.New(&index.Config{
		Store:      store,
		Resolver:   cover.NewResolver(cfg.CoverMaxDimension, cfg.CoverCacheSize),
		Extensions: cfg.Extensions,
		Logger:     logger,
	})
}

// runReconcile loads the want descriptor, diffs it against the destination
// tree and applies the result
func runReconcile(ctx context.Context, cfg *config.Config, store *catalog.Store, logger *report.EventLogger) (*convert.Result, error) {
	roots := cfg.RootsByID()

	desired := wants.Load(cfg.WantsFile(), roots)

	haveEntries, err := util.ListFiles(cfg.Output, cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to list destination tree: %w", err)
	}
	havePaths := make([]string, len(haveEntries))
	for i, e := range haveEntries {
		havePaths[i] = e.RelPath
	}

	toRemove, toAdd := wants.Diff(desired, havePaths)
	util.InfoLog("Wants: %d desired, %d present, %d to remove, %d to add",
		len(desired), len(havePaths), len(toRemove), len(toAdd))

	pipeline := convert.New(&convert.Config{
		OutputDir:  cfg.Output,
		FFmpegBin:  cfg.FFmpegBin,
		MaxWorkers: cfg.MaxConversionThreads,
		Logger:     logger,
		TagsFor:    catalogueTags(store),
	})

	return pipeline.Apply(ctx, toRemove, toAdd)
}

// catalogueTags looks a want's source song up in the catalogue so its tags
// survive transcoding
func catalogueTags(store *catalog.Store) func(w wants.Want) map[string]string {
	return func(w wants.Want) map[string]string {
		song, err := store.GetSong(w.RootID, w.SrcRel)
		if err != nil || song == nil {
			return nil
		}
		tags, err := store.GetSongTags(song.ID)
		if err != nil {
			return nil
		}
		return tags
	}
}

func logPipelineResult(res *convert.Result) {
	if res == nil {
		return
	}
	if res.Failed > 0 {
		util.WarnLog("Sync: %d removed, %d copied, %d converted, %d failed",
			res.Removed, res.Copied, res.Converted, res.Failed)
	} else {
		util.SuccessLog("Sync: %d removed, %d copied, %d converted",
			res.Removed, res.Copied, res.Converted)
	}
}
