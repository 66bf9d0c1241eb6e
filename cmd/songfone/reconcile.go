package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakob/songfone/internal/util"
	"github.com/jakob/songfone/internal/wants"
)

var reconcileDryRun bool

var reconcileCmd = &cobra.Command{
	Use:     "reconcile",
	Aliases: []string{"wants"},
	Short:   "Fulfill the want list without touching the catalogue",
	Long: `Diff the want list against what is physically present in the output
directory, then delete unwanted files and materialize missing ones. With
--dry-run the diff is printed and nothing is changed.`,
	RunE: runReconcileCmd,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "print the diff without applying it")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcileCmd(cmd *cobra.Command, args []string) error {
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

	if reconcileDryRun {
		desired := wants.Load(cfg.WantsFile(), cfg.RootsByID())
		haveEntries, err := util.ListFiles(cfg.Output, cfg.Extensions)
		if err != nil {
			return err
		}
		havePaths := make([]string, len(haveEntries))
		for i, e := range haveEntries {
			havePaths[i] = e.RelPath
		}
		toRemove, toAdd := wants.Diff(desired, havePaths)

		for _, p := range toRemove {
			fmt.Printf("remove  %s\n", p)
		}
		for _, w := range toAdd {
			if w.Conversion == nil {
				fmt.Printf("copy    %s\n", w.DestPath)
			} else {
				fmt.Printf("convert %s (%s)\n", w.DestPath, w.Conversion)
			}
		}
		util.InfoLog("%d to remove, %d to add", len(toRemove), len(toAdd))
		return nil
	}

	logger := newEventLogger(cfg)
	defer logger.Close()

	res, err := runReconcile(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	logPipelineResult(res)
	return nil
}
