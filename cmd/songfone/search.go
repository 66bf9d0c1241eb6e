package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jakob/songfone/internal/util"
)

var searchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "Search the catalogue by tag values",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	query := strings.Join(args, " ")
	results, err := store.SearchSongs(query)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		util.InfoLog("No songs match %q", query)
		return nil
	}

	for _, r := range results {
		duration := (time.Duration(r.Song.DurationMs) * time.Millisecond).Round(time.Second)
		fmt.Printf("%s:%s\n        %s %dkbps %s %s  (%s)\n",
			r.Song.RootID, r.Song.RelPath,
			r.Song.Codec, r.Song.BitrateKbps, duration,
			humanize.Bytes(uint64(r.Song.SizeBytes)),
			r.Matched)
	}
	util.InfoLog("%d songs match %q", len(results), query)
	return nil
}
