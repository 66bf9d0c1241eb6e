package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jakob/songfone/internal/convert"
	"github.com/jakob/songfone/internal/meta"
	"github.com/jakob/songfone/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment and the catalogue",
	Long: `Verify that the configuration is usable: audio directories exist, the
output directory is writable, ffmpeg and ffprobe are installed, and the
catalogue database passes an integrity check.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	problems := 0

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	util.SuccessLog("Configuration valid, %d audio directories", len(cfg.Audio))

	for _, dir := range cfg.Audio {
		util.InfoLog("  audio: %s (%s)", dir, util.RootID(dir))
	}
	util.InfoLog("  output: %s", cfg.Output)

	if probe, err := os.CreateTemp(cfg.Output, ".doctor-*"); err != nil {
		util.ErrorLog("Output directory is not writable: %v", err)
		problems++
	} else {
		probe.Close()
		os.Remove(probe.Name())
		util.SuccessLog("Output directory is writable")
	}

	if convert.CheckFFmpegAvailable(cfg.FFmpegBin) {
		util.SuccessLog("ffmpeg found (%s)", cfg.FFmpegBin)
	} else {
		util.ErrorLog("ffmpeg not found in PATH - conversions will fail")
		problems++
	}

	if meta.CheckFFprobeAvailable() {
		util.SuccessLog("ffprobe found")
	} else {
		util.WarnLog("ffprobe not found in PATH - bitrate and duration will be missing")
	}

	store, err := openCatalog(cfg)
	if err != nil {
		util.ErrorLog("Cannot open catalogue: %v", err)
		problems++
	} else {
		defer store.Close()
		if err := store.CheckIntegrity(); err != nil {
			util.ErrorLog("Catalogue integrity: %v", err)
			problems++
		} else {
			songs, _ := store.CountSongs()
			covers, _ := store.CountCovers()
			size := int64(0)
			if info, err := os.Stat(cfg.DatabaseFile()); err == nil {
				size = info.Size()
			}
			util.SuccessLog("Catalogue ok: %d songs, %d covers, %s",
				songs, covers, humanize.Bytes(uint64(size)))

			if roots, err := store.GetAllRoots(); err == nil {
				configured := cfg.RootsByID()
				for _, r := range roots {
					if _, ok := configured[r.ID]; !ok {
						util.WarnLog("Catalogue still holds root %s (%s) which is no longer configured", r.ID, r.Path)
					}
				}
			}
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problems found", problems)
	}
	util.SuccessLog("Everything looks good")
	return nil
}
