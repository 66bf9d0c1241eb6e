package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jakob/songfone/internal/util"
)

// DefaultExtensions are the audio file extensions considered by both the
// indexer and the destination-tree listing
var DefaultExtensions = []string{"mp3", "flac", "mp4", "ogg", "opus"}

// Config holds the validated songfone configuration
type Config struct {
	// Audio lists the source roots containing original audio files
	Audio []string

	// Output is the destination tree, also holding the wants file and
	// the catalogue database
	Output string

	Extensions []string

	// Wants and Database are paths relative to Output
	Wants    string
	Database string

	FFmpegBin            string
	MaxConversionThreads int
	CoverMaxDimension    int
	CoverCacheSize       int
}

// FromViper builds a Config from the loaded viper state, applying defaults
// and expanding ~ in paths
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("output", "~/.local/share/songfone")
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("wants", ".songfone/songs.wants")
	v.SetDefault("database", ".songfone/songs.db")
	v.SetDefault("ffmpeg_bin", "ffmpeg")
	v.SetDefault("max_conversion_threads", 2)
	v.SetDefault("cover_max_dimension", 1024)
	v.SetDefault("cover_cache_size", 5)

	cfg := &Config{
		Output:            expandUser(v.GetString("output")),
		Extensions:        v.GetStringSlice("extensions"),
		Wants:             v.GetString("wants"),
		Database:          v.GetString("database"),
		FFmpegBin:         v.GetString("ffmpeg_bin"),
		CoverMaxDimension: v.GetInt("cover_max_dimension"),
		CoverCacheSize:    v.GetInt("cover_cache_size"),
	}

	// audio may be a single string or a list
	switch audio := v.Get("audio").(type) {
	case string:
		cfg.Audio = []string{expandUser(audio)}
	case []interface{}:
		for _, a := range audio {
			if s, ok := a.(string); ok {
				cfg.Audio = append(cfg.Audio, expandUser(s))
			}
		}
	case nil:
		cfg.Audio = []string{expandUser("~/Music")}
	default:
		return nil, fmt.Errorf("audio must be a string or list of strings: %w", util.ErrInvalidConfig)
	}

	threads, err := ParseThreads(v.GetString("max_conversion_threads"))
	if err != nil {
		return nil, err
	}
	cfg.MaxConversionThreads = threads

	return cfg, nil
}

// WantsFile returns the absolute path of the want descriptor
func (c *Config) WantsFile() string {
	return filepath.Join(c.Output, c.Wants)
}

// DatabaseFile returns the absolute path of the catalogue database
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.Output, c.Database)
}

// Validate checks that every configured audio root exists
func (c *Config) Validate() error {
	if len(c.Audio) == 0 {
		return fmt.Errorf("no audio directories configured: %w", util.ErrInvalidConfig)
	}
	for _, dir := range c.Audio {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("audio directory %q does not exist: %w", dir, util.ErrInvalidConfig)
		}
	}
	return nil
}

// MakeOutput creates the output directory tree. Failure here is fatal for
// the run.
func (c *Config) MakeOutput() error {
	for _, dir := range []string{
		c.Output,
		filepath.Dir(c.WantsFile()),
		filepath.Dir(c.DatabaseFile()),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", dir, err)
		}
	}
	return nil
}

// RootsByID maps each configured audio root's derived identifier to its
// absolute path
func (c *Config) RootsByID() map[string]string {
	roots := make(map[string]string, len(c.Audio))
	for _, dir := range c.Audio {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		roots[util.RootID(abs)] = abs
	}
	return roots
}

func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
