package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/jakob/songfone/internal/report"
	"github.com/jakob/songfone/internal/util"
	"github.com/jakob/songfone/internal/wants"
)

// Pipeline materializes the reconciliation diff in the destination tree:
// removals first, then plain copies, then transcodes on a bounded worker
// pool. Removals and copies happen strictly before any conversion starts,
// so no destination file is ever targeted by two phases at once.
type Pipeline struct {
	outputDir  string
	ffmpegBin  string
	maxWorkers int
	logger     *report.EventLogger

	// tagsFor supplies the catalogue's tags for a want's source song so
	// conversions carry them into the output. May be nil.
	tagsFor func(w wants.Want) map[string]string
}

// Config holds pipeline configuration
type Config struct {
	OutputDir  string
	FFmpegBin  string
	MaxWorkers int
	Logger     *report.EventLogger
	TagsFor    func(w wants.Want) map[string]string
}

// New creates a Pipeline
func New(cfg *Config) *Pipeline {
	if cfg.FFmpegBin == "" {
		cfg.FFmpegBin = "ffmpeg"
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = report.NullLogger()
	}
	return &Pipeline{
		outputDir:  cfg.OutputDir,
		ffmpegBin:  cfg.FFmpegBin,
		maxWorkers: cfg.MaxWorkers,
		logger:     cfg.Logger,
		tagsFor:    cfg.TagsFor,
	}
}

// Result summarizes one pipeline run. Per-item failures land in Errors and
// never abort the batch; a failed item simply stays absent from the
// destination and is retried on the next reconciliation pass.
type Result struct {
	Removed   int
	Copied    int
	Converted int
	Failed    int
	Errors    []error
}

// outcome is one conversion worker's report, gathered via completion channel
type outcome struct {
	want wants.Want
	err  error
}

// Apply removes unwanted files and materializes added wants. Only
// environment-level failures (destination directories not creatable) return
// an error.
func (p *Pipeline) Apply(ctx context.Context, toRemove []string, toAdd []wants.Want) (*Result, error) {
	result := &Result{}

	p.removeAll(toRemove, result)

	// ensure every destination parent exists before any bytes move
	for _, w := range toAdd {
		dir := filepath.Dir(filepath.Join(p.outputDir, filepath.FromSlash(w.DestPath)))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return result, fmt.Errorf("cannot create destination directory %s: %w", dir, err)
		}
	}

	var conversions []wants.Want
	for _, w := range toAdd {
		if w.Conversion == nil {
			p.copyOne(w, result)
		} else {
			conversions = append(conversions, w)
		}
	}

	p.convertAll(ctx, conversions, result)
	return result, nil
}

// removeAll deletes each path and prunes now-empty parents. A file that is
// already gone is not an error.
func (p *Pipeline) removeAll(toRemove []string, result *Result) {
	for _, rel := range toRemove {
		target := filepath.Join(p.outputDir, filepath.FromSlash(rel))
		if err := os.Remove(target); err != nil {
			if !os.IsNotExist(err) {
				util.WarnLog("Cannot remove %s: %v", rel, err)
				result.Failed++
				result.Errors = append(result.Errors, err)
				continue
			}
		}
		util.DebugLog("Removed %s", rel)
		p.logger.LogRemove(rel)
		result.Removed++
		util.PruneEmptyDirs(filepath.Dir(target), p.outputDir)
	}
}

func (p *Pipeline) copyOne(w wants.Want, result *Result) {
	src := filepath.Join(w.RootPath, filepath.FromSlash(w.SrcRel))
	dest := filepath.Join(p.outputDir, filepath.FromSlash(w.DestPath))

	err := util.CopyFile(src, dest)
	p.logger.LogCopy(w.SrcRel, w.DestPath, err)
	if err != nil {
		util.WarnLog("Could not copy %s: %v", w.DestPath, err)
		result.Failed++
		result.Errors = append(result.Errors, err)
		return
	}
	util.DebugLog("Copied %s", w.DestPath)
	result.Copied++
}

// convertAll runs all transcodes on a worker pool bounded by maxWorkers and
// gathers outcomes as they complete. A failed conversion is logged with its
// destination path and does not stop in-flight or pending conversions.
func (p *Pipeline) convertAll(ctx context.Context, conversions []wants.Want, result *Result) {
	if len(conversions) == 0 {
		return
	}

	util.InfoLog("Converting %d files with %d workers", len(conversions), p.maxWorkers)

	outcomes := make(chan outcome, len(conversions))
	workers := pool.New().WithMaxGoroutines(p.maxWorkers)

	for _, w := range conversions {
		w := w
		workers.Go(func() {
			start := time.Now()
			err := p.convertOne(ctx, w)
			p.logger.LogConvert(w.SrcRel, w.DestPath, w.Conversion.Codec,
				w.Conversion.QualityKbps, time.Since(start), err)
			outcomes <- outcome{want: w, err: err}
		})
	}

	workers.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.err != nil {
			util.WarnLog("Could not convert %s: %v", o.want.DestPath, o.err)
			result.Failed++
			result.Errors = append(result.Errors, o.err)
		} else {
			util.DebugLog("Converted %s", o.want.DestPath)
			result.Converted++
		}
	}
}

func (p *Pipeline) convertOne(ctx context.Context, w wants.Want) error {
	src := filepath.Join(w.RootPath, filepath.FromSlash(w.SrcRel))
	dest := filepath.Join(p.outputDir, filepath.FromSlash(w.DestPath))

	var tags map[string]string
	if p.tagsFor != nil {
		tags = p.tagsFor(w)
	}

	if err := transcode(ctx, p.ffmpegBin, src, dest, w.Conversion.Codec, w.Conversion.QualityKbps, tags); err != nil {
		// leave no partial output behind; the next pass will retry
		os.Remove(dest)
		return err
	}
	return nil
}
