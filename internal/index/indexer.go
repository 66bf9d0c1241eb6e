package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jakob/songfone/internal/catalog"
	"github.com/jakob/songfone/internal/cover"
	"github.com/jakob/songfone/internal/meta"
	"github.com/jakob/songfone/internal/report"
	"github.com/jakob/songfone/internal/util"
)

// commitBatchSize bounds how many touched rows accumulate in one
// transaction before an intermediate commit
const commitBatchSize = 800

// Indexer maintains the persistent catalogue for the configured source
// roots. Scans are incremental: a file whose size and mtime match the
// stored row is never re-read.
type Indexer struct {
	store      *catalog.Store
	resolver   *cover.Resolver
	extract    meta.Extractor
	extensions []string
	batchSize  int
	logger     *report.EventLogger
}

// Config holds indexer configuration
type Config struct {
	Store      *catalog.Store
	Resolver   *cover.Resolver
	Extract    meta.Extractor // defaults to meta.Extract
	Extensions []string
	BatchSize  int
	Logger     *report.EventLogger
}

// New creates an Indexer
func New(cfg *Config) *Indexer {
	if cfg.Extract == nil {
		cfg.Extract = meta.Extract
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = commitBatchSize
	}
	if cfg.Logger == nil {
		cfg.Logger = report.NullLogger()
	}
	return &Indexer{
		store:      cfg.Store,
		resolver:   cfg.Resolver,
		extract:    cfg.Extract,
		extensions: cfg.Extensions,
		batchSize:  cfg.BatchSize,
		logger:     cfg.Logger,
	}
}

// Result summarizes one scan
type Result struct {
	Found   int
	Indexed int
	Skipped int
	Removed int
	Errors  []error
}

// ScanAll scans every configured root in turn
func (ix *Indexer) ScanAll(ctx context.Context, roots []string) (*Result, error) {
	total := &Result{}
	for _, root := range roots {
		res, err := ix.ScanRoot(ctx, root)
		if err != nil {
			return total, err
		}
		total.Found += res.Found
		total.Indexed += res.Indexed
		total.Skipped += res.Skipped
		total.Removed += res.Removed
		total.Errors = append(total.Errors, res.Errors...)
	}
	return total, nil
}

// ScanRoot incrementally indexes one source root. Per-file extraction
// failures are logged and skipped; only storage failures abort the scan.
func (ix *Indexer) ScanRoot(ctx context.Context, rootPath string) (*Result, error) {
	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}
	rootID := util.RootID(rootPath)

	util.InfoLog("Indexing root %s (%s)", rootPath, rootID)

	if err := ix.store.UpsertRoot(rootID, rootPath); err != nil {
		return nil, fmt.Errorf("failed to register root: %w", err)
	}

	existing, err := ix.store.GetSongsByRoot(rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue for root: %w", err)
	}

	files, err := util.ListFiles(rootPath, ix.extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rootPath, err)
	}

	result := &Result{Found: len(files)}

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		// leave room for the description and counters
		barWidth := util.GetTerminalWidth() - 40
		if barWidth > 40 {
			barWidth = 40
		}
		if barWidth < 10 {
			barWidth = 10
		}
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Indexing"),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	tx, err := ix.store.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	seen := make(map[string]bool, len(files))
	touched := 0
	lastSegment := ""

	for _, f := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		seen[f.RelPath] = true

		// coarse progress, once per top-level path segment
		if seg := topSegment(f.RelPath); seg != lastSegment {
			lastSegment = seg
			if bar != nil {
				bar.Describe("Indexing " + seg)
			} else {
				util.InfoLog("Indexing %s", seg)
			}
		}
		if bar != nil {
			bar.Add(1)
		}

		if song, ok := existing[f.RelPath]; ok &&
			song.SizeBytes == f.Size && song.MtimeUnix == f.Mtime {
			// unchanged: no extraction, no write, identity untouched
			result.Skipped++
			ix.logger.LogSkip(rootID, f.RelPath)
			continue
		}

		if err := ix.indexFile(tx, rootID, rootPath, f); err != nil {
			if isStorageError(err) {
				return result, err
			}
			util.WarnLog("Skipping %s: %v", f.RelPath, err)
			ix.logger.LogError(report.EventScan, f.RelPath, err)
			result.Errors = append(result.Errors, err)
			continue
		}

		result.Indexed++
		touched++
		if touched >= ix.batchSize {
			if err := tx.Commit(); err != nil {
				committed = true // nothing left to roll back
				return result, fmt.Errorf("failed to commit batch: %w", err)
			}
			tx, err = ix.store.Begin()
			if err != nil {
				committed = true
				return result, fmt.Errorf("failed to begin transaction: %w", err)
			}
			touched = 0
		}
	}

	removed, err := ix.store.DeleteSongsNotInTx(tx, rootID, seen)
	if err != nil {
		return result, fmt.Errorf("failed to drop stale songs: %w", err)
	}
	result.Removed = removed

	if err := tx.Commit(); err != nil {
		committed = true
		return result, fmt.Errorf("failed to commit scan: %w", err)
	}
	committed = true

	if bar != nil {
		bar.Finish()
	}

	if err := ix.store.TouchRootScanned(rootID); err != nil {
		return result, err
	}

	util.SuccessLog("Root %s: %d files, %d indexed, %d unchanged, %d removed, %d errors",
		rootID, result.Found, result.Indexed, result.Skipped, result.Removed, len(result.Errors))
	return result, nil
}

// indexFile extracts one changed file and upserts its catalogue row.
// Storage errors come back wrapped in storageError so the caller can tell
// them apart from per-file extraction failures.
func (ix *Indexer) indexFile(tx *sql.Tx, rootID, rootPath string, f util.FileEntry) error {
	extracted, err := ix.extract(filepath.Join(rootPath, filepath.FromSlash(f.RelPath)))
	if err != nil {
		return err
	}

	tags := firstValues(extracted.Tags)
	codec := meta.CodecFromMIME(extracted.MIMEHints)

	var coverID sql.NullInt64
	if ix.resolver != nil {
		hints := []string{tags["artist"], tags["album"]}
		if entry := ix.resolver.Resolve(rootID, rootPath, f.RelPath, hints); entry != nil {
			id, err := ix.store.UpsertCoverTx(tx, &catalog.Cover{
				RootID:  rootID,
				RelPath: entry.RelPath,
				PNGData: entry.PNGData,
				Width:   entry.Width,
				Height:  entry.Height,
			})
			if err != nil {
				return storageError{err}
			}
			coverID = sql.NullInt64{Int64: id, Valid: true}
			ix.logger.LogCover(rootID, f.RelPath, entry.RelPath)
		}
	}

	song := &catalog.Song{
		RootID:      rootID,
		RelPath:     f.RelPath,
		Codec:       codec,
		BitrateKbps: extracted.BitrateKbps,
		DurationMs:  extracted.DurationMs,
		SizeBytes:   f.Size,
		MtimeUnix:   f.Mtime,
		CoverID:     coverID,
	}
	if _, err := ix.store.UpsertSongTx(tx, song, tags); err != nil {
		return storageError{err}
	}

	ix.logger.LogScan(rootID, f.RelPath, codec)
	return nil
}

// firstValues applies the first-value-wins policy to multi-valued tags
func firstValues(tags map[string][]string) map[string]string {
	out := make(map[string]string, len(tags))
	for field, values := range tags {
		if len(values) > 0 {
			out[field] = values[0]
		}
	}
	return out
}

func topSegment(relPath string) string {
	if i := strings.IndexByte(relPath, '/'); i >= 0 {
		return relPath[:i]
	}
	return relPath
}

// storageError marks catalogue write failures, which are fatal for the
// whole scan, unlike per-file extraction errors
type storageError struct{ err error }

func (e storageError) Error() string { return e.err.Error() }
func (e storageError) Unwrap() error { return e.err }

func isStorageError(err error) bool {
	_, ok := err.(storageError)
	return ok
}
