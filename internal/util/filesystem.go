package util

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileEntry is one file found under a scanned directory.
type FileEntry struct {
	RelPath string // path relative to the walk root, slash-separated
	Size    int64
	Mtime   int64 // unix seconds, truncated
}

// ListFiles walks root and returns every regular file whose extension is in
// exts (compared case-insensitively, without the leading dot). Zero-length
// files are skipped. Unreadable subtrees are skipped with a warning rather
// than aborting the walk.
func ListFiles(root string, exts []string) ([]FileEntry, error) {
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	var entries []FileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			WarnLog("Cannot access %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !extSet[ext] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			WarnLog("Cannot stat %s: %v", path, err)
			return nil
		}
		if info.Size() == 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
			Mtime:   info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CopyFile copies src to dst byte for byte and preserves the source
// modification time, so a later rescan of the destination sees the copy as
// unchanged.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// PruneEmptyDirs removes dir and then each parent in turn while they are
// empty, stopping silently at the first non-empty directory or once stop is
// reached. stop itself is never removed.
func PruneEmptyDirs(dir, stop string) {
	stop = filepath.Clean(stop)
	for {
		dir = filepath.Clean(dir)
		if dir == stop || dir == "." || dir == string(filepath.Separator) {
			return
		}
		if err := os.Remove(dir); err != nil {
			return // not empty, or already gone with a non-empty parent
		}
		dir = filepath.Dir(dir)
	}
}
