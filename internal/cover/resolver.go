package cover

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"  // cover art decoders
	_ "image/jpeg" // (png comes with the encoder import)

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp" // some rips ship folder.bmp

	"github.com/jakob/songfone/internal/util"
)

// coverTokens are filename fragments that strongly indicate cover art
var coverTokens = []string{"cover", "folder"}

// imageExtensions are the recognized cover image file extensions
var imageExtensions = []string{".png", ".jpeg", ".jpg", ".bmp", ".gif"}

// Resolver finds and decodes the best-matching cover image for audio files.
// Decoded images are held in a bounded LRU cache owned by the resolver.
type Resolver struct {
	maxDimension int
	cache        *Cache
}

// NewResolver creates a Resolver. Images whose longer side exceeds
// maxDimension are downscaled on decode; cacheSize bounds the number of
// decoded images kept in memory.
func NewResolver(maxDimension, cacheSize int) *Resolver {
	return &Resolver{
		maxDimension: maxDimension,
		cache:        NewCache(cacheSize),
	}
}

// Cache exposes the resolver's cache for inspection in tests
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve searches for cover art near the song at songRel below rootPath and
// returns the decoded entry, or nil when no candidate image exists. hints
// are ranking aids (typically artist and album tag values). The winning
// image is decoded at most once per cache residency; decode failures yield
// an entry with no data.
func (r *Resolver) Resolve(rootID, rootPath, songRel string, hints []string) *Entry {
	imgRel := r.search(rootPath, songRel, hints)
	if imgRel == "" {
		return nil
	}

	if entry, ok := r.cache.Get(rootID, imgRel); ok {
		return entry
	}

	entry := &Entry{RootID: rootID, RelPath: imgRel}
	data, w, h, err := r.decode(filepath.Join(rootPath, filepath.FromSlash(imgRel)))
	if err != nil {
		util.WarnLog("Cannot decode cover %s: %v", imgRel, err)
	} else {
		entry.PNGData = data
		entry.Width = w
		entry.Height = h
	}
	r.cache.Put(entry)
	return entry
}

type candidate struct {
	name string
	size int64
}

// search looks for image files in the song's own directory, falling back to
// the parent directory if the own directory holds none. The first level
// that yields any candidate is ranked; deeper or wider levels are never
// searched. Returns the winning image path relative to rootPath, or "".
func (r *Resolver) search(rootPath, songRel string, hints []string) string {
	songDir := filepath.Dir(filepath.Join(rootPath, filepath.FromSlash(songRel)))
	parentDir := filepath.Dir(songDir)

	levels := []string{songDir}
	// never search above the root itself
	if strings.HasPrefix(parentDir, filepath.Clean(rootPath)) && parentDir != songDir {
		levels = append(levels, parentDir)
	}

	for _, dir := range levels {
		candidates := listImageFiles(dir)
		if len(candidates) == 0 {
			continue
		}
		winner := rank(candidates, hints)
		rel, err := filepath.Rel(rootPath, filepath.Join(dir, winner))
		if err != nil {
			return ""
		}
		return filepath.ToSlash(rel)
	}
	return ""
}

func listImageFiles(dir string) []candidate {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{name: entry.Name(), size: info.Size()})
	}
	return candidates
}

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// rank scores every candidate and returns the name of the best one. File
// size relative to the largest candidate stands in for image quality so no
// candidate has to be decoded to be ranked. Ties keep encounter order.
func rank(candidates []candidate, hints []string) string {
	var maxSize int64
	for _, c := range candidates {
		if c.size > maxSize {
			maxSize = c.size
		}
	}

	best, bestScore := 0, -1.0
	for i, c := range candidates {
		if score := rate(c.name, c.size, maxSize, hints); score > bestScore {
			best, bestScore = i, score
		}
	}
	return candidates[best].name
}

func rate(filename string, size, maxSize int64, hints []string) float64 {
	lower := strings.ToLower(filename)
	score := 0.0
	for _, token := range coverTokens {
		if strings.Contains(lower, token) {
			score += 0.6
			break
		}
	}
	for _, hint := range hints {
		if hint != "" && strings.Contains(lower, strings.ToLower(hint)) {
			score += 0.3
		}
	}
	if maxSize > 0 {
		score += 0.5 * float64(size) / float64(maxSize)
	}
	return score
}

// decode reads and decodes an image, downscaling so the longer side fits
// maxDimension (never upscaling), and re-encodes it as PNG
func (r *Resolver) decode(path string) (data []byte, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > r.maxDimension || bounds.Dy() > r.maxDimension {
		img = resize.Thumbnail(uint(r.maxDimension), uint(r.maxDimension), img, resize.Lanczos3)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), bounds.Dx(), bounds.Dy(), nil
}
