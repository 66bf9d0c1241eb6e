package meta

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/jakob/songfone/internal/util"
)

// Result holds everything extracted from one audio file
type Result struct {
	// Tags maps a field name to the values found for it, in encounter
	// order. Callers that need a single value take the first one.
	Tags map[string][]string

	// MIMEHints are media-type strings describing the stream, most
	// specific first (e.g. "audio/ogg; codecs=opus")
	MIMEHints []string

	BitrateKbps int
	DurationMs  int
}

// Extractor reads tags and technical metadata from an audio file. The
// indexer takes one as a collaborator so tests can substitute a stub.
type Extractor func(path string) (*Result, error)

// Extract reads tags via the tag library and fills in audio properties via
// ffprobe when available. A missing file maps to util.ErrNotFound, an
// unreadable one to util.ErrCorrupt.
func Extract(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, util.ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	result := &Result{Tags: make(map[string][]string)}

	m, tagErr := tag.ReadFrom(f)
	if tagErr == nil {
		collectTags(result, m)
		result.MIMEHints = append(result.MIMEHints,
			"audio/"+strings.ToLower(string(m.FileType())))
	}

	// ffprobe knows the actual stream codec and the technical properties
	// the tag library does not expose
	if probe, probeErr := RunFFprobe(path); probeErr == nil {
		mergeProbe(result, probe)
	}

	if tagErr != nil && len(result.MIMEHints) == 0 {
		// neither reader could make sense of the file
		return nil, fmt.Errorf("%s (%v): %w", path, tagErr, util.ErrCorrupt)
	}

	return result, nil
}

func collectTags(result *Result, m tag.Metadata) {
	add := func(field, value string) {
		if value != "" {
			result.Tags[field] = append(result.Tags[field], value)
		}
	}

	add("title", m.Title())
	add("artist", m.Artist())
	add("album", m.Album())
	add("albumartist", m.AlbumArtist())
	add("composer", m.Composer())
	add("genre", m.Genre())
	add("comment", m.Comment())
	if year := m.Year(); year > 0 {
		add("year", strconv.Itoa(year))
	}
	if track, _ := m.Track(); track > 0 {
		add("track", strconv.Itoa(track))
	}
	if disc, _ := m.Disc(); disc > 0 {
		add("disc", strconv.Itoa(disc))
	}
}

func mergeProbe(result *Result, probe *FFprobeInfo) {
	stream := probe.FirstAudioStream()
	if stream != nil && stream.CodecName != "" {
		hint := "audio/" + stream.CodecName
		if stream.CodecName == "opus" {
			hint = "audio/ogg; codecs=opus"
		}
		// ffprobe's codec identification is the most specific hint
		result.MIMEHints = append([]string{hint}, result.MIMEHints...)
	}

	if probe.Format != nil {
		if kbps := parseBitrateKbps(probe.Format.BitRate); kbps > 0 {
			result.BitrateKbps = kbps
		}
		if ms := parseDurationMs(probe.Format.Duration); ms > 0 {
			result.DurationMs = ms
		}
		for field, value := range probe.Format.Tags {
			field = strings.ToLower(field)
			if value == "" {
				continue
			}
			// tag-library values stay first so they win
			result.Tags[field] = append(result.Tags[field], value)
		}
	}
}

func parseBitrateKbps(raw string) int {
	bps, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return bps / 1000
}

func parseDurationMs(raw string) int {
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return int(seconds * 1000)
}
