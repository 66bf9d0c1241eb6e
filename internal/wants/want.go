package wants

import (
	"fmt"
	"path"
	"strings"

	"github.com/jakob/songfone/internal/util"
)

// codecExtensions maps a target codec to its destination file extension
var codecExtensions = map[string]string{
	"mp3":    "mp3",
	"flac":   "flac",
	"opus":   "opus",
	"mp4":    "mp4",
	"m4a":    "m4a",
	"vorbis": "ogg",
}

// Conversion is an immutable transcode request: target codec and bitrate
type Conversion struct {
	Codec       string
	QualityKbps int
}

// NewConversion validates the codec and returns the conversion value.
// Unknown codecs map to util.ErrUnsupported.
func NewConversion(codec string, qualityKbps int) (Conversion, error) {
	codec = strings.ToLower(codec)
	if _, ok := codecExtensions[codec]; !ok {
		return Conversion{}, fmt.Errorf("codec %q: %w", codec, util.ErrUnsupported)
	}
	return Conversion{Codec: codec, QualityKbps: qualityKbps}, nil
}

// Ext returns the destination extension for the target codec, without dot
func (c Conversion) Ext() string {
	return codecExtensions[c.Codec]
}

func (c Conversion) String() string {
	return fmt.Sprintf("%s@%dkbps", strings.ToUpper(c.Codec), c.QualityKbps)
}

// Want is a single desired destination file. Its identity is DestPath
// alone: a plain want and a conversion want producing the same destination
// path are the same want, which is what lets the destination tree (a flat
// set of paths) be diffed against wants by ordinary set difference.
type Want struct {
	// DestPath is the output path relative to the destination root. For
	// plain wants it equals SrcRel; for conversions the extension is
	// replaced by the target codec's.
	DestPath string

	RootID   string
	RootPath string // absolute path of the owning source root
	SrcRel   string // source path relative to the root

	// Conversion is nil for plain byte-preserving copies
	Conversion *Conversion
}

// New builds a Want and computes its destination path
func New(rootID, rootPath, srcRel string, conv *Conversion) Want {
	w := Want{
		DestPath:   srcRel,
		RootID:     rootID,
		RootPath:   rootPath,
		SrcRel:     srcRel,
		Conversion: conv,
	}
	if conv != nil {
		ext := path.Ext(srcRel)
		w.DestPath = strings.TrimSuffix(srcRel, ext) + "." + conv.Ext()
	}
	return w
}

func (w Want) String() string {
	if w.Conversion == nil {
		return fmt.Sprintf("Want(%s:%s)", w.RootID, w.DestPath)
	}
	return fmt.Sprintf("Want(%s:%s %s)", w.RootID, w.DestPath, w.Conversion)
}
