package meta

import "strings"

// CodecFromMIME collapses a list of media-type hints into a single codec
// string. Opus streams arrive wrapped in an Ogg container, so any hint
// carrying the opus codec marker wins; otherwise the first hint is used with
// its media-type prefix stripped.
func CodecFromMIME(hints []string) string {
	for _, hint := range hints {
		if strings.Contains(hint, "codecs=opus") {
			return "opus"
		}
	}
	if len(hints) == 0 {
		return ""
	}
	codec := strings.TrimPrefix(hints[0], "audio/")
	if i := strings.IndexByte(codec, ';'); i >= 0 {
		codec = codec[:i]
	}
	return strings.TrimSpace(codec)
}
