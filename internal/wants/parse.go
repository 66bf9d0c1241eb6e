package wants

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jakob/songfone/internal/util"
)

// Want descriptor format, where ab12cd34ef is a configured root's derived
// identifier:
//
//	{
//	  "wants": [
//	    "ab12cd34ef:artist/album/01 - song.flac"
//	  ],
//	  "wants_as": [
//	    {
//	      "codec": "opus",
//	      "quality": 128,
//	      "files": ["ab12cd34ef:artist/album/02 - song2.flac"]
//	    }
//	  ]
//	}
type descriptor struct {
	Wants   []string          `json:"wants"`
	WantsAs []conversionGroup `json:"wants_as"`
}

type conversionGroup struct {
	Codec   string   `json:"codec"`
	Quality int      `json:"quality"`
	Files   []string `json:"files"`
}

// Load reads the want descriptor at path. roots maps a root identifier to
// its absolute path. A missing or unparsable descriptor means "no wants
// yet", never an error: the caller's run continues with an empty set.
// References to unknown roots and groups with unknown codecs are dropped
// with a warning. When several entries collide on one destination path, the
// last parsed entry wins.
func Load(path string, roots map[string]string) []Want {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			util.WarnLog("Cannot read wants file %s: %v", path, err)
		}
		return nil
	}

	var desc descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		util.WarnLog("Error parsing wants file %s: %v", path, err)
		return nil
	}

	// keyed by destination path so colliding entries collapse, in
	// deterministic last-wins order
	byDest := make(map[string]int)
	var result []Want

	add := func(w Want) {
		if i, ok := byDest[w.DestPath]; ok {
			result[i] = w
			return
		}
		byDest[w.DestPath] = len(result)
		result = append(result, w)
	}

	for _, ref := range desc.Wants {
		rootID, rootPath, rel, ok := splitRef(ref, roots)
		if !ok {
			continue
		}
		add(New(rootID, rootPath, rel, nil))
	}

	for _, group := range desc.WantsAs {
		conv, err := NewConversion(group.Codec, group.Quality)
		if err != nil {
			util.WarnLog("Skipping conversion group: %v", err)
			continue
		}
		for _, ref := range group.Files {
			rootID, rootPath, rel, ok := splitRef(ref, roots)
			if !ok {
				continue
			}
			add(New(rootID, rootPath, rel, &conv))
		}
	}

	return result
}

// splitRef splits a "rootid:relative/path" reference and resolves the root
func splitRef(ref string, roots map[string]string) (rootID, rootPath, rel string, ok bool) {
	id, rel, found := strings.Cut(ref, ":")
	if !found || rel == "" {
		util.WarnLog("Malformed want reference %q", ref)
		return "", "", "", false
	}
	rootPath, known := roots[id]
	if !known {
		util.WarnLog("Want %q references unknown root %q", ref, id)
		return "", "", "", false
	}
	return id, rootPath, rel, true
}
