package wants

import "sort"

// Diff computes the minimal add/remove sets between the desired wants and
// the destination tree's current listing. havePaths are the media files
// physically present, relative to the destination root.
//
// The two results partition cleanly: toRemove only contains paths that were
// present, toAdd only wants whose destination path was absent, and the two
// never overlap. Both are sorted by destination path for determinism.
func Diff(desired []Want, havePaths []string) (toRemove []string, toAdd []Want) {
	wantDest := make(map[string]bool, len(desired))
	for _, w := range desired {
		wantDest[w.DestPath] = true
	}

	have := make(map[string]bool, len(havePaths))
	for _, p := range havePaths {
		have[p] = true
		if !wantDest[p] {
			toRemove = append(toRemove, p)
		}
	}

	for _, w := range desired {
		if !have[w.DestPath] {
			toAdd = append(toAdd, w)
		}
	}

	sort.Strings(toRemove)
	sort.Slice(toAdd, func(i, j int) bool { return toAdd[i].DestPath < toAdd[j].DestPath })
	return toRemove, toAdd
}
