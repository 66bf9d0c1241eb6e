package wants

import (
	"reflect"
	"testing"
)

func plainWants(dests ...string) []Want {
	wants := make([]Want, len(dests))
	for i, d := range dests {
		wants[i] = New("ab12cd34ef", "/music", d, nil)
	}
	return wants
}

func destPaths(wants []Want) []string {
	paths := make([]string, len(wants))
	for i, w := range wants {
		paths[i] = w.DestPath
	}
	return paths
}

func TestDiff(t *testing.T) {
	testCases := []struct {
		name       string
		desired    []Want
		have       []string
		wantRemove []string
		wantAdd    []string
	}{
		{
			name:    "everything already present",
			desired: plainWants("a.mp3", "b.mp3"),
			have:    []string{"a.mp3", "b.mp3"},
		},
		{
			name:    "fresh destination",
			desired: plainWants("b.mp3", "a.mp3"),
			wantAdd: []string{"a.mp3", "b.mp3"},
		},
		{
			name:       "nothing wanted anymore",
			have:       []string{"b.mp3", "a.mp3"},
			wantRemove: []string{"a.mp3", "b.mp3"},
		},
		{
			name:       "mixed",
			desired:    plainWants("keep.mp3", "new.mp3"),
			have:       []string{"keep.mp3", "old.mp3"},
			wantRemove: []string{"old.mp3"},
			wantAdd:    []string{"new.mp3"},
		},
		{
			name:    "empty both ways",
			desired: nil,
			have:    nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toRemove, toAdd := Diff(tc.desired, tc.have)

			if !reflect.DeepEqual(toRemove, tc.wantRemove) {
				t.Errorf("toRemove = %v, want %v", toRemove, tc.wantRemove)
			}
			if got := destPaths(toAdd); !reflect.DeepEqual(got, tc.wantAdd) &&
				!(len(got) == 0 && len(tc.wantAdd) == 0) {
				t.Errorf("toAdd = %v, want %v", got, tc.wantAdd)
			}
		})
	}
}

func TestDiffPartitions(t *testing.T) {
	desired := plainWants("a.mp3", "c.mp3", "d.mp3")
	have := []string{"a.mp3", "b.mp3"}

	toRemove, toAdd := Diff(desired, have)

	haveSet := map[string]bool{"a.mp3": true, "b.mp3": true}
	for _, p := range toRemove {
		if !haveSet[p] {
			t.Errorf("toRemove contains %s which was never present", p)
		}
	}
	for _, w := range toAdd {
		if haveSet[w.DestPath] {
			t.Errorf("toAdd contains %s which is already present", w.DestPath)
		}
	}
}

func TestDiffConversionWantMatchesDestination(t *testing.T) {
	conv := Conversion{Codec: "opus", QualityKbps: 128}
	desired := []Want{New("ab12cd34ef", "/music", "a/song.flac", &conv)}

	// destination already holds the converted file, so nothing to do
	toRemove, toAdd := Diff(desired, []string{"a/song.opus"})
	if len(toRemove) != 0 || len(toAdd) != 0 {
		t.Errorf("Diff = remove %v add %v, want empty", toRemove, toAdd)
	}
}
