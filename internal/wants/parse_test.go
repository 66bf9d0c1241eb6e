package wants

import (
	"os"
	"path/filepath"
	"testing"
)

var testRoots = map[string]string{
	"ab12cd34ef": "/music",
	"0987654321": "/more",
}

func writeWants(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.wants")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.wants")
	if got := Load(path, testRoots); got != nil {
		t.Errorf("Load of missing file = %v, want nil", got)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeWants(t, "{ this is not json")
	if got := Load(path, testRoots); got != nil {
		t.Errorf("Load of malformed file = %v, want nil", got)
	}
}

func TestLoadEmptyDescriptor(t *testing.T) {
	path := writeWants(t, `{}`)
	if got := Load(path, testRoots); len(got) != 0 {
		t.Errorf("Load = %v, want empty", got)
	}
}

func TestLoadPlainAndConversionWants(t *testing.T) {
	path := writeWants(t, `{
		"wants": ["ab12cd34ef:artist/album/01 - song.flac"],
		"wants_as": [
			{"codec": "opus", "quality": 128, "files": ["0987654321:live/02.flac"]}
		]
	}`)

	got := Load(path, testRoots)
	if len(got) != 2 {
		t.Fatalf("Load = %v, want 2 wants", got)
	}

	plain := got[0]
	if plain.RootID != "ab12cd34ef" || plain.RootPath != "/music" {
		t.Errorf("plain want root = %s %s", plain.RootID, plain.RootPath)
	}
	if plain.DestPath != "artist/album/01 - song.flac" || plain.Conversion != nil {
		t.Errorf("plain want = %+v", plain)
	}

	conv := got[1]
	if conv.Conversion == nil {
		t.Fatal("conversion want lost its conversion")
	}
	if conv.Conversion.Codec != "opus" || conv.Conversion.QualityKbps != 128 {
		t.Errorf("conversion = %+v", conv.Conversion)
	}
	if conv.DestPath != "live/02.opus" || conv.SrcRel != "live/02.flac" {
		t.Errorf("conversion want paths = %+v", conv)
	}
}

func TestLoadDropsBadReferences(t *testing.T) {
	path := writeWants(t, `{
		"wants": [
			"ab12cd34ef:good.flac",
			"ffffffffff:unknown-root.flac",
			"no-colon-at-all",
			"ab12cd34ef:"
		]
	}`)

	got := Load(path, testRoots)
	if len(got) != 1 || got[0].SrcRel != "good.flac" {
		t.Errorf("Load = %v, want only the valid reference", got)
	}
}

func TestLoadSkipsUnknownCodecGroup(t *testing.T) {
	path := writeWants(t, `{
		"wants_as": [
			{"codec": "wavpack", "quality": 128, "files": ["ab12cd34ef:a.flac"]},
			{"codec": "mp3", "quality": 192, "files": ["ab12cd34ef:b.flac"]}
		]
	}`)

	got := Load(path, testRoots)
	if len(got) != 1 || got[0].Conversion.Codec != "mp3" {
		t.Errorf("Load = %v, want only the mp3 group", got)
	}
}

func TestLoadCollidingDestinationsLastWins(t *testing.T) {
	// the plain want and the conversion want both land on a/song.opus
	path := writeWants(t, `{
		"wants": ["ab12cd34ef:a/song.opus"],
		"wants_as": [
			{"codec": "opus", "quality": 96, "files": ["ab12cd34ef:a/song.flac"]}
		]
	}`)

	got := Load(path, testRoots)
	if len(got) != 1 {
		t.Fatalf("Load = %v, want the collision collapsed", got)
	}
	w := got[0]
	if w.DestPath != "a/song.opus" {
		t.Errorf("DestPath = %q", w.DestPath)
	}
	if w.Conversion == nil || w.SrcRel != "a/song.flac" {
		t.Errorf("later entry did not win: %+v", w)
	}
}
