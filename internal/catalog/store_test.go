package catalog

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "songs.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func upsertSong(t *testing.T, store *Store, song *Song, tags map[string]string) int64 {
	t.Helper()
	var id int64
	err := store.Transaction(func(tx *sql.Tx) error {
		var err error
		id, err = store.UpsertSongTx(tx, song, tags)
		return err
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	return id
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertRoot("ab12cd34ef", "/music"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	// re-opening against the existing schema must not be destructive
	store, err = Open(path)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer store.Close()

	root, err := store.GetRoot("ab12cd34ef")
	if err != nil {
		t.Fatal(err)
	}
	if root == nil || root.Path != "/music" {
		t.Errorf("root lost across re-open: %+v", root)
	}
}

func TestUpsertSongPreservesIdentity(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpsertRoot("ab12cd34ef", "/music"); err != nil {
		t.Fatal(err)
	}

	song := &Song{
		RootID:      "ab12cd34ef",
		RelPath:     "artist/album/01 - song.flac",
		Codec:       "flac",
		BitrateKbps: 900,
		SizeBytes:   1000,
		MtimeUnix:   111,
	}
	id1 := upsertSong(t, store, song, map[string]string{"artist": "A", "title": "One"})

	// rescan with changed metadata: same key, same identity
	song.SizeBytes = 2000
	song.MtimeUnix = 222
	song.BitrateKbps = 320
	id2 := upsertSong(t, store, song, map[string]string{"artist": "A", "title": "One (remaster)"})

	if id1 != id2 {
		t.Fatalf("row identity changed across rescan: %d -> %d", id1, id2)
	}

	stored, err := store.GetSong("ab12cd34ef", song.RelPath)
	if err != nil {
		t.Fatal(err)
	}
	if stored.SizeBytes != 2000 || stored.MtimeUnix != 222 || stored.BitrateKbps != 320 {
		t.Errorf("fields not updated: %+v", stored)
	}

	// a different key gets a different identity
	other := &Song{RootID: "ab12cd34ef", RelPath: "other.mp3"}
	if id3 := upsertSong(t, store, other, nil); id3 == id1 {
		t.Errorf("distinct songs share identity %d", id1)
	}
}

func TestUpsertReplacesTags(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpsertRoot("ab12cd34ef", "/music"); err != nil {
		t.Fatal(err)
	}

	song := &Song{RootID: "ab12cd34ef", RelPath: "a.mp3", SizeBytes: 1, MtimeUnix: 1}
	id := upsertSong(t, store, song, map[string]string{"artist": "A", "genre": "rock"})

	// full replacement: the old tag set is gone, never merged
	id2 := upsertSong(t, store, song, map[string]string{"artist": "B"})
	if id2 != id {
		t.Fatalf("identity changed: %d -> %d", id, id2)
	}

	tags, err := store.GetSongTags(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags["artist"] != "B" {
		t.Errorf("tags = %v, want only artist=B", tags)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpsertRoot("ab12cd34ef", "/music"); err != nil {
		t.Fatal(err)
	}

	song := &Song{RootID: "ab12cd34ef", RelPath: "a.mp3", Codec: "mpeg", SizeBytes: 5, MtimeUnix: 9}
	tags := map[string]string{"artist": "A"}

	id1 := upsertSong(t, store, song, tags)
	id2 := upsertSong(t, store, song, tags)

	if id1 != id2 {
		t.Fatalf("idempotent upsert changed identity: %d -> %d", id1, id2)
	}

	songs, err := store.GetSongsByRoot("ab12cd34ef")
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 1 {
		t.Errorf("duplicate rows after repeated upsert: %d", len(songs))
	}
	got, err := store.GetSongTags(id1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["artist"] != "A" {
		t.Errorf("tags = %v", got)
	}
}

func TestDeleteSongsNotIn(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpsertRoot("ab12cd34ef", "/music"); err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{"keep.mp3", "gone.mp3"} {
		upsertSong(t, store, &Song{RootID: "ab12cd34ef", RelPath: rel}, map[string]string{"title": rel})
	}

	var removed int
	err := store.Transaction(func(tx *sql.Tx) error {
		var err error
		removed, err = store.DeleteSongsNotInTx(tx, "ab12cd34ef", map[string]bool{"keep.mp3": true})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	songs, err := store.GetSongsByRoot("ab12cd34ef")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := songs["gone.mp3"]; ok {
		t.Error("stale song survived")
	}
	if _, ok := songs["keep.mp3"]; !ok {
		t.Error("kept song was dropped")
	}
}

func TestCoversImmutable(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpsertRoot("ab12cd34ef", "/music"); err != nil {
		t.Fatal(err)
	}

	cover := &Cover{RootID: "ab12cd34ef", RelPath: "album/cover.jpg", PNGData: []byte{1, 2}, Width: 10, Height: 10}

	var id1, id2 int64
	err := store.Transaction(func(tx *sql.Tx) error {
		var err error
		if id1, err = store.UpsertCoverTx(tx, cover); err != nil {
			return err
		}
		// second insert for the same key must not replace the bytes
		id2, err = store.UpsertCoverTx(tx, &Cover{RootID: "ab12cd34ef", RelPath: "album/cover.jpg", PNGData: []byte{9}})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("cover identity changed: %d -> %d", id1, id2)
	}

	stored, err := store.GetCover("ab12cd34ef", "album/cover.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || len(stored.PNGData) != 2 {
		t.Errorf("cover bytes mutated: %+v", stored)
	}

	byID, err := store.GetCoverByID(id1)
	if err != nil {
		t.Fatal(err)
	}
	if byID == nil || byID.RelPath != "album/cover.jpg" {
		t.Errorf("lookup by id = %+v", byID)
	}
}

func TestSearchSongs(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpsertRoot("ab12cd34ef", "/music"); err != nil {
		t.Fatal(err)
	}

	upsertSong(t, store, &Song{RootID: "ab12cd34ef", RelPath: "a.flac"},
		map[string]string{"artist": "The Beatles", "album": "Abbey Road"})
	upsertSong(t, store, &Song{RootID: "ab12cd34ef", RelPath: "b.flac"},
		map[string]string{"artist": "Someone Else"})

	results, err := store.SearchSongs("beatles")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Song.RelPath != "a.flac" {
		t.Errorf("search results = %+v", results)
	}

	none, err := store.SearchSongs("zappa")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("unexpected matches: %+v", none)
	}
}
