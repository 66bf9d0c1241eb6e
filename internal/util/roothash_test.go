package util

import "testing"

func TestRootID(t *testing.T) {
	id := RootID("/home/user/Music")

	if len(id) != RootIDLength {
		t.Errorf("RootID length = %d, want %d", len(id), RootIDLength)
	}

	if again := RootID("/home/user/Music"); again != id {
		t.Errorf("RootID not deterministic: %s != %s", again, id)
	}

	if other := RootID("/home/user/music"); other == id {
		t.Errorf("RootID collision for different paths: %s", id)
	}
}
