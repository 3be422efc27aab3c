package worldpkg

import "testing"

func TestLoadSampleWorldValidates(t *testing.T) {
	w, err := Load("../../world")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w.StartRoomID != "airlock" {
		t.Fatalf("start room = %q, want airlock", w.StartRoomID)
	}
	if _, ok := w.Rooms["bridge"]; !ok {
		t.Fatalf("expected bridge room to be merged in")
	}
	if _, ok := w.NPCs["mara"]; !ok {
		t.Fatalf("expected mara NPC to be merged in")
	}
	if _, ok := w.Items["bridge_card"]; !ok {
		t.Fatalf("expected bridge_card item to be merged in")
	}
	if len(w.Interactions.Unlocks) != 1 {
		t.Fatalf("expected one unlock rule, got %d", len(w.Interactions.Unlocks))
	}
	if w.Digest == "" {
		t.Fatalf("expected a non-empty content digest")
	}
}

func TestLoadMissingDirErrors(t *testing.T) {
	if _, err := Load("../../world-does-not-exist"); err == nil {
		t.Fatalf("expected an error loading a nonexistent directory")
	}
}
