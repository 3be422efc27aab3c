package engine

import "testing"

func pronounWorld() *WorldPackage {
	return &WorldPackage{
		StartRoomID: "r1",
		Rooms: map[string]Room{
			"r1": {ID: "r1", Name: "Corridor", ItemIDs: []string{"key", "box"}},
		},
		Items: map[string]Item{
			"key": {ID: "key", Name: "key"},
			"box": {ID: "box", Name: "box", Container: true},
		},
	}
}

// Only the direct object of a command should update pronoun memory: "put
// key in box" must leave "it" pointing at the key, not the box.
func TestIndirectObjectResolutionDoesNotUpdatePronoun(t *testing.T) {
	w := pronounWorld()
	p := NewParser(w)
	o := NewOverlay(w)

	cmd, err := p.Parse("put key in box", o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.DirectObject != "key" {
		t.Fatalf("direct object = %q, want key", cmd.DirectObject)
	}
	if cmd.IndirectObject != "box" {
		t.Fatalf("indirect object = %q, want box", cmd.IndirectObject)
	}
	if o.PronounItemID != "key" {
		t.Fatalf("PronounItemID = %q, want key (only the direct object should update it)", o.PronounItemID)
	}
}

// A direct-object-only command still updates pronoun memory as before.
func TestDirectObjectResolutionUpdatesPronoun(t *testing.T) {
	w := pronounWorld()
	p := NewParser(w)
	o := NewOverlay(w)

	if _, err := p.Parse("take key", o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.PronounItemID != "key" {
		t.Fatalf("PronounItemID = %q, want key", o.PronounItemID)
	}
}
