package engine

import "testing"

func TestParseDirectionSouthwest(t *testing.T) {
	w := &WorldPackage{Rooms: map[string]Room{}}
	p := NewParser(w)
	o := NewOverlay(w)

	cmd, err := p.Parse("go southwest", o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Direction != DirSouthwest {
		t.Fatalf("direction = %q, want %q", cmd.Direction, DirSouthwest)
	}

	cmd, err = p.Parse("go sw", o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Direction != DirSouthwest {
		t.Fatalf("abbreviation direction = %q, want %q", cmd.Direction, DirSouthwest)
	}
}
