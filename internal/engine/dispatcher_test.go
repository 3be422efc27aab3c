package engine

import (
	"strings"
	"testing"
)

func minimalWorld() *WorldPackage {
	w := &WorldPackage{
		StartRoomID: "r1",
		MaxWeight:   10,
		MaxSize:     10,
		MaxItems:    2,
		Rooms: map[string]Room{
			"r1": {
				ID:          "r1",
				Name:        "Corridor",
				Description: "A narrow corridor.",
				ObjectIDs:   []string{"panel"},
				ItemIDs:     []string{"wrench"},
				NPCIDs:      []string{"mara"},
				Exits: map[Direction]Exit{
					DirNorth: {TargetRoomID: "r2", Enabled: true},
				},
			},
			"r2": {
				ID:          "r2",
				Name:        "Bridge",
				Description: "The ship's bridge.",
			},
		},
		Objects: map[string]Object{
			"panel": {ID: "panel", Name: "panel", Description: "A control panel.", HiddenDetails: "A serial number is scratched into the corner: 4471."},
		},
		Items: map[string]Item{
			"wrench": {ID: "wrench", Name: "wrench", Description: "A heavy wrench.", Weight: 3, Size: 3},
			"bolt":   {ID: "bolt", Name: "bolt", Description: "A small bolt.", Weight: 1, Size: 1},
		},
		NPCs: map[string]NPC{
			"mara": {ID: "mara", Name: "Mara", Description: "An engineer.", HomeRoomID: "r1"},
		},
	}
	return w
}

func TestDoLookIncludesNameDescriptionVisibleEntitiesAndExits(t *testing.T) {
	w := minimalWorld()
	o := NewOverlay(w)
	e := &Engine{world: w, overlay: o}

	res, err := e.doLook()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Corridor", "A narrow corridor.", "panel", "wrench", "Mara", "Exits: north"} {
		if !strings.Contains(res.Message, want) {
			t.Fatalf("look message %q missing %q", res.Message, want)
		}
	}
}

func TestDoGoDescribesDestinationRoom(t *testing.T) {
	w := minimalWorld()
	o := NewOverlay(w)
	e := &Engine{world: w, overlay: o}

	res, err := e.doGo(Command{Verb: VerbGo, Direction: DirNorth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Message, "Bridge") || !strings.Contains(res.Message, "The ship's bridge.") {
		t.Fatalf("go message %q missing destination name/description", res.Message)
	}
	if o.CurrentRoomID != "r2" {
		t.Fatalf("current room = %q, want r2", o.CurrentRoomID)
	}
}

func TestDoExamineRevealsHiddenDetails(t *testing.T) {
	w := minimalWorld()
	o := NewOverlay(w)
	e := &Engine{world: w, overlay: o}

	res, err := e.doExamine(Command{Verb: VerbExamine, DirectObject: "panel", DirectObjectKind: KindObject})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Message, "A control panel.") || !strings.Contains(res.Message, "4471") {
		t.Fatalf("examine message %q missing description or hidden details", res.Message)
	}
}

func TestDoTakeRejectsOverWeightCap(t *testing.T) {
	w := minimalWorld()
	w.MaxWeight = 2 // wrench weighs 3
	o := NewOverlay(w)
	e := &Engine{world: w, overlay: o}

	_, err := e.doTake(Command{Verb: VerbTake, DirectObject: "wrench", DirectObjectKind: KindItem})
	derr, ok := err.(*DispatchError)
	if !ok || derr.Kind != DispatchCapacityExceeded {
		t.Fatalf("err = %v, want DispatchCapacityExceeded", err)
	}
}

func TestDoTakeRejectsOverSizeCap(t *testing.T) {
	w := minimalWorld()
	w.MaxWeight = 100
	w.MaxSize = 2 // wrench is size 3
	o := NewOverlay(w)
	e := &Engine{world: w, overlay: o}

	_, err := e.doTake(Command{Verb: VerbTake, DirectObject: "wrench", DirectObjectKind: KindItem})
	derr, ok := err.(*DispatchError)
	if !ok || derr.Kind != DispatchCapacityExceeded {
		t.Fatalf("err = %v, want DispatchCapacityExceeded", err)
	}
}

func TestDoTakeRejectsOverItemCountCap(t *testing.T) {
	w := minimalWorld()
	w.MaxWeight = 100
	w.MaxSize = 100
	w.MaxItems = 1
	o := NewOverlay(w)
	o.AddItem("bolt", 1)
	e := &Engine{world: w, overlay: o}

	_, err := e.doTake(Command{Verb: VerbTake, DirectObject: "wrench", DirectObjectKind: KindItem})
	derr, ok := err.(*DispatchError)
	if !ok || derr.Kind != DispatchCapacityExceeded {
		t.Fatalf("err = %v, want DispatchCapacityExceeded", err)
	}
}

func TestDoTakeSucceedsWithinAllCaps(t *testing.T) {
	w := minimalWorld()
	o := NewOverlay(w)
	e := &Engine{world: w, overlay: o}

	res, err := e.doTake(Command{Verb: VerbTake, DirectObject: "wrench", DirectObjectKind: KindItem})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.HasItem("wrench") {
		t.Fatalf("wrench should be in inventory after take")
	}
	if res.Message == "" {
		t.Fatalf("expected a confirmation message")
	}
}
