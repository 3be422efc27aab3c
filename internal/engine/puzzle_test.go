package engine

import "testing"

func TestPuzzleOrderIsSortedAndStable(t *testing.T) {
	w := &WorldPackage{
		Puzzles: map[string]Puzzle{
			"zeta":  {ID: "zeta"},
			"alpha": {ID: "alpha"},
			"mu":    {ID: "mu"},
		},
	}
	want := []string{"alpha", "mu", "zeta"}
	for i := 0; i < 5; i++ {
		got := w.PuzzleOrder()
		if len(got) != len(want) {
			t.Fatalf("run %d: got %v, want %v", i, got, want)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("run %d: got %v, want %v", i, got, want)
			}
		}
	}
}

func TestMatchingPuzzlePicksLowestIDOnAmbiguousTrigger(t *testing.T) {
	trigger := &Trigger{Verb: VerbTurn, DirectObject: "valve"}
	w := &WorldPackage{
		Objects: map[string]Object{"valve": {ID: "valve", Turnable: true, TurnPositions: []string{"open"}}},
		Puzzles: map[string]Puzzle{
			"z_puzzle": {ID: "z_puzzle", Trigger: trigger},
			"a_puzzle": {ID: "a_puzzle", Trigger: trigger},
		},
	}
	e := &Engine{world: w}
	cmd := Command{Verb: VerbTurn, DirectObject: "valve"}

	id, ok := e.matchingPuzzle(cmd)
	if !ok || id != "a_puzzle" {
		t.Fatalf("matchingPuzzle = (%q, %v), want (\"a_puzzle\", true)", id, ok)
	}
}

func TestAttemptPuzzleUsesIndirectObjectSolution(t *testing.T) {
	w := &WorldPackage{
		Items:   map[string]Item{"repair_kit": {ID: "repair_kit"}},
		Objects: map[string]Object{"manifold": {ID: "manifold"}},
		Puzzles: map[string]Puzzle{
			"patch": {
				ID:             "patch",
				Solution:       "use repair_kit on manifold",
				Points:         15,
				SuccessMessage: "patched",
				FailureMessage: "nothing happens yet",
			},
		},
	}
	o := NewOverlay(w)
	e := &Engine{world: w, overlay: o}

	cmd := Command{Verb: VerbUse, DirectObject: "repair_kit", Preposition: "on", IndirectObject: "manifold"}
	res, err := e.AttemptPuzzle("patch", cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "patched" {
		t.Fatalf("message = %q, want %q", res.Message, "patched")
	}
	if o.Progression.Score != 15 {
		t.Fatalf("score = %d, want 15", o.Progression.Score)
	}
	if !o.Puzzles["patch"].Solved {
		t.Fatalf("puzzle should be marked solved")
	}
}
