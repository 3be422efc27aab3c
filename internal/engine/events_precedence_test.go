package engine

import (
	"testing"

	"go.uber.org/zap"
)

// fakeOracle records whether it was ever consulted, so tests can assert
// scripted events pre-empted it.
type fakeOracle struct {
	called bool
	reply  OracleReply
}

func (f *fakeOracle) ProcessCommand(command string, _ SaveSnapshot) (OracleReply, error) {
	f.called = true
	return f.reply, nil
}

func newTestEngine(w *WorldPackage, oracle Oracle) *Engine {
	o := NewOverlay(w)
	arbiter := NewEventArbiter(w, oracle, nil, zap.NewNop())
	return &Engine{
		world:   w,
		overlay: o,
		parser:  NewParser(w),
		arbiter: arbiter,
		log:     zap.NewNop(),
		events:  NewEventBus(),
	}
}

// A scripted event matching the command must win over the Oracle: the
// Oracle must never even be consulted once a scripted event claims it.
func TestScriptedEventPreemptsOracle(t *testing.T) {
	w := &WorldPackage{
		StartRoomID: "r1",
		Rooms: map[string]Room{
			"r1": {
				ID: "r1", Name: "Corridor",
				Events: []Event{
					{
						ID:      "examine_panel",
						Trigger: &Trigger{Verb: VerbExamine, DirectObject: "panel"},
						Actions: []Action{{Kind: ActionShowMessage, Text: "Scripted: the panel hums."}},
					},
				},
				ObjectIDs: []string{"panel"},
			},
		},
		Objects: map[string]Object{
			"panel": {ID: "panel", Name: "panel", Description: "A panel."},
		},
	}
	oracle := &fakeOracle{reply: OracleReply{Text: "oracle text"}}
	e := newTestEngine(w, oracle)

	res, err := e.submit("examine panel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "Scripted: the panel hums." {
		t.Fatalf("message = %q, want the scripted event's text", res.Message)
	}
	if oracle.called {
		t.Fatalf("oracle should not have been consulted once a scripted event matched")
	}
}

// An event gated on a flag the dispatcher itself just set (here, touching
// the manifold arms an alarm flag via its TouchEffects) must still fire in
// the same turn: the pre-dispatch pass sees the flag unset and declines,
// but the post-dispatch pass re-checks after the verb handler ran and
// picks it up.
func TestPostDispatchEventFiresAfterDispatcherChangesState(t *testing.T) {
	w := &WorldPackage{
		StartRoomID: "r1",
		Rooms: map[string]Room{
			"r1": {
				ID: "r1", Name: "Corridor",
				ObjectIDs: []string{"manifold"},
				Events: []Event{
					{
						ID:        "alarm",
						Trigger:   &Trigger{Verb: VerbTouch, DirectObject: "manifold"},
						Condition: "alarm_armed",
						Actions:   []Action{{Kind: ActionShowMessage, Text: "An alarm blares."}},
					},
				},
			},
		},
		Objects: map[string]Object{
			"manifold": {
				ID: "manifold", Name: "manifold", Turnable: false,
				TouchEffects: []TouchEffect{{Kind: TouchSetFlag, Flag: "alarm_armed", FlagValue: true}},
			},
		},
	}
	e := newTestEngine(w, NullOracle{})

	res, err := e.submit("touch manifold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.overlay.Flags.Bool("alarm_armed") {
		t.Fatalf("alarm_armed flag should have been set by touch")
	}
	if res.Message != "An alarm blares." {
		t.Fatalf("message = %q, want the post-dispatch event's text", res.Message)
	}
}
