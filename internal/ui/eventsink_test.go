package ui

import (
	"testing"

	"github.com/DaanHessen/sci-adventure/internal/engine"
)

func TestHostEventSinkBuffersAcrossModelValueCopies(t *testing.T) {
	sink := &hostEventSink{}

	// Simulate the engine emitting synchronously, as it does inside
	// Engine.Submit/Engine.Tick, before any Update call gets to drain it.
	sink.push(engine.HostEvent{Kind: engine.HostEventAchievementUnlocked, AchievementID: "first_steps"})
	sink.push(engine.HostEvent{Kind: engine.HostEventRelationshipChanged, NPCID: "mara", Relationship: 10})

	// A value copy of model sharing the same *hostEventSink pointer must
	// see the buffered events: this is the whole point of using a pointer
	// field instead of a method bound to one model value.
	m1 := model{events: sink}
	m2 := m1 // bubbletea-style value copy

	got := m2.events.drain()
	if len(got) != 2 {
		t.Fatalf("drained %d events, want 2", len(got))
	}
	if got[0].AchievementID != "first_steps" {
		t.Fatalf("first event AchievementID = %q, want first_steps", got[0].AchievementID)
	}

	// A second drain on either copy must come back empty: draining is
	// destructive and shared through the pointer.
	if rest := m1.events.drain(); rest != nil {
		t.Fatalf("expected second drain to be empty, got %v", rest)
	}
}

func TestHostEventSinkDrainEmptyReturnsNil(t *testing.T) {
	sink := &hostEventSink{}
	if got := sink.drain(); got != nil {
		t.Fatalf("drain on empty sink = %v, want nil", got)
	}
}
