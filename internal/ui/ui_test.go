package ui

import "testing"

func TestApplyThemeSetsStylesForKnownName(t *testing.T) {
	m := model{}
	m.applyTheme("dracula")
	if m.themeName != "dracula" {
		t.Fatalf("themeName = %q, want dracula", m.themeName)
	}
	if m.styles.title.GetForeground() == nil {
		t.Fatalf("expected title style to have a foreground color set")
	}
}

func TestApplyThemeFallsBackForUnknownName(t *testing.T) {
	m := model{}
	m.applyTheme("not-a-real-theme")
	if m.themeName != "not-a-real-theme" {
		t.Fatalf("themeName should still be recorded even when falling back, got %q", m.themeName)
	}
	if m.palette != paletteFor("catppuccin") {
		t.Fatalf("expected unknown theme to fall back to catppuccin palette")
	}
}

func TestPushLineTrimsBlankAndCapsHistory(t *testing.T) {
	m := model{}
	m.pushLine("")
	if len(m.transcript) != 0 {
		t.Fatalf("blank line should not be appended, got %d entries", len(m.transcript))
	}
	for i := 0; i < 600; i++ {
		m.pushLine("line")
	}
	if len(m.transcript) != 500 {
		t.Fatalf("transcript should be capped at 500 lines, got %d", len(m.transcript))
	}
}
