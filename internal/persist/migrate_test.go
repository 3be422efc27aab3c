package persist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSourceURLPointsAtDBMigrationsUnderCWD(t *testing.T) {
	m, err := NewMigrator("postgres://example")
	if err != nil {
		t.Fatalf("NewMigrator: %v", err)
	}
	src, err := m.sourceURL()
	if err != nil {
		t.Fatalf("sourceURL: %v", err)
	}
	if !strings.HasPrefix(src, "file://") {
		t.Fatalf("sourceURL = %q, want a file:// URL", src)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	want := filepath.Join(wd, "db", "migrations")
	if !strings.HasSuffix(src, want) {
		t.Fatalf("sourceURL = %q, want suffix %q", src, want)
	}
}

func TestNewMigratorRejectsEmptyDSN(t *testing.T) {
	if _, err := NewMigrator(""); err == nil {
		t.Fatalf("expected an error for an empty DSN")
	}
}
