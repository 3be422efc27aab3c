package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/DaanHessen/sci-adventure/internal/engine"
	"github.com/DaanHessen/sci-adventure/internal/persist"
	"github.com/DaanHessen/sci-adventure/internal/util"
)

// Run boots the TUI program and blocks until it exits.
func Run(ctx context.Context, eng *engine.Engine, store *persist.Store, profileID uuid.UUID, log util.Logger, version string, startupErr error) error {
	m := initialModel(ctx, eng, store, profileID, log, version, startupErr)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
