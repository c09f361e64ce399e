// Package app provides TUI application adapters for command wiring.
package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/soundboard/internal/playback"
)

// ProgramRunner defines the interface for running a bubbletea program.
type ProgramRunner interface {
	// Run starts the bubbletea program with the given model.
	Run(model tea.Model) error
}

// DefaultProgramRunner wraps tea.NewProgram with the options the board
// needs: the alternate screen and cell motion mouse events for dragging.
type DefaultProgramRunner struct{}

// NewDefaultProgramRunner creates a new DefaultProgramRunner.
func NewDefaultProgramRunner() *DefaultProgramRunner {
	return &DefaultProgramRunner{}
}

// Run starts a bubbletea program with the given model.
func (r *DefaultProgramRunner) Run(model tea.Model) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}

// BackendFactory creates the audio backend used by the board.
type BackendFactory interface {
	// NewBackend returns a playback backend.
	NewBackend() (playback.Backend, error)
}

// DefaultBackendFactory creates external-player backends.
type DefaultBackendFactory struct{}

// NewDefaultBackendFactory creates a new DefaultBackendFactory.
func NewDefaultBackendFactory() *DefaultBackendFactory {
	return &DefaultBackendFactory{}
}

// NewBackend returns a playback.CommandBackend configured from the global config.
func (f *DefaultBackendFactory) NewBackend() (playback.Backend, error) {
	b, err := playback.NewCommandBackend()
	if err != nil {
		return nil, err
	}
	return b, nil
}
