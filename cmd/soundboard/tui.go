/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/cristianoliveira/soundboard/cmd"
	"github.com/cristianoliveira/soundboard/internal/board"
	"github.com/cristianoliveira/soundboard/internal/colors"
	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/cristianoliveira/soundboard/internal/favorites"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/playback"
	"github.com/cristianoliveira/soundboard/internal/tui/app"
	"github.com/cristianoliveira/soundboard/internal/tui/state"
	"github.com/spf13/cobra"
)

type tuiClient interface {
	OpenFavorites(ctx context.Context, exclude []string) (*favorites.Registry, func() error, error)
	LoadBoard(path string) (*board.Board, error)
	NewBackend() (playback.Backend, error)
}

// unavailableBackend keeps the board usable without an audio player; every
// activation reports why nothing plays.
type unavailableBackend struct {
	err error
}

func (b unavailableBackend) Open(string, playback.Observer) (playback.Handle, error) {
	return nil, b.err
}

// NewTUICmd creates the tui command with explicit dependencies.
func NewTUICmd(client tuiClient, runner app.ProgramRunner) *cobra.Command {
	if client == nil {
		panic("NewTUICmd: client dependency cannot be nil")
	}
	if runner == nil {
		panic("NewTUICmd: runner dependency cannot be nil")
	}

	var boardFlag string
	var minimalFlag bool
	var removedFlag []string
	var noWatchFlag bool

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive soundboard",
		Long: `Open the interactive soundboard.

USAGE:
    soundboard tui [OPTIONS]

OPTIONS:
    --board <path>        Board file (default: board_file config)
    --minimal             Hide the favorites list
    --removed <audio>     Hide a favorite for this run (repeatable)
    --no-watch            Do not reload the board when the file changes

KEY BINDINGS:
    arrows/hjkl   Move focus
    enter/space   Play or stop the focused sound
    g             Grab the focused sound, press again on a target to drop
    f             Add the focused sound to favorites
    x             Remove the focused favorite
    i             Import audio files
    esc           Cancel a drag
    q             Quit

Drag buttons with the mouse: drop on the drop zone to add, on a favorite to
replace or reorder it. Dragging a favorite onto the drop zone removes it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := boardFlag
			if path == "" {
				path = config.Get("board_file", "")
			}
			watch := !noWatchFlag
			b, err := client.LoadBoard(path)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				colors.Warning(fmt.Sprintf("no board at %s; only favorites are shown", path))
				b = &board.Board{Columns: board.DefaultColumns}
				watch = false
			case err != nil:
				return fmt.Errorf("tui: %w", err)
			}

			minimal := config.GetBool("minimal", false)
			if cmd.Flags().Changed("minimal") {
				minimal = minimalFlag
			}
			exclude := append(config.GetList("removed"), removedFlag...)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			reg, closeFavorites, err := client.OpenFavorites(ctx, exclude)
			if err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			defer func() {
				if err := closeFavorites(); err != nil {
					colors.Error(fmt.Sprintf("failed to save favorites: %v", err))
				}
			}()

			backend, err := client.NewBackend()
			if err != nil {
				colors.Warning(fmt.Sprintf("playback disabled: %v", err))
				backend = unavailableBackend{err: err}
			}
			defer closeBackend(backend)

			var updates chan state.BoardLoadedMsg
			if watch {
				updates = make(chan state.BoardLoadedMsg)
				go watchBoard(ctx, path, updates)
			}

			model := state.NewModel(ctx, state.Options{
				Board:        b,
				Registry:     reg,
				Backend:      backend,
				Minimal:      minimal,
				HoldDelay:    playback.HoldDelayFromConfig(),
				BoardUpdates: updates,
				Logger:       logging.GetGlobal(),
			})
			defer model.Shutdown()

			colors.SetQuiet(true)
			defer colors.SetQuiet(false)

			if err := runner.Run(model); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}

	tuiCmd.Flags().StringVar(&boardFlag, "board", "", "Board file to show")
	tuiCmd.Flags().BoolVar(&minimalFlag, "minimal", false, "Hide the favorites list")
	tuiCmd.Flags().StringSliceVar(&removedFlag, "removed", nil, "Audio reference to hide from favorites")
	tuiCmd.Flags().BoolVar(&noWatchFlag, "no-watch", false, "Do not reload the board on change")
	return tuiCmd
}

func watchBoard(ctx context.Context, path string, updates chan<- state.BoardLoadedMsg) {
	err := board.Watch(ctx, path, func(b *board.Board, err error) {
		select {
		case updates <- state.BoardLoadedMsg{Board: b, Err: err}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		logging.Warn("board watcher stopped", "path", path, "error", err)
	}
}

// tuiCmd represents the tui command.
var tuiCmd = NewTUICmd(appClient, app.NewDefaultProgramRunner())

func init() {
	cmd.RootCmd.AddCommand(tuiCmd)
}
