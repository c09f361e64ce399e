/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/cristianoliveira/soundboard/cmd"
	"github.com/cristianoliveira/soundboard/internal/board"
	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/cristianoliveira/soundboard/internal/playback"
	"github.com/spf13/cobra"
)

const progressBarWidth = 40

type playClient interface {
	LoadBoard(path string) (*board.Board, error)
	NewBackend() (playback.Backend, error)
}

// NewPlayCmd creates the play command with explicit dependencies.
func NewPlayCmd(client playClient) *cobra.Command {
	if client == nil {
		panic("NewPlayCmd: client dependency cannot be nil")
	}

	var boardFlag string
	var quietFlag bool

	playCmd := &cobra.Command{
		Use:   "play <sound>",
		Short: "Play one sound and wait for it to finish",
		Long: `soundboard play - Play one sound and wait for it to finish

USAGE:
    soundboard play [OPTIONS] <sound>

<sound> is a title or audio reference from the board, or any audio
reference the player understands. Ctrl-C stops playback.

OPTIONS:
    --board <path>   Board file (default: board_file config)
    --quiet          Do not draw the progress bar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			path := boardFlag
			if path == "" {
				path = config.Get("board_file", "")
			}
			if path != "" {
				if b, err := client.LoadBoard(path); err == nil {
					if s, ok := b.Find(ref); ok {
						ref = s.AudioRef
					}
				}
			}

			backend, err := client.NewBackend()
			if err != nil {
				return fmt.Errorf("play: %w", err)
			}
			defer closeBackend(backend)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var out io.Writer
			if !quietFlag {
				out = cmd.ErrOrStderr()
			}
			return playToEnd(ctx, backend, ref, out)
		},
	}

	playCmd.Flags().StringVar(&boardFlag, "board", "", "Board file used to resolve titles")
	playCmd.Flags().BoolVar(&quietFlag, "quiet", false, "Do not draw the progress bar")
	return playCmd
}

// playToEnd plays ref once and blocks until it ends or ctx is done. Progress
// is drawn to out when it is not nil.
func playToEnd(ctx context.Context, backend playback.Backend, ref string, out io.Writer) error {
	done := make(chan struct{})
	var once sync.Once
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth))

	ctrl := playback.NewController(backend, ref,
		playback.WithProgressFunc(func(percent float64) {
			select {
			case <-done:
				return
			default:
			}
			if out != nil {
				fmt.Fprintf(out, "\r%s", bar.ViewAs(percent/100))
			}
			if percent >= 100 {
				once.Do(func() { close(done) })
			}
		}),
	)
	defer ctrl.Detach()

	if err := ctrl.Activate(ctx); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	if out != nil {
		fmt.Fprintln(out)
	}
	return nil
}

// playCmd represents the play command.
var playCmd = NewPlayCmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(playCmd)
}
