/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cristianoliveira/soundboard/cmd"
	"github.com/cristianoliveira/soundboard/internal/colors"
	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/dropzone"
	"github.com/cristianoliveira/soundboard/internal/favorites"
	"github.com/cristianoliveira/soundboard/internal/format"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/transfer"
	"github.com/spf13/cobra"
)

type favoritesClient interface {
	OpenFavorites(ctx context.Context, exclude []string) (*favorites.Registry, func() error, error)
}

// NewFavoritesCmd creates the favorites command tree with explicit dependencies.
func NewFavoritesCmd(client favoritesClient) *cobra.Command {
	if client == nil {
		panic("NewFavoritesCmd: client dependency cannot be nil")
	}

	favoritesCmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite sounds",
		Long: `soundboard favorites - Manage the persisted favorites list

USAGE:
    soundboard favorites <COMMAND> [OPTIONS]

COMMANDS:
    list                          Show favorites in order
    add <audio> <title>           Append a favorite
    remove <audio>                Remove a favorite
    move <from> <to>              Move a favorite to another favorite's slot
    replace <target> <audio> <title>
                                  Overwrite a favorite with another sound
    import <file>...              Add audio files as embedded favorites
    drop [--on <target>] <payload>
                                  Apply a drag payload ("-" reads stdin)

References listed in the "removed" config key are hidden on every load.`,
	}

	favoritesCmd.AddCommand(
		newFavoritesListCmd(client),
		newFavoritesAddCmd(client),
		newFavoritesRemoveCmd(client),
		newFavoritesMoveCmd(client),
		newFavoritesReplaceCmd(client),
		newFavoritesImportCmd(client),
		newFavoritesDropCmd(client),
	)
	return favoritesCmd
}

// withRegistry opens the registry, runs fn and flushes every change before returning.
func withRegistry(ctx context.Context, client favoritesClient, fn func(reg *favorites.Registry) error) error {
	reg, closeFn, err := client.OpenFavorites(ctx, config.GetList("removed"))
	if err != nil {
		return err
	}
	runErr := fn(reg)
	if err := reg.Flush(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("save favorites: %w", err)
	}
	if err := closeFn(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close favorites: %w", err)
	}
	return runErr
}

func newFavoritesListCmd(client favoritesClient) *cobra.Command {
	var formatFlag string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show favorites in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), client, func(reg *favorites.Registry) error {
				return format.NewFormatter(format.FormatterType(formatFlag)).FormatSounds(reg.Favorites(), cmd.OutOrStdout())
			})
		},
	}
	listCmd.Flags().StringVar(&formatFlag, "format", string(format.FormatterTypeSimple), "Output format: simple, table, json, yaml")
	return listCmd
}

func soundFlags(c *cobra.Command, emoji *string, repeatable *bool) {
	c.Flags().StringVar(emoji, "emoji", "", "Emoji shown next to the title")
	c.Flags().BoolVar(repeatable, "repeatable", false, "Let activations overlap instead of toggling")
}

func newFavoritesAddCmd(client favoritesClient) *cobra.Command {
	var emojiFlag string
	var repeatableFlag bool
	var updateFlag bool

	addCmd := &cobra.Command{
		Use:   "add <audio> <title>",
		Short: "Append a favorite",
		Long: `Append a favorite. A sound that is already a favorite is left alone
unless --update is given, which overwrites it in place.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := domain.Sound{AudioRef: args[0], Title: args[1], Emoji: emojiFlag, Repeatable: repeatableFlag}
			if err := s.Validate(); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			return withRegistry(cmd.Context(), client, func(reg *favorites.Registry) error {
				if updateFlag {
					if reg.Upsert(s) {
						colors.Success(fmt.Sprintf("saved %s", s.Title))
					} else {
						colors.Info(fmt.Sprintf("%s is unchanged", s.Title))
					}
					return nil
				}
				if !reg.Add(s) {
					colors.Info(fmt.Sprintf("%s is already a favorite", s.AudioRef))
					return nil
				}
				colors.Success(fmt.Sprintf("added %s", s.Title))
				return nil
			})
		},
	}
	soundFlags(addCmd, &emojiFlag, &repeatableFlag)
	addCmd.Flags().BoolVar(&updateFlag, "update", false, "Overwrite an existing favorite with the same audio")
	return addCmd
}

func newFavoritesRemoveCmd(client favoritesClient) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <audio>",
		Short: "Remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), client, func(reg *favorites.Registry) error {
				if !reg.Remove(args[0]) {
					return fmt.Errorf("remove: %s: %w", args[0], domain.ErrSoundNotFound)
				}
				colors.Success(fmt.Sprintf("removed %s", args[0]))
				return nil
			})
		},
	}
}

func newFavoritesMoveCmd(client favoritesClient) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a favorite to another favorite's slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), client, func(reg *favorites.Registry) error {
				for _, ref := range args {
					if !reg.Contains(ref) {
						return fmt.Errorf("move: %s: %w", ref, domain.ErrSoundNotFound)
					}
				}
				if !reg.Move(args[0], args[1]) {
					colors.Info("nothing to move")
					return nil
				}
				colors.Success(fmt.Sprintf("moved %s", args[0]))
				return nil
			})
		},
	}
}

func newFavoritesReplaceCmd(client favoritesClient) *cobra.Command {
	var emojiFlag string
	var repeatableFlag bool

	replaceCmd := &cobra.Command{
		Use:   "replace <target> <audio> <title>",
		Short: "Overwrite a favorite with another sound",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := domain.Sound{AudioRef: args[1], Title: args[2], Emoji: emojiFlag, Repeatable: repeatableFlag}
			if err := s.Validate(); err != nil {
				return fmt.Errorf("replace: %w", err)
			}
			return withRegistry(cmd.Context(), client, func(reg *favorites.Registry) error {
				if !reg.Contains(args[0]) {
					return fmt.Errorf("replace: %s: %w", args[0], domain.ErrSoundNotFound)
				}
				if !reg.ReplaceAt(args[0], s) {
					colors.Info(fmt.Sprintf("%s not replaced", args[0]))
					return nil
				}
				colors.Success(fmt.Sprintf("replaced %s with %s", args[0], s.Title))
				return nil
			})
		},
	}
	soundFlags(replaceCmd, &emojiFlag, &repeatableFlag)
	return replaceCmd
}

func newFavoritesImportCmd(client favoritesClient) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Add audio files as embedded favorites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]transfer.File, 0, len(args))
			for _, path := range args {
				f, err := transfer.ReadFile(path)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				if !transfer.IsAudio(f) {
					colors.Warning(fmt.Sprintf("skipping %s: not an audio file (%s)", f.Name, f.MIMEType))
				}
				files = append(files, f)
			}
			return withRegistry(cmd.Context(), client, func(reg *favorites.Registry) error {
				zone := dropzone.New(reg, logging.GetGlobal())
				reportOutcomes(zone.SelectFiles(cmd.Context(), files))
				return nil
			})
		},
	}
}

func newFavoritesDropCmd(client favoritesClient) *cobra.Command {
	var onFlag string

	dropCmd := &cobra.Command{
		Use:   "drop [--on <target>] <payload>",
		Short: `Apply a drag payload ("-" reads stdin)`,
		Long: `Apply a drag payload as if it were dropped on the board.

Without --on the payload lands on the drop zone: a payload carrying
removeFromFavorites removes its sound, anything else is added or updated.
With --on the payload lands on that favorite: it replaces it or, when the
sound is already a favorite, moves it there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if p, ok := transfer.Decode(text); !ok || !p.Valid() {
				return fmt.Errorf("drop: payload is not a valid sound record")
			}
			return withRegistry(cmd.Context(), client, func(reg *favorites.Registry) error {
				zone := dropzone.New(reg, logging.GetGlobal())
				data := dropzone.DragData{Text: text}
				if onFlag != "" {
					reportOutcomes([]favorites.Outcome{zone.DropOnFavorite(onFlag, data)})
					return nil
				}
				reportOutcomes(zone.Drop(cmd.Context(), data))
				return nil
			})
		},
	}
	dropCmd.Flags().StringVar(&onFlag, "on", "", "Audio reference of the favorite to drop onto")
	return dropCmd
}

func readPayload(stdin io.Reader, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("drop: read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func reportOutcomes(outcomes []favorites.Outcome) {
	if len(outcomes) == 0 {
		colors.Info("nothing to do")
		return
	}
	for _, o := range outcomes {
		if o.Changed() {
			colors.Success(o.String())
		} else {
			colors.Info(o.String())
		}
	}
}

// favoritesCmd represents the favorites command.
var favoritesCmd = NewFavoritesCmd(appClient)

func init() {
	cmd.RootCmd.AddCommand(favoritesCmd)
}
