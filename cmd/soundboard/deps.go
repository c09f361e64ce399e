package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cristianoliveira/soundboard/internal/board"
	"github.com/cristianoliveira/soundboard/internal/colors"
	"github.com/cristianoliveira/soundboard/internal/favorites"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/playback"
	"github.com/cristianoliveira/soundboard/internal/storage"
	"github.com/cristianoliveira/soundboard/internal/tui/app"
	"github.com/cristianoliveira/soundboard/internal/version"
)

// soundboardClient is the production dependency set shared by the commands.
type soundboardClient struct {
	*app.DefaultBackendFactory
}

var appClient = &soundboardClient{DefaultBackendFactory: app.NewDefaultBackendFactory()}

func (c *soundboardClient) Version() string {
	return version.String()
}

// OpenFavorites opens the configured store and loads the registry with
// exclude applied. A store that fails to load still yields an empty,
// usable registry. The returned close func flushes and releases the store.
func (c *soundboardClient) OpenFavorites(ctx context.Context, exclude []string) (*favorites.Registry, func() error, error) {
	store, err := storage.NewFromConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("open favorites store: %w", err)
	}
	reg := favorites.New(store, favorites.WithLogger(logging.GetGlobal()))
	if _, err := reg.Load(ctx, exclude); err != nil {
		colors.Warning(fmt.Sprintf("starting with empty favorites: %v", err))
	}
	closeFn := func() error {
		err := reg.Close(context.Background())
		if cerr := store.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return reg, closeFn, nil
}

// LoadBoard reads the board file at path.
func (c *soundboardClient) LoadBoard(path string) (*board.Board, error) {
	return board.Load(path)
}

// closeBackend releases backends that hold resources.
func closeBackend(b playback.Backend) {
	if closer, ok := b.(io.Closer); ok {
		_ = closer.Close()
	}
}
