package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "soundboard.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s, dbPath
}

func TestGetMissingKey(t *testing.T) {
	s, _ := newTestStore(t)

	value, found, err := s.Get(context.Background(), "soundboard-favorites")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, value)
}

func TestSetThenGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	sounds := []domain.Sound{
		{AudioRef: "a.mp3", Title: "A", Emoji: "🎺"},
		{AudioRef: "b.mp3", Title: "B", Repeatable: true},
	}

	require.NoError(t, s.Set(ctx, "soundboard-favorites", sounds))
	got, found, err := s.Get(ctx, "soundboard-favorites")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, sounds, got)

	require.NoError(t, s.Set(ctx, "soundboard-favorites", sounds[1:]))
	got, _, err = s.Get(ctx, "soundboard-favorites")
	require.NoError(t, err)
	require.Equal(t, sounds[1:], got)
}

func TestEmptyListIsFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", nil))
	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, got)
}

func TestValuesSurviveReopen(t *testing.T) {
	s, dbPath := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []domain.Sound{{AudioRef: "a.mp3", Title: "A"}}))

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a.mp3", got[0].AudioRef)
}

func TestEmptyKeyRejected(t *testing.T) {
	s, _ := newTestStore(t)

	_, _, err := s.Get(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyKey)
	require.ErrorIs(t, s.Set(context.Background(), "", nil), ErrEmptyKey)
}

func TestNewStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewStore("  ")
	require.Error(t, err)
}
