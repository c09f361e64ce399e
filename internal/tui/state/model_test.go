package state

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/soundboard/internal/board"
	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/dropzone"
	"github.com/cristianoliveira/soundboard/internal/favorites"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/playback"
	"github.com/cristianoliveira/soundboard/internal/storage"
	"github.com/cristianoliveira/soundboard/internal/transfer"
	"github.com/stretchr/testify/require"
)

type stubHandle struct {
	id string

	mu     sync.Mutex
	plays  int
	closed bool
}

func (h *stubHandle) ID() string { return h.id }

func (h *stubHandle) Play(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plays++
	return nil
}

func (h *stubHandle) Stop() error { return nil }

func (h *stubHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *stubHandle) Position() float64 { return 0 }

type stubBackend struct {
	mu      sync.Mutex
	handles []*stubHandle
}

func (b *stubBackend) Open(audioRef string, obs playback.Observer) (playback.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := &stubHandle{id: audioRef}
	b.handles = append(b.handles, h)
	return h, nil
}

var (
	air  = domain.Sound{AudioRef: "air.wav", Title: "Air"}
	bell = domain.Sound{AudioRef: "bell.wav", Title: "Bell"}
	car  = domain.Sound{AudioRef: "car.wav", Title: "Car"}
)

func newTestModel(t *testing.T, grid []domain.Sound, favs ...domain.Sound) (*Model, *favorites.Registry, *stubBackend) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, favorites.StorageKey, favs))
	reg := favorites.New(store, favorites.WithLogger(logging.Noop()))
	_, err := reg.Load(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close(ctx) })

	backend := &stubBackend{}
	m := NewModel(ctx, Options{
		Board:    &board.Board{Title: "Test Board", Columns: 4, Sounds: grid},
		Registry: reg,
		Backend:  backend,
		Logger:   logging.Noop(),
	})
	t.Cleanup(m.Shutdown)
	return m, reg, backend
}

func mouse(m *Model, id string, action tea.MouseAction) tea.Cmd {
	m.hit = func(tea.MouseMsg) string { return id }
	button := tea.MouseButtonLeft
	if action == tea.MouseActionRelease {
		button = tea.MouseButtonNone
	}
	_, cmd := m.Update(tea.MouseMsg{Action: action, Button: button})
	return cmd
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func syncFavorites(m *Model, reg *favorites.Registry) {
	m.Update(FavoritesChangedMsg{Favorites: reg.Favorites()})
}

func titles(list []domain.Sound) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Title)
	}
	return out
}

func TestMouseDragButtonToDropzoneAddsFavorite(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{air, bell})

	mouse(m, gridZone(1), tea.MouseActionPress)
	require.Equal(t, dropzone.State{}, m.dropzone.State())

	mouse(m, dropzoneZoneID, tea.MouseActionMotion)
	require.True(t, m.dropzone.State().Targeted)
	require.False(t, m.dropzone.State().Removing)

	mouse(m, dropzoneZoneID, tea.MouseActionRelease)
	require.Equal(t, []string{"Bell"}, titles(reg.Favorites()))
	require.Equal(t, dropzone.State{}, m.dropzone.State())
	require.Nil(t, m.drag)
}

func TestMouseDragFavoriteOutRemovesIt(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{air}, air, bell)

	mouse(m, favoriteZone(0), tea.MouseActionPress)
	mouse(m, dropzoneZoneID, tea.MouseActionMotion)
	require.True(t, m.dropzone.State().Removing)
	require.True(t, m.dropzone.State().Targeted)

	mouse(m, dropzoneZoneID, tea.MouseActionRelease)
	require.Equal(t, []string{"Bell"}, titles(reg.Favorites()))
	require.Equal(t, dropzone.State{}, m.dropzone.State())
}

func TestMouseDropButtonOnFavoriteReplaces(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{car}, air, bell)

	mouse(m, gridZone(0), tea.MouseActionPress)
	mouse(m, favoriteZone(0), tea.MouseActionMotion)
	mouse(m, favoriteZone(0), tea.MouseActionRelease)

	require.Equal(t, []string{"Car", "Bell"}, titles(reg.Favorites()))
}

func TestMouseDropFavoritedButtonOnFavoriteReorders(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{car}, air, bell, car)

	mouse(m, gridZone(0), tea.MouseActionPress)
	mouse(m, favoriteZone(0), tea.MouseActionMotion)
	mouse(m, favoriteZone(0), tea.MouseActionRelease)

	require.Equal(t, []string{"Car", "Air", "Bell"}, titles(reg.Favorites()))
}

func TestMouseReleaseOutsideEndsDrag(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{air}, bell)

	mouse(m, favoriteZone(0), tea.MouseActionPress)
	mouse(m, dropzoneZoneID, tea.MouseActionMotion)
	mouse(m, "", tea.MouseActionMotion)
	require.False(t, m.dropzone.State().Targeted)
	require.True(t, m.dropzone.State().Removing)

	mouse(m, "", tea.MouseActionRelease)
	require.Equal(t, dropzone.State{}, m.dropzone.State())
	require.Equal(t, []string{"Bell"}, titles(reg.Favorites()))
}

func TestMouseDragBackToOriginCancels(t *testing.T) {
	m, reg, backend := newTestModel(t, []domain.Sound{air}, bell)

	mouse(m, gridZone(0), tea.MouseActionPress)
	mouse(m, dropzoneZoneID, tea.MouseActionMotion)
	require.True(t, m.dropzone.State().Targeted)
	mouse(m, gridZone(0), tea.MouseActionMotion)

	cmd := mouse(m, gridZone(0), tea.MouseActionRelease)
	require.Nil(t, cmd)
	require.Nil(t, m.drag)
	require.Equal(t, dropzone.State{}, m.dropzone.State())
	require.Equal(t, []string{"Bell"}, titles(reg.Favorites()))
	require.Empty(t, backend.handles)
}

func TestClickPlaysSound(t *testing.T) {
	m, _, backend := newTestModel(t, []domain.Sound{air})

	mouse(m, gridZone(0), tea.MouseActionPress)
	cmd := mouse(m, gridZone(0), tea.MouseActionRelease)
	require.NotNil(t, cmd)
	require.Nil(t, cmd())

	p := m.players[gridZonePrefix+air.AudioRef]
	require.NotNil(t, p)
	require.Equal(t, playback.StatePlaying, p.State())
	require.Len(t, backend.handles, 1)
	require.Equal(t, 1, backend.handles[0].plays)
	require.Equal(t, dropzone.State{}, m.dropzone.State())
}

func TestGridAndFavoriteHaveSeparatePlayers(t *testing.T) {
	m, _, backend := newTestModel(t, []domain.Sound{air}, air)

	m.activate(gridZone(0))()
	m.activate(favoriteZone(0))()

	require.Len(t, m.players, 2)
	require.Len(t, backend.handles, 2)
}

func TestKeyboardFavoriteAndRemove(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{air, bell})

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	press(m, runeKey("f"))
	require.Equal(t, []string{"Bell"}, titles(reg.Favorites()))
	require.Contains(t, m.status, "Bell: added")

	syncFavorites(m, reg)
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, focus{section: sectionFavorites}, m.focus)
	press(m, runeKey("x"))
	require.Empty(t, reg.Favorites())
	require.Equal(t, dropzone.State{}, m.dropzone.State())
}

func TestKeyboardGrabAndDrop(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{air})

	press(m, runeKey("g"))
	require.NotNil(t, m.drag)
	require.False(t, m.dropzone.State().Targeted)

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, sectionDropzone, m.focus.section)
	require.True(t, m.dropzone.State().Targeted)

	press(m, runeKey("g"))
	require.Nil(t, m.drag)
	require.Equal(t, []string{"Air"}, titles(reg.Favorites()))
	require.Equal(t, dropzone.State{}, m.dropzone.State())
}

func TestEscCancelsDrag(t *testing.T) {
	m, reg, _ := newTestModel(t, []domain.Sound{air}, bell)

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, runeKey("g"))
	require.True(t, m.dropzone.State().Removing)

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, m.drag)
	require.Equal(t, dropzone.State{}, m.dropzone.State())
	require.Equal(t, []string{"Bell"}, titles(reg.Favorites()))
}

func TestSnapshotDetachesRemovedFavoritePlayers(t *testing.T) {
	m, reg, backend := newTestModel(t, nil, air, bell)

	m.activate(favoriteZone(0))()
	require.Contains(t, m.players, favoriteZonePrefix+air.AudioRef)

	require.True(t, reg.Remove(air.AudioRef))
	syncFavorites(m, reg)

	require.NotContains(t, m.players, favoriteZonePrefix+air.AudioRef)
	require.True(t, backend.handles[0].closed)
	require.Equal(t, []string{"Bell"}, titles(m.Favorites()))
}

func TestBoardReloadDetachesRemovedButtons(t *testing.T) {
	m, _, backend := newTestModel(t, []domain.Sound{air, bell})
	m.focus = focus{section: sectionGrid, index: 1}
	m.activate(gridZone(0))()

	m.Update(BoardLoadedMsg{Board: &board.Board{Columns: 4, Sounds: []domain.Sound{bell}}})

	require.Empty(t, m.players)
	require.True(t, backend.handles[0].closed)
	require.Equal(t, 0, m.focus.index)
	require.Equal(t, "board reloaded", m.status)
}

func TestBoardReloadErrorKeepsBoard(t *testing.T) {
	m, _, _ := newTestModel(t, []domain.Sound{air})

	m.Update(BoardLoadedMsg{Err: os.ErrNotExist})
	require.Len(t, m.board.Sounds, 1)
	require.Contains(t, m.status, "board reload failed")
}

func writeWAV(t *testing.T, path string) {
	t.Helper()
	data := make([]byte, 44)
	copy(data[0:], "RIFF")
	binary.LittleEndian.PutUint32(data[4:], 36)
	copy(data[8:], "WAVEfmt ")
	binary.LittleEndian.PutUint32(data[16:], 16)
	copy(data[36:], "data")
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestImportAddsFiles(t *testing.T) {
	m, reg, _ := newTestModel(t, nil)
	dir := t.TempDir()
	wav := filepath.Join(dir, "boing.wav")
	writeWAV(t, wav)
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))

	press(m, runeKey("i"))
	require.True(t, m.importing)
	m.input.SetValue(wav + ", " + text + ", " + filepath.Join(dir, "missing.wav"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.False(t, m.importing)
	got := reg.Favorites()
	require.Len(t, got, 1)
	require.Equal(t, "boing.wav", got[0].Title)
	require.Equal(t, transfer.NewFileEmoji, got[0].Emoji)
	require.True(t, strings.HasPrefix(got[0].AudioRef, "data:audio/wav;base64,"))
	require.Contains(t, m.status, "imported 1 of 3")
	require.Contains(t, m.status, "missing.wav")
}

func TestImportEscapeCancels(t *testing.T) {
	m, reg, _ := newTestModel(t, nil)

	press(m, runeKey("i"))
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.importing)
	require.Empty(t, reg.Favorites())
}

func TestViewShowsSections(t *testing.T) {
	m, _, _ := newTestModel(t, []domain.Sound{air}, bell)

	view := m.View()
	require.Contains(t, view, "Test Board")
	require.Contains(t, view, "Air")
	require.Contains(t, view, "Bell")
	require.Contains(t, view, "Favorites")
	require.Contains(t, view, "Add")
}

func TestMinimalHidesFavorites(t *testing.T) {
	m, _, _ := newTestModel(t, []domain.Sound{air}, bell)
	m.minimal = true

	view := m.View()
	require.NotContains(t, view, "Bell")

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, sectionDropzone, m.focus.section)
}

func TestQuitDetachesPlayers(t *testing.T) {
	m, _, backend := newTestModel(t, []domain.Sound{air})
	m.activate(gridZone(0))()

	cmd := press(m, runeKey("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.Empty(t, m.players)
	require.True(t, backend.handles[0].closed)
}

func TestParseZone(t *testing.T) {
	sec, i, ok := parseZone(favoriteZone(3))
	require.True(t, ok)
	require.Equal(t, sectionFavorites, sec)
	require.Equal(t, 3, i)

	_, _, ok = parseZone("grid:x")
	require.False(t, ok)
	_, _, ok = parseZone("")
	require.False(t, ok)
}
