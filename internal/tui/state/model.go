package state

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/soundboard/internal/board"
	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/dropzone"
	"github.com/cristianoliveira/soundboard/internal/favorites"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/playback"
	"github.com/cristianoliveira/soundboard/internal/tui/render"
	zone "github.com/lrstanley/bubblezone"
)

const (
	gridZonePrefix     = "grid:"
	favoriteZonePrefix = "fav:"
	dropzoneZoneID     = "dropzone"
	defaultWidth       = 80
	statusClearAfter   = 4 * time.Second
)

type section int

const (
	sectionGrid section = iota
	sectionFavorites
	sectionDropzone
)

type focus struct {
	section section
	index   int
}

// drag is a gesture in progress. Mouse drags start on press and only become
// drags once the pointer leaves the origin; keyboard grabs start immediately.
type drag struct {
	origin  string
	sound   domain.Sound
	data    dropzone.DragData
	started bool
}

// Options holds the model's collaborators.
type Options struct {
	Board        *board.Board
	Registry     *favorites.Registry
	Backend      playback.Backend
	Minimal      bool
	HoldDelay    time.Duration
	BoardUpdates <-chan BoardLoadedMsg
	Logger       logging.Logger
}

// Model represents the TUI model for bubbletea.
type Model struct {
	ctx       context.Context
	board     *board.Board
	registry  *favorites.Registry
	dropzone  *dropzone.Controller
	backend   playback.Backend
	holdDelay time.Duration
	log       logging.Logger
	minimal   bool

	favorites    []domain.Sound
	sub          *favorites.Subscription
	boardUpdates <-chan BoardLoadedMsg

	players  map[string]*playback.Controller
	progress *progressBoard

	focus     focus
	drag      *drag
	importing bool
	input     textinput.Model
	keys      keyMap
	help      help.Model
	status    string
	statusSeq int
	width     int

	// hit resolves the zone under the pointer. Tests replace it.
	hit func(tea.MouseMsg) string
}

// NewModel creates the soundboard model. The registry must already be loaded.
func NewModel(ctx context.Context, opts Options) *Model {
	if zone.DefaultManager == nil {
		zone.NewGlobal()
	}
	log := opts.Logger
	if log == nil {
		log = logging.GetGlobal()
	}
	b := opts.Board
	if b == nil {
		b = &board.Board{Columns: board.DefaultColumns}
	}
	hold := opts.HoldDelay
	if hold <= 0 {
		hold = playback.DefaultHoldDelay
	}

	input := textinput.New()
	input.Placeholder = "path/to/clip.wav, other.mp3"
	input.Prompt = "import: "

	m := &Model{
		ctx:          ctx,
		board:        b,
		registry:     opts.Registry,
		dropzone:     dropzone.New(opts.Registry, log),
		backend:      opts.Backend,
		holdDelay:    hold,
		log:          log.With("component", "tui"),
		minimal:      opts.Minimal,
		boardUpdates: opts.BoardUpdates,
		players:      make(map[string]*playback.Controller),
		progress:     newProgressBoard(),
		input:        input,
		keys:         defaultKeyMap(),
		help:         help.New(),
		width:        defaultWidth,
	}
	m.sub = opts.Registry.Subscribe()
	m.favorites = opts.Registry.Favorites()
	m.hit = m.zoneAt
	return m
}

// Init starts listening for registry snapshots, progress and board reloads.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitForFavorites(m.sub.C),
		waitForProgress(m.progress),
		waitForBoard(m.boardUpdates),
	)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case FavoritesChangedMsg:
		m.applyFavorites(msg.Favorites)
		return m, waitForFavorites(m.sub.C)
	case favoritesClosedMsg:
		return m, nil
	case BoardLoadedMsg:
		if msg.Err != nil {
			return m, m.setStatus(fmt.Sprintf("board reload failed: %v", msg.Err))
		}
		m.applyBoard(msg.Board)
		return m, tea.Batch(waitForBoard(m.boardUpdates), m.setStatus("board reloaded"))
	case progressMsg:
		return m, waitForProgress(m.progress)
	case StatusMsg:
		return m, m.setStatus(msg.Text)
	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	case tea.KeyMsg:
		if m.importing {
			return m.handleImportKey(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	if m.importing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

type clearStatusMsg struct{ seq int }

func (m *Model) setStatus(text string) tea.Cmd {
	m.status = text
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusClearAfter, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

// Favorites returns the snapshot the model renders.
func (m *Model) Favorites() []domain.Sound {
	return domain.Clone(m.favorites)
}

// Shutdown releases every player and stops listening to the registry.
func (m *Model) Shutdown() {
	for key, p := range m.players {
		p.Detach()
		delete(m.players, key)
	}
	m.sub.Close()
}

func (m *Model) applyFavorites(snapshot []domain.Sound) {
	m.favorites = snapshot
	m.prunePlayers(favoriteZonePrefix, snapshot)
	m.clampFocus()
}

func (m *Model) applyBoard(b *board.Board) {
	if b == nil {
		return
	}
	m.board = b
	m.prunePlayers(gridZonePrefix, b.Sounds)
	m.clampFocus()
}

// prunePlayers detaches players whose sound is gone and syncs the repeat
// policy of the rest.
func (m *Model) prunePlayers(prefix string, sounds []domain.Sound) {
	live := make(map[string]domain.Sound, len(sounds))
	for _, s := range sounds {
		live[prefix+s.AudioRef] = s
	}
	for key, p := range m.players {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		s, ok := live[key]
		if !ok {
			p.Detach()
			delete(m.players, key)
			m.progress.forget(key)
			continue
		}
		p.SetRepeatable(s.Repeatable)
	}
}

func (m *Model) player(key string, s domain.Sound) *playback.Controller {
	if p, ok := m.players[key]; ok {
		p.SetRepeatable(s.Repeatable)
		p.SetAudioRef(s.AudioRef)
		return p
	}
	progress := m.progress
	p := playback.NewController(m.backend, s.AudioRef,
		playback.WithRepeatable(s.Repeatable),
		playback.WithHoldDelay(m.holdDelay),
		playback.WithLogger(m.log),
		playback.WithProgressFunc(func(percent float64) { progress.set(key, percent) }),
	)
	m.players[key] = p
	return p
}

// activate plays or stops the sound in zone id.
func (m *Model) activate(id string) tea.Cmd {
	s, ok := m.soundAt(id)
	if !ok {
		if id == dropzoneZoneID {
			return m.startImport()
		}
		return nil
	}
	key := gridZonePrefix + s.AudioRef
	if strings.HasPrefix(id, favoriteZonePrefix) {
		key = favoriteZonePrefix + s.AudioRef
	}
	p := m.player(key, s)
	ctx := m.ctx
	title := s.Title
	return func() tea.Msg {
		if err := p.Activate(ctx); err != nil {
			return StatusMsg{Text: fmt.Sprintf("cannot play %s: %v", title, err)}
		}
		return nil
	}
}

func gridZone(i int) string     { return gridZonePrefix + strconv.Itoa(i) }
func favoriteZone(i int) string { return favoriteZonePrefix + strconv.Itoa(i) }

func parseZone(id string) (section, int, bool) {
	if id == dropzoneZoneID {
		return sectionDropzone, 0, true
	}
	for prefix, sec := range map[string]section{gridZonePrefix: sectionGrid, favoriteZonePrefix: sectionFavorites} {
		if rest, ok := strings.CutPrefix(id, prefix); ok {
			i, err := strconv.Atoi(rest)
			if err != nil {
				return 0, 0, false
			}
			return sec, i, true
		}
	}
	return 0, 0, false
}

func (m *Model) soundAt(id string) (domain.Sound, bool) {
	sec, i, ok := parseZone(id)
	if !ok {
		return domain.Sound{}, false
	}
	switch sec {
	case sectionGrid:
		if i >= 0 && i < len(m.board.Sounds) {
			return m.board.Sounds[i], true
		}
	case sectionFavorites:
		if i >= 0 && i < len(m.favorites) {
			return m.favorites[i], true
		}
	}
	return domain.Sound{}, false
}

func (m *Model) focusedZone() string {
	switch m.focus.section {
	case sectionGrid:
		return gridZone(m.focus.index)
	case sectionFavorites:
		return favoriteZone(m.focus.index)
	default:
		return dropzoneZoneID
	}
}

func (m *Model) sectionLen(sec section) int {
	switch sec {
	case sectionGrid:
		return len(m.board.Sounds)
	case sectionFavorites:
		if m.minimal {
			return 0
		}
		return len(m.favorites)
	default:
		return 1
	}
}

func (m *Model) clampFocus() {
	if n := m.sectionLen(m.focus.section); n == 0 {
		m.focus = focus{section: sectionDropzone}
	} else if m.focus.index >= n {
		m.focus.index = n - 1
	}
}

func (m *Model) zoneAt(msg tea.MouseMsg) string {
	ids := []string{dropzoneZoneID}
	for i := range m.board.Sounds {
		ids = append(ids, gridZone(i))
	}
	if !m.minimal {
		for i := range m.favorites {
			ids = append(ids, favoriteZone(i))
		}
	}
	for _, id := range ids {
		if z := zone.Get(id); z != nil && z.InBounds(msg) {
			return id
		}
	}
	return ""
}

// View renders the model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(render.Title(m.board.Title))
	b.WriteString("\n")

	b.WriteString(render.Count("Sounds", len(m.board.Sounds)))
	b.WriteString("\n")
	if len(m.board.Sounds) == 0 {
		b.WriteString(render.Empty("no sounds on this board"))
	} else {
		b.WriteString(render.Grid(m.buttons(gridZonePrefix, m.board.Sounds, sectionGrid), m.columns()))
	}
	b.WriteString("\n")

	if !m.minimal {
		b.WriteString(render.Count("Favorites", len(m.favorites)))
		b.WriteString("\n")
		if len(m.favorites) > 0 {
			b.WriteString(render.Grid(m.buttons(favoriteZonePrefix, m.favorites, sectionFavorites), m.columns()))
			b.WriteString("\n")
		}
	}

	st := m.dropzone.State()
	b.WriteString(zone.Mark(dropzoneZoneID, render.Dropzone(render.DropzoneState{
		Label:    m.dropzone.Label(len(m.favorites) > 0),
		Targeted: st.Targeted,
		Removing: st.Removing,
		Focused:  m.focus.section == sectionDropzone,
		Width:    m.columns() * render.ButtonWidth(),
	})))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(render.Status(m.status))
		b.WriteString("\n")
	}
	if m.importing {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return zone.Scan(b.String())
}

func (m *Model) columns() int {
	cols := m.board.Columns
	if cols <= 0 {
		cols = board.DefaultColumns
	}
	if fit := m.width / (render.ButtonWidth() + 1); fit > 0 && fit < cols {
		cols = fit
	}
	return cols
}

func (m *Model) buttons(prefix string, sounds []domain.Sound, sec section) []string {
	out := make([]string, 0, len(sounds))
	for i, s := range sounds {
		id := prefix + strconv.Itoa(i)
		key := prefix + s.AudioRef
		state := render.ButtonState{
			Label:      s.Label(),
			Progress:   m.progress.get(key),
			Repeatable: s.Repeatable,
			Focused:    m.focus.section == sec && m.focus.index == i,
			Grabbed:    m.drag != nil && m.drag.started && m.drag.origin == id,
		}
		if p, ok := m.players[key]; ok {
			state.Playing = p.State() == playback.StatePlaying
		}
		out = append(out, zone.Mark(id, render.Button(state)))
	}
	return out
}
