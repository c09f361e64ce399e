package state

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/soundboard/internal/dropzone"
	"github.com/cristianoliveira/soundboard/internal/favorites"
	"github.com/cristianoliveira/soundboard/internal/transfer"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		if m.drag != nil {
			m.cancelDrag()
			return m, m.setStatus("drag cancelled")
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.moveFocusVertical(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocusVertical(1)
	case key.Matches(msg, m.keys.Left):
		m.moveFocusHorizontal(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveFocusHorizontal(1)
	case key.Matches(msg, m.keys.Activate):
		return m, m.activate(m.focusedZone())
	case key.Matches(msg, m.keys.Grab):
		return m, m.grabOrDrop()
	case key.Matches(msg, m.keys.Favorite):
		return m, m.favoriteFocused()
	case key.Matches(msg, m.keys.Remove):
		return m, m.removeFocused()
	case key.Matches(msg, m.keys.Import):
		return m, m.startImport()
	}
	if m.drag != nil {
		m.hover(m.focusedZone())
	}
	return m, nil
}

// moveFocusVertical walks grid rows first, then jumps between sections.
func (m *Model) moveFocusVertical(delta int) {
	if m.focus.section != sectionDropzone {
		next := m.focus.index + delta*m.columns()
		if next >= 0 && next < m.sectionLen(m.focus.section) {
			m.focus.index = next
			return
		}
	}
	sec := m.focus.section
	for {
		sec += section(delta)
		if sec < sectionGrid || sec > sectionDropzone {
			return
		}
		if m.sectionLen(sec) > 0 {
			m.focus = focus{section: sec}
			return
		}
	}
}

func (m *Model) moveFocusHorizontal(delta int) {
	next := m.focus.index + delta
	if next >= 0 && next < m.sectionLen(m.focus.section) {
		m.focus.index = next
	}
}

// startDrag begins a gesture from the button in zone id.
func (m *Model) startDrag(id string) bool {
	s, ok := m.soundAt(id)
	if !ok {
		return false
	}
	var text string
	if strings.HasPrefix(id, favoriteZonePrefix) {
		text = m.dropzone.DragStartFavorite(s)
	} else {
		text = m.dropzone.DragStartButton(s)
	}
	m.drag = &drag{
		origin:  id,
		sound:   s,
		data:    dropzone.DragData{Text: text},
		started: true,
	}
	return true
}

// hover updates the drop-zone highlight for the zone under the gesture.
func (m *Model) hover(id string) {
	if m.drag == nil || !m.drag.started {
		return
	}
	sec, _, ok := parseZone(id)
	if ok && (sec == sectionDropzone || sec == sectionFavorites) && id != m.drag.origin {
		m.dropzone.DragOver(m.drag.data)
		return
	}
	m.dropzone.DragLeave()
}

// dropOn finishes the gesture on zone id.
func (m *Model) dropOn(id string) tea.Cmd {
	d := m.drag
	m.drag = nil
	if d == nil {
		return nil
	}
	sec, i, ok := parseZone(id)
	switch {
	case ok && sec == sectionFavorites && id != d.origin && i < len(m.favorites):
		outcome := m.dropzone.DropOnFavorite(m.favorites[i].AudioRef, d.data)
		return m.reportOutcomes(d.sound.Title, outcome)
	case ok && sec == sectionDropzone:
		return m.reportOutcomes(d.sound.Title, m.dropzone.Drop(m.ctx, d.data)...)
	default:
		m.dropzone.DragEnd()
		return nil
	}
}

func (m *Model) cancelDrag() {
	m.drag = nil
	m.dropzone.DragEnd()
}

func (m *Model) grabOrDrop() tea.Cmd {
	if m.drag == nil {
		if m.startDrag(m.focusedZone()) {
			return m.setStatus(fmt.Sprintf("grabbed %s", m.drag.sound.Title))
		}
		return nil
	}
	if m.focusedZone() == m.drag.origin {
		m.cancelDrag()
		return nil
	}
	return m.dropOn(m.focusedZone())
}

func (m *Model) favoriteFocused() tea.Cmd {
	if m.focus.section != sectionGrid {
		return nil
	}
	s, ok := m.soundAt(m.focusedZone())
	if !ok {
		return nil
	}
	text := m.dropzone.DragStartButton(s)
	return m.reportOutcomes(s.Title, m.dropzone.Drop(m.ctx, dropzone.DragData{Text: text})...)
}

func (m *Model) removeFocused() tea.Cmd {
	if m.focus.section != sectionFavorites {
		return nil
	}
	s, ok := m.soundAt(m.focusedZone())
	if !ok {
		return nil
	}
	text := m.dropzone.DragStartFavorite(s)
	return m.reportOutcomes(s.Title, m.dropzone.Drop(m.ctx, dropzone.DragData{Text: text})...)
}

func (m *Model) reportOutcomes(title string, outcomes ...favorites.Outcome) tea.Cmd {
	var changed []string
	for _, o := range outcomes {
		if o.Changed() {
			changed = append(changed, o.String())
		}
	}
	if len(changed) == 0 {
		return m.setStatus("nothing changed")
	}
	if len(outcomes) == 1 && title != "" {
		return m.setStatus(fmt.Sprintf("%s: %s", title, changed[0]))
	}
	return m.setStatus(fmt.Sprintf("favorites: %s", strings.Join(changed, ", ")))
}

func (m *Model) startImport() tea.Cmd {
	m.importing = true
	m.input.Reset()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *Model) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.importing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.importing = false
		m.input.Blur()
		return m, m.importPaths(m.input.Value())
	case tea.KeyCtrlC:
		m.Shutdown()
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// importPaths reads the comma separated files and hands them to the drop zone.
func (m *Model) importPaths(raw string) tea.Cmd {
	var files []transfer.File
	var failed []string
	for _, path := range strings.Split(raw, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		f, err := transfer.ReadFile(path)
		if err != nil {
			m.log.Warn("import failed", "path", path, "error", err)
			failed = append(failed, path)
			continue
		}
		files = append(files, f)
	}
	outcomes := m.dropzone.SelectFiles(m.ctx, files)
	added := 0
	for _, o := range outcomes {
		if o.Changed() {
			added++
		}
	}
	text := fmt.Sprintf("imported %d of %d file(s)", added, len(files)+len(failed))
	if len(failed) > 0 {
		text += fmt.Sprintf("; unreadable: %s", strings.Join(failed, ", "))
	}
	return m.setStatus(text)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonNone {
		return nil
	}
	id := m.hit(msg)
	switch msg.Action {
	case tea.MouseActionPress:
		if id == "" {
			return nil
		}
		m.focusZone(id)
		if m.drag != nil && m.drag.started {
			// A keyboard grab is dropped with a click.
			return m.dropOn(id)
		}
		m.drag = &drag{origin: id}
	case tea.MouseActionMotion:
		if m.drag == nil {
			return nil
		}
		if !m.drag.started {
			if id == m.drag.origin || !m.startDrag(m.drag.origin) {
				return nil
			}
		}
		m.hover(id)
	case tea.MouseActionRelease:
		d := m.drag
		if d == nil {
			return nil
		}
		if !d.started {
			m.drag = nil
			return m.activate(d.origin)
		}
		if id == d.origin {
			m.cancelDrag()
			return nil
		}
		return m.dropOn(id)
	}
	return nil
}

func (m *Model) focusZone(id string) {
	sec, i, ok := parseZone(id)
	if !ok {
		return
	}
	m.focus = focus{section: sec, index: i}
}
