// Package state provides the bubbletea model for the soundboard.
package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/soundboard/internal/board"
	"github.com/cristianoliveira/soundboard/internal/domain"
)

// FavoritesChangedMsg carries a registry snapshot.
type FavoritesChangedMsg struct {
	Favorites []domain.Sound
}

// favoritesClosedMsg is sent when the registry subscription ends.
type favoritesClosedMsg struct{}

// BoardLoadedMsg is sent when the board file was reloaded.
type BoardLoadedMsg struct {
	Board *board.Board
	Err   error
}

// progressMsg signals that at least one indicator changed.
type progressMsg struct{}

// StatusMsg sets the status line.
type StatusMsg struct {
	Text string
}

// waitForFavorites delivers the next snapshot from ch.
func waitForFavorites(ch <-chan []domain.Sound) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return favoritesClosedMsg{}
		}
		return FavoritesChangedMsg{Favorites: snap}
	}
}

// waitForProgress blocks until an indicator changes.
func waitForProgress(p *progressBoard) tea.Cmd {
	return func() tea.Msg {
		<-p.changed
		return progressMsg{}
	}
}

// waitForBoard delivers the next board reload.
func waitForBoard(ch <-chan BoardLoadedMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
