// Package domain provides the domain layer for the soundboard.
// It contains the sound record shared by the button grid, the favorites
// registry and the drag-and-drop payloads, plus pure list helpers.
package domain

import "errors"

var (
	// ErrInvalidSound is returned when a sound lacks an audio reference or a title.
	ErrInvalidSound = errors.New("invalid sound: audio reference and title are required")

	// ErrSoundNotFound is returned when an audio reference is not in a list.
	ErrSoundNotFound = errors.New("sound not found")
)

// Sound is a named reference to a playable clip. It is both a button on the
// grid and a favorite record.
//
// The JSON field names are the persisted and drag-transfer names.
type Sound struct {
	// AudioRef identifies the clip (path, URL or data: URL). Unique within a list.
	AudioRef string `json:"audioFile" toml:"audio" yaml:"audio"`
	// Title is the display label.
	Title string `json:"title" toml:"title" yaml:"title"`
	// Emoji is an optional decorative glyph.
	Emoji string `json:"emoji,omitempty" toml:"emoji" yaml:"emoji"`
	// Repeatable makes every activation spawn an independent playback.
	Repeatable bool `json:"repeatable,omitempty" toml:"repeatable" yaml:"repeatable"`
}

// Valid reports whether the sound has the required fields.
func (s Sound) Valid() bool {
	return s.AudioRef != "" && s.Title != ""
}

// Validate returns ErrInvalidSound when the sound is not Valid.
func (s Sound) Validate() error {
	if !s.Valid() {
		return ErrInvalidSound
	}
	return nil
}

// Label returns the text shown on a button: emoji and title.
func (s Sound) Label() string {
	if s.Emoji == "" {
		return s.Title
	}
	return s.Emoji + " " + s.Title
}
