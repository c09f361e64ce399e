// Package transfer encodes and decodes the payload describing a sound being
// dragged, and turns imported audio files into payloads.
package transfer

import (
	"encoding/json"
	"strings"

	"github.com/cristianoliveira/soundboard/internal/domain"
)

// MIMEType is the drag-data type the payload travels under.
const MIMEType = "text/plain"

// Payload is the ephemeral record carried by a drag gesture.
type Payload struct {
	AudioRef            string `json:"audioFile"`
	Title               string `json:"title"`
	Emoji               string `json:"emoji"`
	Repeatable          bool   `json:"repeatable"`
	RemoveFromFavorites bool   `json:"removeFromFavorites"`
}

// FromSound builds a payload for dragging s. remove marks the drag as
// originating from the favorites list.
func FromSound(s domain.Sound, remove bool) Payload {
	return Payload{
		AudioRef:            s.AudioRef,
		Title:               s.Title,
		Emoji:               s.Emoji,
		Repeatable:          s.Repeatable,
		RemoveFromFavorites: remove,
	}
}

// Sound converts the payload into a sound record, dropping the removal intent.
func (p Payload) Sound() domain.Sound {
	return domain.Sound{
		AudioRef:   p.AudioRef,
		Title:      p.Title,
		Emoji:      p.Emoji,
		Repeatable: p.Repeatable,
	}
}

// Valid reports whether the payload carries a usable record.
func (p Payload) Valid() bool {
	return p.Sound().Valid()
}

// Encode serializes the payload to its wire form.
func Encode(p Payload) string {
	data, err := json.Marshal(p)
	if err != nil {
		// Payload only holds strings and bools
		return "{}"
	}
	return string(data)
}

// Decode parses a wire payload. Empty or malformed data, including data
// from foreign drag sources, reports ok=false rather than an error.
// Missing fields decode to their zero values; callers validate.
func Decode(data string) (Payload, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Payload{}, false
	}
	var p Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Payload{}, false
	}
	return p, true
}
