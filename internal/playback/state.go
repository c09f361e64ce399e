// Package playback drives one sound button: when an audio handle is created,
// toggled or replayed, and how its progress is reported.
package playback

// State is the button's playback state.
type State int

const (
	// StateUnarmed means no handle has been created for the current reference.
	StateUnarmed State = iota
	// StateIdle means a handle exists and is at rest.
	StateIdle
	// StatePlaying means the current handle is playing.
	StatePlaying
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnarmed:
		return "Unarmed"
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Armed reports whether a handle exists.
func (s State) Armed() bool {
	return s == StateIdle || s == StatePlaying
}
