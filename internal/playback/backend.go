package playback

import "context"

// Observer receives events from a handle. Implementations must not block.
type Observer interface {
	// TimeUpdate reports the playback position in seconds. duration is NaN
	// when the length of the source is unknown.
	TimeUpdate(elapsed, duration float64)
	// Ended reports that playback reached the end on its own.
	Ended()
}

// Handle is one audio resource bound to one audio reference.
type Handle interface {
	ID() string
	// Play starts playback from the current position.
	Play(ctx context.Context) error
	// Stop halts playback and rewinds to the start.
	Stop() error
	// Close releases the resource. A closed handle cannot be played.
	Close() error
	// Position returns the current position in seconds.
	Position() float64
}

// Backend creates handles. Open must not call the observer synchronously.
type Backend interface {
	Open(audioRef string, obs Observer) (Handle, error)
}
