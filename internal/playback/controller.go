package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/cristianoliveira/soundboard/internal/logging"
)

// DefaultHoldDelay is how long the indicator stays at 100% after a sound ends.
const DefaultHoldDelay = 500 * time.Millisecond

var (
	// ErrNoAudio is returned when a button has no audio reference.
	ErrNoAudio = errors.New("playback: no audio reference")
	// ErrDetached is returned when activating a detached controller.
	ErrDetached = errors.New("playback: controller detached")
)

// ProgressFunc receives the indicator value in percent.
type ProgressFunc func(percent float64)

// Controller is the playback state machine for one button.
type Controller struct {
	backend    Backend
	log        logging.Logger
	hold       time.Duration
	onProgress ProgressFunc

	mu         sync.Mutex
	audioRef   string
	repeatable bool
	state      State
	handle     Handle
	current    *observer
	overlaps   map[*observer]Handle
	progress   float64
	seq        uint64
	holdTimer  *time.Timer
	detached   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithHoldDelay sets how long the indicator holds at 100% after the end.
func WithHoldDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.hold = d
		}
	}
}

// WithProgressFunc sets the progress callback. It is called without any
// controller lock held.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(c *Controller) { c.onProgress = fn }
}

// WithRepeatable sets the initial repeat policy.
func WithRepeatable(repeatable bool) Option {
	return func(c *Controller) { c.repeatable = repeatable }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// HoldDelayFromConfig returns the configured progress hold delay.
func HoldDelayFromConfig() time.Duration {
	return time.Duration(config.GetInt("progress_hold_ms", int(DefaultHoldDelay/time.Millisecond))) * time.Millisecond
}

// NewController creates an unarmed controller for audioRef.
func NewController(backend Backend, audioRef string, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		log:      logging.GetGlobal(),
		hold:     DefaultHoldDelay,
		audioRef: audioRef,
		overlaps: make(map[*observer]Handle),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "playback")
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns the indicator value in percent.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// AudioRef returns the reference the controller plays.
func (c *Controller) AudioRef() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audioRef
}

// HandleID returns the ID of the current handle, or "" when unarmed.
func (c *Controller) HandleID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return ""
	}
	return c.handle.ID()
}

// Position returns the current handle position in seconds.
func (c *Controller) Position() float64 {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()
	if h == nil {
		return 0
	}
	return h.Position()
}

// Overlapping returns how many earlier repeatable handles are still playing.
func (c *Controller) Overlapping() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.overlaps)
}

// SetRepeatable changes the repeat policy for the next activation.
func (c *Controller) SetRepeatable(repeatable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repeatable = repeatable
}

// Activate handles a click.
//
// A repeatable button opens a fresh handle on every activation and earlier
// handles keep playing. A playing non-repeatable button stops and rewinds.
// Otherwise the handle is created on first use and played.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return ErrDetached
	}
	if c.audioRef == "" {
		c.mu.Unlock()
		return ErrNoAudio
	}

	if !c.repeatable && c.state == StatePlaying {
		h := c.handle
		c.state = StateIdle
		notify := c.setProgressLocked(0)
		c.mu.Unlock()

		notify()
		if h == nil {
			return nil
		}
		if err := h.Stop(); err != nil {
			c.log.Warn("failed to stop playback", "audio_file", c.AudioRef(), "error", err)
			return fmt.Errorf("stop: %w", err)
		}
		return nil
	}

	if c.repeatable && c.handle != nil {
		if c.state == StatePlaying {
			c.overlaps[c.current] = c.handle
		} else {
			defer closeQuietly(c.log, c.handle)
		}
		c.handle, c.current = nil, nil
	}
	if c.handle == nil {
		if err := c.armLocked(); err != nil {
			c.state = StateUnarmed
			if len(c.overlaps) > 0 {
				c.state = StateIdle
			}
			c.mu.Unlock()
			return err
		}
	}
	h, obs := c.handle, c.current
	c.state = StatePlaying
	notify := c.setProgressLocked(0)
	c.mu.Unlock()

	notify()
	if err := h.Play(ctx); err != nil {
		c.mu.Lock()
		if c.current == obs && c.state == StatePlaying {
			c.state = StateIdle
		}
		c.mu.Unlock()
		c.log.Warn("failed to start playback", "audio_file", obs.ref, "error", err)
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

func (c *Controller) armLocked() error {
	obs := &observer{c: c, ref: c.audioRef}
	h, err := c.backend.Open(c.audioRef, obs)
	if err != nil {
		c.log.Warn("failed to open audio", "audio_file", c.audioRef, "error", err)
		return fmt.Errorf("open %s: %w", c.audioRef, err)
	}
	c.handle, c.current = h, obs
	c.state = StateIdle
	c.log.Debug("armed", "audio_file", c.audioRef, "handle", h.ID())
	return nil
}

// SetAudioRef rebinds the button. Any existing handle is stopped and released
// and the next activation arms with ref.
func (c *Controller) SetAudioRef(ref string) {
	c.mu.Lock()
	if ref == c.audioRef {
		c.mu.Unlock()
		return
	}
	c.audioRef = ref
	released, notify := c.disarmLocked()
	c.mu.Unlock()

	notify()
	c.release(released)
}

// Detach stops and releases every handle. The controller cannot be activated
// afterwards.
func (c *Controller) Detach() {
	c.mu.Lock()
	c.detached = true
	released, _ := c.disarmLocked()
	c.mu.Unlock()

	c.release(released)
}

func (c *Controller) disarmLocked() ([]Handle, func()) {
	var released []Handle
	if c.handle != nil {
		released = append(released, c.handle)
	}
	for obs, h := range c.overlaps {
		released = append(released, h)
		delete(c.overlaps, obs)
	}
	c.handle, c.current = nil, nil
	c.state = StateUnarmed
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
	return released, c.setProgressLocked(0)
}

func (c *Controller) release(handles []Handle) {
	for _, h := range handles {
		if err := h.Stop(); err != nil {
			c.log.Debug("failed to stop released handle", "handle", h.ID(), "error", err)
		}
		closeQuietly(c.log, h)
	}
}

// setProgressLocked updates the indicator and returns the notification to
// run once the lock is released.
func (c *Controller) setProgressLocked(percent float64) func() {
	c.seq++
	if percent == c.progress {
		return func() {}
	}
	c.progress = percent
	fn := c.onProgress
	if fn == nil {
		return func() {}
	}
	return func() { fn(percent) }
}

func (c *Controller) timeUpdate(obs *observer, elapsed, duration float64) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return
	}
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		return
	}
	percent := math.Max(0, math.Min(100, elapsed/duration*100))

	c.mu.Lock()
	if c.current != obs || c.state != StatePlaying || c.detached {
		c.mu.Unlock()
		return
	}
	notify := c.setProgressLocked(percent)
	c.mu.Unlock()
	notify()
}

func (c *Controller) ended(obs *observer) {
	c.mu.Lock()
	if h, ok := c.overlaps[obs]; ok {
		delete(c.overlaps, obs)
		if c.handle == nil && len(c.overlaps) == 0 {
			c.state = StateUnarmed
		}
		c.mu.Unlock()
		closeQuietly(c.log, h)
		return
	}
	if c.current != obs || c.detached {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	notify := c.setProgressLocked(100)
	seq := c.seq
	if c.holdTimer != nil {
		c.holdTimer.Stop()
	}
	c.holdTimer = time.AfterFunc(c.hold, func() { c.resetAfterHold(seq) })
	c.mu.Unlock()

	notify()
}

// resetAfterHold clears the indicator unless something newer was reported.
func (c *Controller) resetAfterHold(seq uint64) {
	c.mu.Lock()
	if c.seq != seq || c.detached {
		c.mu.Unlock()
		return
	}
	c.holdTimer = nil
	notify := c.setProgressLocked(0)
	c.mu.Unlock()
	notify()
}

func closeQuietly(log logging.Logger, h Handle) {
	if err := h.Close(); err != nil {
		log.Debug("failed to close handle", "handle", h.ID(), "error", err)
	}
}

// observer routes handle events back to the controller that opened it.
type observer struct {
	c   *Controller
	ref string
}

func (o *observer) TimeUpdate(elapsed, duration float64) { o.c.timeUpdate(o, elapsed, duration) }
func (o *observer) Ended()                               { o.c.ended(o) }
