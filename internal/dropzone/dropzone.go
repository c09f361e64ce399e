// Package dropzone turns drag, drop and file import gestures into favorites
// mutations and tracks the transient flags the UI uses for affordance.
package dropzone

import (
	"context"
	"sync"

	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/favorites"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/transfer"
)

// Dropzone labels.
const (
	LabelRemove = "🗑️ Remove"
	LabelAdd    = "🫳 Add"
	LabelEmpty  = "🫳 Drop favorites here"
)

// Registry is the subset of the favorites registry the controller drives.
type Registry interface {
	Drop(p transfer.Payload) favorites.Outcome
	DropOnFavorite(targetRef string, p transfer.Payload) favorites.Outcome
}

// DragData is what a drag gesture carries: an optional text payload and any
// number of files.
type DragData struct {
	Text  string
	Files []transfer.File
}

// State holds the transient affordance flags. It is never persisted.
type State struct {
	// Targeted is set while a drag carrying usable data hovers the zone.
	Targeted bool
	// Removing is set while a favorite is being dragged.
	Removing bool
}

// Controller is the drop target state for one favorites list.
type Controller struct {
	registry Registry
	log      logging.Logger

	mu    sync.Mutex
	state State
}

// New creates a controller that applies drops to registry.
func New(registry Registry, log logging.Logger) *Controller {
	if log == nil {
		log = logging.GetGlobal()
	}
	return &Controller{registry: registry, log: log.With("component", "dropzone")}
}

// State returns the current flags.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Label returns the text the drop zone shows.
func (c *Controller) Label(hasFavorites bool) string {
	st := c.State()
	switch {
	case st.Removing:
		return LabelRemove
	case hasFavorites:
		return LabelAdd
	default:
		return LabelEmpty
	}
}

// DragStartFavorite begins dragging a favorite and returns its encoded
// payload. Dropping it outside any favorite removes it.
func (c *Controller) DragStartFavorite(s domain.Sound) string {
	c.mu.Lock()
	c.state.Removing = true
	c.mu.Unlock()
	return transfer.Encode(transfer.FromSound(s, true))
}

// DragStartButton begins dragging a grid button and returns its encoded payload.
func (c *Controller) DragStartButton(s domain.Sound) string {
	return transfer.Encode(transfer.FromSound(s, false))
}

// DragOver marks the zone as targeted when data carries something droppable.
func (c *Controller) DragOver(data DragData) {
	usable := len(transfer.AudioPayloads(data.Files)) > 0
	if !usable {
		if p, ok := transfer.Decode(data.Text); ok && (p.Valid() || p.RemoveFromFavorites) {
			usable = true
		}
	}
	c.mu.Lock()
	c.state.Targeted = usable
	c.mu.Unlock()
}

// DragLeave clears the targeted flag.
func (c *Controller) DragLeave() {
	c.mu.Lock()
	c.state.Targeted = false
	c.mu.Unlock()
}

// DragEnd resets every flag. It runs whether or not the drag was dropped.
func (c *Controller) DragEnd() {
	c.reset()
}

func (c *Controller) reset() {
	c.mu.Lock()
	c.state = State{}
	c.mu.Unlock()
}

// DropOnFavorite applies a drop onto the favorite targetRef. Undecodable
// data is ignored.
func (c *Controller) DropOnFavorite(targetRef string, data DragData) favorites.Outcome {
	defer c.reset()

	p, ok := transfer.Decode(data.Text)
	if !ok {
		c.log.Debug("ignoring undecodable drop", "target", targetRef, "bytes", len(data.Text))
		return favorites.OutcomeIgnored
	}
	outcome := c.registry.DropOnFavorite(targetRef, p)
	c.log.Debug("drop on favorite", "target", targetRef, "audio_file", p.AudioRef, "outcome", outcome.String())
	return outcome
}

// Drop applies a drop on the catch-all zone. Audio files and the text
// payload are handled as one batch; non-audio files and undecodable text are
// skipped. The batch stops early when ctx is done.
func (c *Controller) Drop(ctx context.Context, data DragData) []favorites.Outcome {
	defer c.reset()

	payloads := transfer.AudioPayloads(data.Files)
	if skipped := len(data.Files) - len(payloads); skipped > 0 {
		c.log.Debug("skipping non-audio files", "count", skipped)
	}
	if data.Text != "" {
		if p, ok := transfer.Decode(data.Text); ok {
			payloads = append(payloads, p)
		} else {
			c.log.Debug("ignoring undecodable drop", "bytes", len(data.Text))
		}
	}
	return c.apply(ctx, payloads)
}

// SelectFiles adds files picked through the import prompt.
func (c *Controller) SelectFiles(ctx context.Context, files []transfer.File) []favorites.Outcome {
	return c.Drop(ctx, DragData{Files: files})
}

func (c *Controller) apply(ctx context.Context, payloads []transfer.Payload) []favorites.Outcome {
	outcomes := make([]favorites.Outcome, 0, len(payloads))
	for _, p := range payloads {
		if err := ctx.Err(); err != nil {
			c.log.Debug("drop batch interrupted", "error", err, "remaining", len(payloads)-len(outcomes))
			break
		}
		outcome := c.registry.Drop(p)
		c.log.Debug("drop", "audio_file", p.AudioRef, "outcome", outcome.String())
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
