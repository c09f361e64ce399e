package favorites

import (
	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/transfer"
)

// Outcome describes what a drop did to the list.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeAdded
	OutcomeUpdated
	OutcomeReplaced
	OutcomeMoved
	OutcomeRemoved
)

var outcomeNames = map[Outcome]string{
	OutcomeIgnored:  "ignored",
	OutcomeAdded:    "added",
	OutcomeUpdated:  "updated",
	OutcomeReplaced: "replaced",
	OutcomeMoved:    "moved",
	OutcomeRemoved:  "removed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Changed reports whether the list was mutated.
func (o Outcome) Changed() bool {
	return o != OutcomeIgnored
}

// DropOnFavorite applies a payload dropped onto the favorite targetRef.
//
// A payload carrying removal intent removes its own record. A payload for a
// sound that is not a favorite yet overwrites the target slot. A payload for
// an existing favorite moves it to the target slot.
func (r *Registry) DropOnFavorite(targetRef string, p transfer.Payload) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.RemoveFromFavorites {
		if r.removeLocked(p.AudioRef) {
			return OutcomeRemoved
		}
		return OutcomeIgnored
	}
	if p.AudioRef == "" {
		return OutcomeIgnored
	}
	// A reorder only needs the reference; the stored record is kept as is.
	if domain.IndexOf(r.list, p.AudioRef) >= 0 {
		if r.moveLocked(p.AudioRef, targetRef) {
			return OutcomeMoved
		}
		return OutcomeIgnored
	}
	if r.replaceAtLocked(targetRef, p.Sound()) {
		return OutcomeReplaced
	}
	return OutcomeIgnored
}

// Drop applies a payload dropped on the catch-all drop zone: removal intent
// removes, a known reference is updated in place and anything else is added.
func (r *Registry) Drop(p transfer.Payload) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.RemoveFromFavorites {
		if r.removeLocked(p.AudioRef) {
			return OutcomeRemoved
		}
		return OutcomeIgnored
	}
	return r.upsertLocked(p.Sound())
}
