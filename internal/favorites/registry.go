// Package favorites owns the user's ordered list of favorite sounds.
//
// The in-memory list is the source of truth for the session. Every mutation
// updates it synchronously, notifies subscribers with a snapshot and queues
// the snapshot for an ordered background write to the store.
package favorites

import (
	"context"
	"fmt"
	"sync"

	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/storage"
)

// StorageKey is the well-known key the favorites list is stored under.
const StorageKey = "soundboard-favorites"

// Registry is the ordered, deduplicated favorites list.
type Registry struct {
	key string
	log logging.Logger

	mu        sync.Mutex
	list      []domain.Sound
	subs      map[*Subscription]struct{}
	persister *persister
	store     storage.Store
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithKey overrides StorageKey.
func WithKey(key string) Option {
	return func(r *Registry) {
		if key != "" {
			r.key = key
		}
	}
}

// New creates an empty registry backed by store. Call Load to read the
// persisted list and Close to stop the background writer.
func New(store storage.Store, opts ...Option) *Registry {
	r := &Registry{
		key:   StorageKey,
		log:   logging.GetGlobal(),
		list:  []domain.Sound{},
		subs:  make(map[*Subscription]struct{}),
		store: store,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "favorites")
	r.persister = newPersister(store, r.key, r.log)
	return r
}

// Load reads the persisted list, drops every record whose reference is in
// exclude and makes the result the current list. A missing key loads an
// empty list. Load never writes back to the store.
func (r *Registry) Load(ctx context.Context, exclude []string) ([]domain.Sound, error) {
	// Queued writes must land before the store is trusted again.
	_ = r.persister.flush(ctx)

	stored, _, err := r.store.Get(ctx, r.key)
	if err != nil {
		r.log.Warn("failed to load favorites", "error", err)
		stored = nil
	}
	cleaned, dropped := domain.Dedupe(domain.Without(stored, exclude))
	if dropped > 0 {
		r.log.Warn("dropped malformed or duplicate favorites on load", "count", dropped)
	}

	r.mu.Lock()
	r.list = cleaned
	r.publishLocked()
	out := domain.Clone(r.list)
	r.mu.Unlock()

	if err != nil {
		return out, fmt.Errorf("load favorites: %w", err)
	}
	return out, nil
}

// Favorites returns a snapshot of the current list.
func (r *Registry) Favorites() []domain.Sound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.Clone(r.list)
}

// Len returns the number of favorites.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.list)
}

// IndexOf returns the position of ref, or -1.
func (r *Registry) IndexOf(ref string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.IndexOf(r.list, ref)
}

// Contains reports whether ref is a favorite.
func (r *Registry) Contains(ref string) bool {
	return r.IndexOf(ref) >= 0
}

// Add appends s. Invalid records and references already present are ignored.
func (r *Registry) Add(s domain.Sound) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(s)
}

func (r *Registry) addLocked(s domain.Sound) bool {
	if !s.Valid() || domain.IndexOf(r.list, s.AudioRef) >= 0 {
		return false
	}
	r.list = append(r.list, s)
	r.commitLocked()
	return true
}

// ReplaceAt overwrites the slot holding targetRef with s. It is a no-op when
// targetRef is absent, s is invalid, or s.AudioRef already occupies another
// slot.
func (r *Registry) ReplaceAt(targetRef string, s domain.Sound) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaceAtLocked(targetRef, s)
}

func (r *Registry) replaceAtLocked(targetRef string, s domain.Sound) bool {
	idx := domain.IndexOf(r.list, targetRef)
	if idx < 0 || !s.Valid() {
		return false
	}
	if other := domain.IndexOf(r.list, s.AudioRef); other >= 0 && other != idx {
		return false
	}
	if r.list[idx] == s {
		return false
	}
	r.list[idx] = s
	r.commitLocked()
	return true
}

// Move relocates fromRef to the position currently held by toRef, keeping the
// relative order of everything else.
func (r *Registry) Move(fromRef, toRef string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.moveLocked(fromRef, toRef)
}

func (r *Registry) moveLocked(fromRef, toRef string) bool {
	from := domain.IndexOf(r.list, fromRef)
	to := domain.IndexOf(r.list, toRef)
	if from < 0 || to < 0 || from == to {
		return false
	}
	r.list = domain.MoveElement(r.list, from, to)
	r.commitLocked()
	return true
}

// Remove deletes ref if present.
func (r *Registry) Remove(ref string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(ref)
}

func (r *Registry) removeLocked(ref string) bool {
	idx := domain.IndexOf(r.list, ref)
	if idx < 0 {
		return false
	}
	r.list = append(domain.Clone(r.list[:idx]), r.list[idx+1:]...)
	r.commitLocked()
	return true
}

// Upsert updates the record with s.AudioRef in place, or appends s when it is
// not a favorite yet. It reports whether the list changed.
func (r *Registry) Upsert(s domain.Sound) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertLocked(s) != OutcomeIgnored
}

func (r *Registry) upsertLocked(s domain.Sound) Outcome {
	if !s.Valid() {
		return OutcomeIgnored
	}
	if domain.IndexOf(r.list, s.AudioRef) >= 0 {
		if r.replaceAtLocked(s.AudioRef, s) {
			return OutcomeUpdated
		}
		return OutcomeIgnored
	}
	if r.addLocked(s) {
		return OutcomeAdded
	}
	return OutcomeIgnored
}

// commitLocked notifies subscribers and queues the current list for writing.
// Callers hold r.mu so snapshots are queued in mutation order.
func (r *Registry) commitLocked() {
	r.persister.enqueue(domain.Clone(r.list))
	r.publishLocked()
}

// Flush waits until every mutation made so far has been written and returns
// the result of the last write.
func (r *Registry) Flush(ctx context.Context) error {
	return r.persister.flush(ctx)
}

// Close flushes pending writes, stops the background writer and closes all
// subscriptions. The registry keeps working in memory afterwards.
func (r *Registry) Close(ctx context.Context) error {
	err := r.persister.close(ctx)

	r.mu.Lock()
	for sub := range r.subs {
		delete(r.subs, sub)
		close(sub.ch)
	}
	r.mu.Unlock()
	return err
}
