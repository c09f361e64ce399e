package favorites

import "github.com/cristianoliveira/soundboard/internal/domain"

// Subscription receives list snapshots after every mutation and after Load.
// C holds at most one snapshot; a slow reader only ever sees the latest one.
type Subscription struct {
	C <-chan []domain.Sound

	ch chan []domain.Sound
	r  *Registry
}

// Subscribe registers a new subscription. The current list is delivered
// immediately.
func (r *Registry) Subscribe() *Subscription {
	ch := make(chan []domain.Sound, 1)
	sub := &Subscription{C: ch, ch: ch, r: r}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub] = struct{}{}
	ch <- domain.Clone(r.list)
	return sub
}

// Close stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.subs[s]; !ok {
		return
	}
	delete(s.r.subs, s)
	close(s.ch)
}

// publishLocked replaces any undelivered snapshot with the current list.
// Only the registry sends on subscription channels, and it does so under
// r.mu, so the second send cannot block.
func (r *Registry) publishLocked() {
	for sub := range r.subs {
		snapshot := domain.Clone(r.list)
		select {
		case sub.ch <- snapshot:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snapshot
	}
}
