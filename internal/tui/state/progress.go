package state

import "sync"

// progressBoard collects indicator values reported from playback goroutines.
// The model reads it on progressMsg, so only the latest value per button
// matters and no update is lost.
type progressBoard struct {
	mu      sync.Mutex
	values  map[string]float64
	changed chan struct{}
}

func newProgressBoard() *progressBoard {
	return &progressBoard{
		values:  make(map[string]float64),
		changed: make(chan struct{}, 1),
	}
}

func (p *progressBoard) set(key string, percent float64) {
	p.mu.Lock()
	p.values[key] = percent
	p.mu.Unlock()
	select {
	case p.changed <- struct{}{}:
	default:
	}
}

func (p *progressBoard) get(key string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key]
}

func (p *progressBoard) forget(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
}
