package favorites

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/storage"
)

const writeTimeout = 10 * time.Second

// errPersisterClosed is returned by flush after close when writes were queued
// that will never land.
var errPersisterClosed = errors.New("favorites: persister closed with pending writes")

// persister writes snapshots in the order they were queued. Only the latest
// pending snapshot is kept, so a burst of mutations becomes one write of the
// final state.
type persister struct {
	store storage.Store
	key   string
	log   logging.Logger

	mu         sync.Mutex
	pending    []domain.Sound
	hasPending bool
	queued     uint64
	written    uint64
	lastErr    error
	settled    chan struct{}
	stopped    bool

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newPersister(store storage.Store, key string, log logging.Logger) *persister {
	p := &persister{
		store:   store,
		key:     key,
		log:     log,
		settled: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// enqueue never blocks.
func (p *persister) enqueue(snapshot []domain.Sound) {
	p.mu.Lock()
	p.pending = snapshot
	p.hasPending = true
	p.queued++
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *persister) drain() {
	for {
		p.mu.Lock()
		if !p.hasPending {
			p.mu.Unlock()
			return
		}
		snapshot, gen := p.pending, p.queued
		p.pending, p.hasPending = nil, false
		p.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := p.store.Set(ctx, p.key, snapshot)
		cancel()
		if err != nil {
			p.log.Warn("failed to persist favorites", "error", err, "count", len(snapshot))
		} else {
			p.log.Debug("persisted favorites", "count", len(snapshot))
		}

		p.mu.Lock()
		p.written = gen
		p.lastErr = err
		close(p.settled)
		p.settled = make(chan struct{})
		p.mu.Unlock()
	}
}

// flush waits until everything queued before the call has been written.
func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	target := p.queued
	p.mu.Unlock()

	for {
		p.mu.Lock()
		if p.written >= target {
			err := p.lastErr
			p.mu.Unlock()
			return err
		}
		if p.stopped {
			p.mu.Unlock()
			return errPersisterClosed
		}
		settled := p.settled
		p.mu.Unlock()

		select {
		case <-settled:
		case <-p.done:
			// Loop once more to pick up the final write or report the leftovers.
			p.mu.Lock()
			p.stopped = true
			p.mu.Unlock()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// close drains pending writes and stops the writer goroutine.
func (p *persister) close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.stop) })
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.hasPending {
		return errPersisterClosed
	}
	return p.lastErr
}
