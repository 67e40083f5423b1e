package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/spaghettifunk/tessera/engine/core"
)

// Command is a unit of work that touches the graphics context.
type Command func(backend RendererBackend)

// CommandQueue serializes graphics work onto the thread owning the context. Any goroutine
// may Submit or Call; only the render thread may Drain.
type CommandQueue struct {
	backend RendererBackend
	queue   chan Command

	mu     sync.RWMutex
	closed bool
}

func NewCommandQueue(backend RendererBackend, size int) (*CommandQueue, error) {
	if size <= 0 {
		err := fmt.Errorf("func NewCommandQueue - size must be > 0: %w", core.ErrInvalidArgument)
		core.LogError("%s", err)
		return nil, err
	}
	return &CommandQueue{
		backend: backend,
		queue:   make(chan Command, size),
	}, nil
}

// Submit queues cmd without waiting. Returns ErrQueueFull instead of blocking.
func (q *CommandQueue) Submit(cmd Command) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return core.ErrQueueClosed
	}
	select {
	case q.queue <- cmd:
		return nil
	default:
		return core.ErrQueueFull
	}
}

// Call queues cmd and waits until the render thread ran it, or ctx is done. A command
// whose caller gave up still runs; there is no cancellation once queued.
func (q *CommandQueue) Call(ctx context.Context, cmd Command) error {
	done := make(chan struct{})
	wrapped := func(b RendererBackend) {
		defer close(done)
		cmd(b)
	}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return core.ErrQueueClosed
	}
	select {
	case q.queue <- wrapped:
	case <-ctx.Done():
		q.mu.RUnlock()
		return ctx.Err()
	}
	q.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs every pending command on the calling thread and returns how many ran.
func (q *CommandQueue) Drain() int {
	n := 0
	for {
		select {
		case cmd, ok := <-q.queue:
			if !ok {
				return n
			}
			cmd(q.backend)
			n++
		default:
			return n
		}
	}
}

// Pending returns the number of queued commands.
func (q *CommandQueue) Pending() int {
	return len(q.queue)
}

// Close rejects further submissions. Commands already queued can still be drained.
func (q *CommandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.queue)
}
