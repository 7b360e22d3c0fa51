// File: channel/pending.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-safe FIFO of outbound envelopes awaiting transmission. Producer is
// the owning thread; consumer is the channel goroutine only.

package channel

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-kernel/api"
)

// pendingQueue preserves enqueue order as transmission order.
type pendingQueue struct {
	mu sync.Mutex
	q  *queue.Queue
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{q: queue.New()}
}

// Add appends an envelope to the tail.
func (p *pendingQueue) Add(env *api.Envelope) {
	p.mu.Lock()
	p.q.Add(env)
	p.mu.Unlock()
}

// Pop removes the head envelope; ok is false when the queue is empty.
func (p *pendingQueue) Pop() (env *api.Envelope, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.q.Length() == 0 {
		return nil, false
	}
	return p.q.Remove().(*api.Envelope), true
}

// Empty reports whether the queue holds no envelopes.
func (p *pendingQueue) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.q.Length() == 0
}

// Len reports the number of queued envelopes.
func (p *pendingQueue) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.q.Length()
}
