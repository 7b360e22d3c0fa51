// File: channel/broadcast.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BroadcastChannel receives kernel-published events. One-way fan-in: the
// kernel publishes, the frontend's handler consumes.

package channel

import (
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/protocol"
	"github.com/momentics/hioload-kernel/reactor"
	"github.com/momentics/hioload-kernel/session"
)

// flushPollInterval is the owning-thread sleep between flush-flag checks.
const flushPollInterval = 10 * time.Millisecond

// BroadcastChannel subscribes to all kernel-published events and dispatches
// each to the supplied MessageHandler on the channel goroutine.
type BroadcastChannel struct {
	*socketChannel
	flushed atomic.Bool
}

// NewBroadcast creates a broadcast channel bound to the shared context and
// session. The handler consumes every published envelope; passing nil makes
// any inbound message a fatal api.ErrNotImplemented.
func NewBroadcast(ctx *Context, sess *session.Session, handler api.MessageHandler) (*BroadcastChannel, error) {
	core, err := newSocketChannel(ctx, sess, handler,
		protocol.KindSub, reactor.PollIn|reactor.PollErr, "broadcast")
	if err != nil {
		return nil, err
	}
	b := &BroadcastChannel{socketChannel: core}
	core.events = b.handleEvents
	return b, nil
}

func (b *BroadcastChannel) handleEvents(evts reactor.IOState) {
	if evts&reactor.PollIn != 0 {
		b.recvAll()
	}
}

// Flush blocks the owning thread until the channel's event loop has processed
// all currently queued readiness events at least once, or until timeout.
//
// Best-effort: a marker callback is posted twice in succession because a
// single pass may not fully drain due to loop re-entrancy. This approximates
// a drain; it is not an exact guarantee. Thread safe.
func (b *BroadcastChannel) Flush(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for pass := 0; pass < 2; pass++ {
		b.flushed.Store(false)
		b.loop.AddCallback(func() { b.flushed.Store(true) })
		for !b.flushed.Load() && time.Now().Before(deadline) {
			time.Sleep(flushPollInterval)
		}
	}
}
