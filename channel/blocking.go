// File: channel/blocking.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BlockingHandler adapts the asynchronous handler dispatch to synchronous
// consumption: inbound envelopes are buffered and the owning thread pulls
// them with GetMsg. Useful for test suites and blocking frontends.

package channel

import (
	"errors"
	"time"

	"github.com/momentics/hioload-kernel/api"
)

// ErrEmpty is returned by GetMsg when no message arrives within the timeout.
var ErrEmpty = errors.New("no message available")

// defaultBlockingCapacity bounds the buffer so a stalled consumer cannot
// grow memory without limit.
const defaultBlockingCapacity = 1024

// BlockingHandler is a MessageHandler that queues envelopes for synchronous
// retrieval from the owning thread.
type BlockingHandler struct {
	msgs chan *api.Envelope
}

// NewBlockingHandler creates a handler buffering up to capacity envelopes;
// capacity <= 0 selects the default.
func NewBlockingHandler(capacity int) *BlockingHandler {
	if capacity <= 0 {
		capacity = defaultBlockingCapacity
	}
	return &BlockingHandler{msgs: make(chan *api.Envelope, capacity)}
}

// HandleMessage buffers the envelope. It never blocks the channel goroutine;
// when the buffer is full the envelope is rejected with an error, which the
// channel logs.
func (h *BlockingHandler) HandleMessage(env *api.Envelope) error {
	select {
	case h.msgs <- env:
		return nil
	default:
		return errors.New("blocking handler buffer full")
	}
}

// GetMsg returns the next buffered envelope, waiting up to timeout. A
// negative timeout waits indefinitely. Returns ErrEmpty when the timeout
// elapses with no message.
func (h *BlockingHandler) GetMsg(timeout time.Duration) (*api.Envelope, error) {
	if timeout < 0 {
		return <-h.msgs, nil
	}
	select {
	case env := <-h.msgs:
		return env, nil
	case <-time.After(timeout):
		return nil, ErrEmpty
	}
}

// GetAll drains and returns every currently buffered envelope.
func (h *BlockingHandler) GetAll() []*api.Envelope {
	var out []*api.Envelope
	for {
		select {
		case env := <-h.msgs:
			out = append(out, env)
		default:
			return out
		}
	}
}
