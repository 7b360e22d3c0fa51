// File: channel/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RequestChannel carries frontend requests to the kernel and kernel replies
// back. Requests are fire-and-forget: the caller gets the message id and the
// reply arrives later through the MessageHandler on the channel goroutine.

package channel

import (
	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/protocol"
	"github.com/momentics/hioload-kernel/reactor"
	"github.com/momentics/hioload-kernel/session"
)

// RequestChannel is the dealer-style two-way channel.
type RequestChannel struct {
	*socketChannel
	pending *pendingQueue

	// wbuf holds the unsent remainder of a partially written frame.
	// Loop goroutine only.
	wbuf []byte
}

// NewRequest creates a request channel bound to the shared context and
// session. Replies are dispatched to handler on the channel goroutine.
func NewRequest(ctx *Context, sess *session.Session, handler api.MessageHandler) (*RequestChannel, error) {
	core, err := newSocketChannel(ctx, sess, handler,
		protocol.KindDealer, reactor.PollIn|reactor.PollErr, "request")
	if err != nil {
		return nil, err
	}
	r := &RequestChannel{
		socketChannel: core,
		pending:       newPendingQueue(),
	}
	core.events = r.handleEvents
	return r, nil
}

// Execute queues an execute_request for the given code and returns the
// message id the reply will be correlated by.
func (r *RequestChannel) Execute(code string) string {
	env := r.session.Msg("execute_request", map[string]any{"code": code})
	r.queueRequest(env)
	return env.MsgID()
}

// Complete queues a complete_request for text at the given position within
// line. block carries surrounding context and is included when non-empty.
func (r *RequestChannel) Complete(text, line, block string) string {
	content := map[string]any{"text": text, "line": line}
	if block != "" {
		content["block"] = block
	}
	env := r.session.Msg("complete_request", content)
	r.queueRequest(env)
	return env.MsgID()
}

// ObjectInfo queues an object_info_request for the named object.
func (r *RequestChannel) ObjectInfo(name string) string {
	env := r.session.Msg("object_info_request", map[string]any{"oname": name})
	r.queueRequest(env)
	return env.MsgID()
}

// PendingRequests reports how many envelopes await transmission.
func (r *RequestChannel) PendingRequests() int {
	return r.pending.Len()
}

// queueRequest enqueues the envelope and raises writable interest on the
// channel's loop. Thread safe.
func (r *RequestChannel) queueRequest(env *api.Envelope) {
	r.pending.Add(env)
	r.AddIOState(reactor.PollOut)
}

func (r *RequestChannel) handleEvents(evts reactor.IOState) {
	if evts&reactor.PollOut != 0 {
		r.handleSend()
	}
	if evts&reactor.PollIn != 0 {
		r.recvAll()
	}
}

// handleSend transmits on write-readiness: first any partially written frame,
// then at most one queued envelope. Writable interest is dropped once there
// is nothing left to send so the loop does not busy-poll.
func (r *RequestChannel) handleSend() {
	if len(r.wbuf) > 0 {
		if !r.flushWriteBuffer() {
			return
		}
	} else if env, ok := r.pending.Pop(); ok {
		payload, err := protocol.EncodeEnvelope(env)
		if err != nil {
			r.fail(api.NewTransportError("write", r.Address().String(), err))
			return
		}
		frame, err := protocol.EncodeFrame(payload)
		if err != nil {
			r.fail(api.NewTransportError("write", r.Address().String(), err))
			return
		}
		r.wbuf = frame
		if !r.flushWriteBuffer() {
			return
		}
	}
	if len(r.wbuf) == 0 && r.pending.Empty() {
		r.DropIOState(reactor.PollOut)
	}
}

// flushWriteBuffer writes as much of wbuf as the socket accepts. Returns true
// when the buffer fully drained. On a partial write, writable interest stays
// raised and transmission resumes on the next readiness event.
func (r *RequestChannel) flushWriteBuffer() bool {
	for len(r.wbuf) > 0 {
		n, wouldBlock, err := writeNonblock(r.fd, r.wbuf)
		if err != nil {
			r.fail(api.NewTransportError("write", r.Address().String(), err))
			return false
		}
		if wouldBlock {
			return false
		}
		r.wbuf = r.wbuf[n:]
	}
	r.wbuf = nil
	return true
}
