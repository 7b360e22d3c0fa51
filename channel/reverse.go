// File: channel/reverse.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channel

import (
	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/protocol"
	"github.com/momentics/hioload-kernel/reactor"
	"github.com/momentics/hioload-kernel/session"
)

// ReverseChannel carries kernel-initiated raw-input requests to the frontend.
// It shares the generic channel lifecycle; the handler is the single
// extension point for answering input requests.
type ReverseChannel struct {
	*socketChannel
}

// NewReverse creates the stdin-side peer channel.
func NewReverse(ctx *Context, sess *session.Session, handler api.MessageHandler) (*ReverseChannel, error) {
	core, err := newSocketChannel(ctx, sess, handler,
		protocol.KindStdin, reactor.PollIn|reactor.PollErr, "reverse")
	if err != nil {
		return nil, err
	}
	rc := &ReverseChannel{socketChannel: core}
	core.events = rc.handleEvents
	return rc, nil
}

func (rc *ReverseChannel) handleEvents(evts reactor.IOState) {
	if evts&reactor.PollIn != 0 {
		rc.recvAll()
	}
}
