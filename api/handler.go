// File: api/handler.go
// Package api defines the MessageHandler capability.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// MessageHandler consumes decoded envelopes arriving on a channel.
//
// HandleMessage runs on the channel's own goroutine, never on the owning
// thread; implementations that touch application state must hand the envelope
// off to the application thread themselves. A returned error is logged by the
// channel and does not stop the channel's loop.
type MessageHandler interface {
	HandleMessage(msg *Envelope) error
}

// MessageHandlerFunc adapts a plain function to the MessageHandler capability.
type MessageHandlerFunc func(msg *Envelope) error

// HandleMessage implements MessageHandler.
func (f MessageHandlerFunc) HandleMessage(msg *Envelope) error {
	return f(msg)
}
