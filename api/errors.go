// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error types for the kernel messaging layer.

package api

import (
	"errors"
	"fmt"
)

// Lifecycle-contract errors reported synchronously to the calling thread.
var (
	// ErrAlreadyRunning is returned when a channel address is mutated while
	// the channel goroutine is alive.
	ErrAlreadyRunning = errors.New("cannot set address on a running channel")

	// ErrAlreadyStarted is returned by Start after a channel has been started
	// once. Channel goroutines are not restartable.
	ErrAlreadyStarted = errors.New("channel has already been started")

	// ErrAlreadyListening is returned by a second StartListening call.
	ErrAlreadyListening = errors.New("cannot start listening: already listening")

	// ErrNoKernel is returned by process-control calls when no kernel
	// process has been adopted.
	ErrNoKernel = errors.New("no kernel is running")

	// ErrRemoteLaunch is returned by StartKernel when a channel address does
	// not resolve to the local host.
	ErrRemoteLaunch = errors.New("can only launch a kernel on localhost")

	// ErrNotImplemented is surfaced when an inbound message arrives on a
	// channel constructed without a MessageHandler.
	ErrNotImplemented = errors.New("no message handler supplied for channel")

	// ErrNotSupported is returned by platform factories on targets without
	// a poller backend.
	ErrNotSupported = errors.New("operation not supported on this platform")
)

// TransportError is a fatal socket-level fault observed by a channel's event
// loop. It terminates the loop and is recorded as the channel's last error;
// it is never silently dropped.
type TransportError struct {
	Op   string // operation that failed: "connect", "read", "write", "poll"
	Addr string // remote address in host:port form
	Err  error  // underlying cause, nil for bare error-readiness
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport error during %s on %s", e.Op, e.Addr)
	}
	return fmt.Sprintf("transport error during %s on %s: %v", e.Op, e.Addr, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError for the given operation.
func NewTransportError(op, addr string, err error) *TransportError {
	return &TransportError{Op: op, Addr: addr, Err: err}
}
