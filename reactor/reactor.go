// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral event loop interface for single-socket IO multiplexing.

package reactor

// IOState is a bitmask of socket readiness conditions an EventLoop watches.
type IOState uint32

const (
	// PollIn is read-readiness.
	PollIn IOState = 1 << iota
	// PollOut is write-readiness.
	PollOut
	// PollErr is error-readiness. It is always reported, regardless of the
	// registered interest mask.
	PollErr
)

// String renders the mask for logs.
func (s IOState) String() string {
	out := ""
	if s&PollIn != 0 {
		out += "in|"
	}
	if s&PollOut != 0 {
		out += "out|"
	}
	if s&PollErr != 0 {
		out += "err|"
	}
	if out == "" {
		return "none"
	}
	return out[:len(out)-1]
}

// Handler receives readiness notifications for the loop's registered socket.
// It is invoked on the loop goroutine.
type Handler func(events IOState)

// EventLoop is a single-goroutine cooperative poll loop bound to at most one
// socket, with a thread-safe mechanism for posting callbacks onto the loop.
type EventLoop interface {
	// AddHandler registers the loop's socket with an initial interest mask.
	// It must be called from the loop's owning goroutine before Run.
	AddHandler(fd int, h Handler, state IOState) error

	// UpdateHandler replaces the interest mask of the registered socket.
	// It must only be called on the loop goroutine, typically from inside a
	// posted callback.
	UpdateHandler(state IOState) error

	// RemoveHandler unregisters the socket from the loop.
	RemoveHandler() error

	// AddCallback schedules fn to run on the loop goroutine and wakes the
	// loop. It is safe to call from any goroutine, before or during Run.
	// Callbacks posted after the loop stops are never executed.
	AddCallback(fn func())

	// Run blocks, dispatching readiness events and posted callbacks, until
	// Stop is processed. It returns the poll error that terminated the loop,
	// or nil on a clean stop.
	Run() error

	// Stop schedules loop termination. Safe to call from any goroutine.
	Stop()

	// Close releases the loop's poller resources. Call after Run returns.
	Close() error
}
