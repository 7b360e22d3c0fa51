// Package reactor provides the per-channel event loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Each kernel channel runs exactly one EventLoop on its own goroutine, bound
// to exactly one non-blocking socket. The loop multiplexes socket readiness
// with cross-goroutine posted callbacks; all interest-mask mutation happens
// on the loop goroutine via AddCallback, never from the outside.
package reactor
