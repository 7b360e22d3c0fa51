// Package channel implements the three kernel communication channels.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Every channel runs one goroutine with one cooperative event loop bound to
// one non-blocking socket. The owning thread talks to a channel only through
// thread-safe entry points (request queueing, posted interest updates, Stop,
// Flush); inbound messages are dispatched to the channel's MessageHandler on
// the channel goroutine itself.
package channel
