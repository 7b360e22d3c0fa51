// Package kernel manages a compute kernel for a frontend.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The Manager owns the three channel goroutines and, optionally, the kernel
// OS process. The broadcast channel delivers kernel-published events, the
// request channel carries frontend requests and kernel replies, and the
// reverse channel carries kernel-initiated raw-input requests.
package kernel
