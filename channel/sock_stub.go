//go:build !linux
// +build !linux

// File: channel/sock_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub socket helpers for platforms without a poller backend.

package channel

import (
	"time"

	"github.com/momentics/hioload-kernel/api"
)

func dialSocket(addr api.Address, timeout time.Duration) (int, error) {
	return -1, api.ErrNotSupported
}

func setNonblock(fd int) error { return api.ErrNotSupported }

func closeSocket(fd int) {}

func writeAll(fd int, p []byte) error { return api.ErrNotSupported }

func readAvailable(fd int, buf []byte) (int, bool, error) {
	return 0, false, api.ErrNotSupported
}

func writeNonblock(fd int, buf []byte) (int, bool, error) {
	return 0, false, api.ErrNotSupported
}
