//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub factory for platforms without a poller backend.

package reactor

import "github.com/momentics/hioload-kernel/api"

// NewLoop returns an error on unsupported platforms.
func NewLoop() (EventLoop, error) {
	return nil, api.ErrNotSupported
}
