//go:build linux
// +build linux

// File: channel/sock_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw socket helpers for channel transports. Sockets are created blocking for
// the connect/greeting phase, then switched to non-blocking before they are
// handed to the event loop.

package channel

import (
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-kernel/api"
)

// dialSocket creates a TCP socket and connects it to addr, blocking for at
// most timeout. The returned descriptor is still in blocking mode.
func dialSocket(addr api.Address, timeout time.Duration) (int, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr.String())
	if err != nil {
		return -1, fmt.Errorf("resolve %s: %w", addr, err)
	}

	family := unix.AF_INET
	if tcpAddr.IP.To4() == nil {
		family = unix.AF_INET6
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket create: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

	if timeout > 0 {
		tv := unix.NsecToTimeval(timeout.Nanoseconds())
		_ = unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv)
	}

	var sa unix.Sockaddr
	if family == unix.AF_INET {
		sa4 := &unix.SockaddrInet4{Port: tcpAddr.Port}
		copy(sa4.Addr[:], tcpAddr.IP.To4())
		sa = sa4
	} else {
		sa6 := &unix.SockaddrInet6{Port: tcpAddr.Port}
		copy(sa6.Addr[:], tcpAddr.IP.To16())
		sa = sa6
	}

	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("connect %s: %w", addr, err)
	}
	return fd, nil
}

// setNonblock switches the descriptor to non-blocking mode.
func setNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}

// closeSocket releases the descriptor.
func closeSocket(fd int) {
	_ = unix.Close(fd)
}

// writeAll writes the whole buffer on a blocking socket.
func writeAll(fd int, p []byte) error {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		p = p[n:]
	}
	return nil
}

// readAvailable performs one non-blocking read into buf. wouldBlock is true
// when no data is currently available; n==0 with a nil error is reported as
// io.EOF (peer closed).
func readAvailable(fd int, buf []byte) (n int, wouldBlock bool, err error) {
	n, err = unix.Read(fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, true, nil
		}
		if err == unix.EINTR {
			return 0, true, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, io.EOF
	}
	return n, false, nil
}

// writeNonblock performs one non-blocking write from buf. wouldBlock is true
// when the socket's send buffer is full; n reports the bytes accepted.
func writeNonblock(fd int, buf []byte) (n int, wouldBlock bool, err error) {
	n, err = unix.Write(fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return 0, true, nil
		}
		return 0, false, err
	}
	return n, false, nil
}
