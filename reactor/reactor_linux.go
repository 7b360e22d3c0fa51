//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based event loop with eventfd(2) cross-goroutine wakeup.

package reactor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// linuxLoop is an epoll-based single-socket event loop.
type linuxLoop struct {
	epfd   int
	wakeFd int // eventfd used by AddCallback to interrupt EpollWait

	// Loop-goroutine-only state.
	fd      int
	handler Handler
	state   IOState
	quit    bool

	mu        sync.Mutex
	callbacks []func()

	running atomic.Bool
	closed  atomic.Bool
}

// NewLoop constructs a new platform-specific EventLoop for Linux.
func NewLoop() (EventLoop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	l := &linuxLoop{epfd: epfd, wakeFd: wakeFd, fd: -1}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &ev); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wakeup: %w", err)
	}
	return l, nil
}

func epollMask(state IOState) uint32 {
	var events uint32
	if state&PollIn != 0 {
		events |= unix.EPOLLIN
	}
	if state&PollOut != 0 {
		events |= unix.EPOLLOUT
	}
	// EPOLLERR and EPOLLHUP are always reported; no bit to request.
	return events
}

func ioState(events uint32) IOState {
	var s IOState
	if events&unix.EPOLLIN != 0 {
		s |= PollIn
	}
	if events&unix.EPOLLOUT != 0 {
		s |= PollOut
	}
	if events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		s |= PollErr
	}
	return s
}

// AddHandler registers the loop's single socket with its initial interest.
func (l *linuxLoop) AddHandler(fd int, h Handler, state IOState) error {
	ev := unix.EpollEvent{Events: epollMask(state), Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	l.fd = fd
	l.handler = h
	l.state = state
	return nil
}

// UpdateHandler swaps the interest mask. Loop goroutine only.
func (l *linuxLoop) UpdateHandler(state IOState) error {
	if l.fd < 0 {
		return fmt.Errorf("update handler: no socket registered")
	}
	ev := unix.EpollEvent{Events: epollMask(state), Fd: int32(l.fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, int(l.fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	l.state = state
	return nil
}

// RemoveHandler unregisters the socket.
func (l *linuxLoop) RemoveHandler() error {
	if l.fd < 0 {
		return nil
	}
	err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, l.fd, nil)
	l.fd = -1
	l.handler = nil
	if err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// AddCallback posts fn onto the loop goroutine and wakes the poller.
// Callbacks posted after Close are dropped: the descriptors are gone and the
// loop can never run them.
func (l *linuxLoop) AddCallback(fn func()) {
	if l.closed.Load() {
		return
	}
	l.mu.Lock()
	l.callbacks = append(l.callbacks, fn)
	l.mu.Unlock()
	l.wake()
}

func (l *linuxLoop) wake() {
	var one [8]byte
	one[0] = 1
	// EAGAIN means the counter is already non-zero: a wakeup is pending.
	_, _ = unix.Write(l.wakeFd, one[:])
}

func (l *linuxLoop) runCallbacks() {
	l.mu.Lock()
	pending := l.callbacks
	l.callbacks = nil
	l.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// Run dispatches readiness events and posted callbacks until Stop.
func (l *linuxLoop) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("event loop already running")
	}
	defer l.running.Store(false)

	events := make([]unix.EpollEvent, 8)
	for !l.quit {
		n, err := unix.EpollWait(l.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll wait: %w", err)
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == l.wakeFd {
				l.drainWake()
				l.runCallbacks()
				continue
			}
			if l.handler != nil && fd == l.fd {
				l.handler(ioState(events[i].Events))
			}
		}
	}
	return nil
}

func (l *linuxLoop) drainWake() {
	var buf [8]byte
	// A single read resets the eventfd counter.
	_, _ = unix.Read(l.wakeFd, buf[:])
}

// Stop schedules termination from any goroutine.
func (l *linuxLoop) Stop() {
	l.AddCallback(func() { l.quit = true })
}

// Close releases the epoll instance and the wakeup descriptor.
func (l *linuxLoop) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := unix.Close(l.wakeFd)
	if cerr := unix.Close(l.epfd); err == nil {
		err = cerr
	}
	return err
}
