// File: channel/channel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// socketChannel is the shared core of all three kernel channels: goroutine
// lifecycle, address management, interest-mask scheduling and the inbound
// receive/dispatch path.

package channel

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/protocol"
	"github.com/momentics/hioload-kernel/reactor"
	"github.com/momentics/hioload-kernel/session"
)

// Channel is the lifecycle contract shared by all kernel channels.
type Channel interface {
	// Start launches the channel goroutine. A channel can be started exactly
	// once; restarting after Stop fails with api.ErrAlreadyStarted.
	Start() error

	// Stop terminates the channel's event loop and blocks until the channel
	// goroutine has fully exited and released its socket. Stopping a channel
	// that was never started is a no-op.
	Stop() error

	// IsAlive reports whether the channel goroutine is currently running.
	IsAlive() bool

	// Address returns the channel's target address.
	Address() api.Address

	// SetAddress replaces the target address. Fails with
	// api.ErrAlreadyRunning while the channel goroutine is alive. The zero
	// Address resets to the default (loopback, OS-assigned port).
	SetAddress(addr api.Address) error

	// Err returns the channel's recorded fatal error, if any. Transport
	// faults observed inside the event loop terminate the loop and are
	// stored here; they are never silently dropped.
	Err() error
}

// socketChannel carries the state shared by the concrete channel types.
type socketChannel struct {
	ctx     *Context
	session *session.Session
	handler api.MessageHandler
	log     *zap.Logger

	kind    protocol.SocketKind
	initial reactor.IOState

	// events is the concrete channel's readiness dispatcher, invoked on the
	// loop goroutine for non-error readiness.
	events func(evts reactor.IOState)

	loop reactor.EventLoop

	mu   sync.Mutex
	addr api.Address
	err  error

	started atomic.Bool
	alive   atomic.Bool
	done    chan struct{}

	// Loop-goroutine-only state below.
	fd      int
	iostate reactor.IOState
	dec     protocol.Decoder
	readBuf []byte
}

// newSocketChannel builds the shared channel core. The event loop handle is
// created here so that thread-safe posted callbacks are accepted from the
// moment of construction; the socket itself is created inside run() on the
// channel's own goroutine.
func newSocketChannel(ctx *Context, sess *session.Session, handler api.MessageHandler,
	kind protocol.SocketKind, initial reactor.IOState, name string) (*socketChannel, error) {

	loop, err := reactor.NewLoop()
	if err != nil {
		return nil, err
	}
	return &socketChannel{
		ctx:     ctx,
		session: sess,
		handler: handler,
		log:     ctx.Logger().Named(name),
		kind:    kind,
		initial: initial,
		loop:    loop,
		addr:    api.DefaultAddress(),
		done:    make(chan struct{}),
		fd:      -1,
		readBuf: make([]byte, 64<<10),
	}, nil
}

// Start launches the channel goroutine.
func (c *socketChannel) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return api.ErrAlreadyStarted
	}
	c.alive.Store(true)
	go c.run()
	return nil
}

// run is the channel goroutine entry point: create and connect the socket,
// send the greeting, register with the private loop, run until stopped.
func (c *socketChannel) run() {
	defer close(c.done)
	defer c.alive.Store(false)
	defer c.loop.Close()

	addr := c.Address()
	fd, err := dialSocket(addr, c.ctx.dialTimeout)
	if err != nil {
		c.fail(api.NewTransportError("connect", addr.String(), err))
		return
	}
	c.fd = fd

	if err := c.sendGreeting(); err != nil {
		c.fail(api.NewTransportError("write", addr.String(), err))
		closeSocket(fd)
		return
	}
	if err := setNonblock(fd); err != nil {
		c.fail(api.NewTransportError("connect", addr.String(), err))
		closeSocket(fd)
		return
	}

	c.iostate = c.initial
	if err := c.loop.AddHandler(fd, c.dispatch, c.initial); err != nil {
		c.fail(api.NewTransportError("poll", addr.String(), err))
		closeSocket(fd)
		return
	}

	c.log.Debug("channel loop starting",
		zap.String("kind", string(c.kind)),
		zap.String("addr", addr.String()))

	if err := c.loop.Run(); err != nil {
		c.fail(api.NewTransportError("poll", addr.String(), err))
	}

	_ = c.loop.RemoveHandler()
	closeSocket(fd)
	c.fd = -1
	c.log.Debug("channel loop stopped")
}

// sendGreeting writes the one-time greeting frame declaring the socket kind
// and the session's transport identity. The socket is still blocking here.
func (c *socketChannel) sendGreeting() error {
	payload, err := protocol.EncodeGreeting(protocol.Greeting{
		Kind:     c.kind,
		Identity: c.session.ID(),
	})
	if err != nil {
		return err
	}
	frame, err := protocol.EncodeFrame(payload)
	if err != nil {
		return err
	}
	return writeAll(c.fd, frame)
}

// dispatch translates loop readiness into channel behavior. Error-readiness
// is a fatal transport fault.
func (c *socketChannel) dispatch(evts reactor.IOState) {
	if evts&reactor.PollErr != 0 {
		c.fail(api.NewTransportError("poll", c.Address().String(), nil))
		return
	}
	if c.events != nil {
		c.events(evts)
	}
}

// fail records the channel's fatal error and terminates its loop. The first
// recorded error wins.
func (c *socketChannel) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.log.Error("channel failed", zap.Error(err))
	c.loop.Stop()
}

// Stop terminates the loop and joins the channel goroutine.
func (c *socketChannel) Stop() error {
	if !c.started.Load() {
		return nil
	}
	c.loop.Stop()
	<-c.done
	return nil
}

// IsAlive reports whether the channel goroutine is running.
func (c *socketChannel) IsAlive() bool {
	return c.alive.Load()
}

// Err returns the recorded fatal error, if any.
func (c *socketChannel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Address returns the channel's target address.
func (c *socketChannel) Address() api.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// SetAddress replaces the target address; forbidden while the channel
// goroutine is alive.
func (c *socketChannel) SetAddress(addr api.Address) error {
	if c.alive.Load() {
		return api.ErrAlreadyRunning
	}
	if (addr == api.Address{}) {
		addr = api.DefaultAddress()
	}
	c.mu.Lock()
	c.addr = addr.Normalize()
	c.mu.Unlock()
	return nil
}

// AddIOState schedules a union of state into the loop's interest mask. The
// mutation itself runs on the loop goroutine, eliminating races with the
// poll call. Safe to call from any goroutine.
func (c *socketChannel) AddIOState(state reactor.IOState) {
	c.loop.AddCallback(func() {
		if c.iostate&state != state {
			c.iostate |= state
			if err := c.loop.UpdateHandler(c.iostate); err != nil {
				c.fail(api.NewTransportError("poll", c.Address().String(), err))
			}
		}
	})
}

// DropIOState schedules a subtraction of state from the loop's interest mask.
// Safe to call from any goroutine.
func (c *socketChannel) DropIOState(state reactor.IOState) {
	c.loop.AddCallback(func() {
		if c.iostate&state != 0 {
			c.iostate &^= state
			if err := c.loop.UpdateHandler(c.iostate); err != nil {
				c.fail(api.NewTransportError("poll", c.Address().String(), err))
			}
		}
	})
}

// recvAll drains the socket in a tight non-blocking loop, then dispatches
// every complete envelope in arrival order. Loop goroutine only.
func (c *socketChannel) recvAll() {
	for {
		n, wouldBlock, err := readAvailable(c.fd, c.readBuf)
		if err != nil {
			c.fail(api.NewTransportError("read", c.Address().String(), err))
			return
		}
		if wouldBlock {
			break
		}
		c.dec.Write(c.readBuf[:n])
	}
	for {
		payload, err := c.dec.Next()
		if err != nil {
			c.fail(api.NewTransportError("decode", c.Address().String(), err))
			return
		}
		if payload == nil {
			return
		}
		env, err := protocol.DecodeEnvelope(payload)
		if err != nil {
			c.fail(api.NewTransportError("decode", c.Address().String(), err))
			return
		}
		c.callHandlers(env)
	}
}

// callHandlers dispatches one decoded envelope to the channel's handler on
// the loop goroutine. A channel without a handler cannot consume messages.
func (c *socketChannel) callHandlers(env *api.Envelope) {
	if c.handler == nil {
		c.fail(api.ErrNotImplemented)
		return
	}
	if err := c.handler.HandleMessage(env); err != nil {
		c.log.Warn("message handler error",
			zap.String("msg_type", env.MsgType()),
			zap.String("msg_id", env.MsgID()),
			zap.Error(err))
	}
}
