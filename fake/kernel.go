// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development. Kernel is an in-process
// kernel endpoint speaking the channel wire protocol: it accepts all three
// connection kinds on a single port, records dealer requests, publishes
// envelopes to subscribers and can auto-reply to requests.

package fake

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/protocol"
	"github.com/momentics/hioload-kernel/session"
)

// Kernel is a fake kernel-side endpoint.
type Kernel struct {
	ln   net.Listener
	log  *zap.Logger
	sess *session.Session
	g    errgroup.Group

	mu        sync.Mutex
	closed    bool
	conns     []net.Conn
	subs      []net.Conn
	stdins    []net.Conn
	greetings []protocol.Greeting
	requests  []*api.Envelope
	autoReply func(req *api.Envelope) *api.Envelope
}

// NewKernel starts a fake kernel listening on a loopback port.
func NewKernel(log *zap.Logger) (*Kernel, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("fake kernel listen: %w", err)
	}
	k := &Kernel{
		ln:   ln,
		log:  log.Named("fake-kernel"),
		sess: session.New(),
	}
	k.g.Go(k.acceptLoop)
	return k, nil
}

// Port returns the single port serving all three channel kinds.
func (k *Kernel) Port() int {
	return k.ln.Addr().(*net.TCPAddr).Port
}

// Addr returns the kernel's address for channel configuration.
func (k *Kernel) Addr() api.Address {
	return api.Address{Host: api.Localhost, Port: k.Port()}
}

// SetAutoReply installs fn, invoked for every dealer request; a non-nil
// return is written back on the same connection.
func (k *Kernel) SetAutoReply(fn func(req *api.Envelope) *api.Envelope) {
	k.mu.Lock()
	k.autoReply = fn
	k.mu.Unlock()
}

// Reply builds a kernel-side reply envelope correlated to req.
func (k *Kernel) Reply(req *api.Envelope, msgType string, content map[string]any) *api.Envelope {
	env := k.sess.Msg(msgType, content)
	parent := req.Header
	env.Parent = &parent
	return env
}

func (k *Kernel) acceptLoop() error {
	for {
		conn, err := k.ln.Accept()
		if err != nil {
			if k.isClosed() {
				return nil
			}
			return err
		}
		k.mu.Lock()
		k.conns = append(k.conns, conn)
		k.mu.Unlock()
		k.g.Go(func() error { return k.handleConn(conn) })
	}
}

func (k *Kernel) handleConn(conn net.Conn) error {
	payload, err := protocol.ReadFrame(conn)
	if err != nil {
		return nil // closed before greeting
	}
	greeting, err := protocol.DecodeGreeting(payload)
	if err != nil {
		k.log.Warn("bad greeting", zap.Error(err))
		conn.Close()
		return nil
	}

	k.mu.Lock()
	k.greetings = append(k.greetings, greeting)
	switch greeting.Kind {
	case protocol.KindSub:
		k.subs = append(k.subs, conn)
	case protocol.KindStdin:
		k.stdins = append(k.stdins, conn)
	}
	k.mu.Unlock()

	k.log.Debug("connection registered",
		zap.String("kind", string(greeting.Kind)),
		zap.String("identity", greeting.Identity))

	if greeting.Kind != protocol.KindDealer {
		// Sub and stdin peers never send envelopes; park until close.
		for {
			if _, err := protocol.ReadFrame(conn); err != nil {
				return nil
			}
		}
	}
	return k.serveDealer(conn)
}

func (k *Kernel) serveDealer(conn net.Conn) error {
	for {
		payload, err := protocol.ReadFrame(conn)
		if err != nil {
			return nil
		}
		env, err := protocol.DecodeEnvelope(payload)
		if err != nil {
			k.log.Warn("bad envelope", zap.Error(err))
			continue
		}

		k.mu.Lock()
		k.requests = append(k.requests, env)
		autoReply := k.autoReply
		k.mu.Unlock()

		if autoReply == nil {
			continue
		}
		if reply := autoReply(env); reply != nil {
			out, err := protocol.EncodeEnvelope(reply)
			if err != nil {
				return err
			}
			if err := protocol.WriteFrame(conn, out); err != nil {
				return nil
			}
		}
	}
}

// Publish broadcasts env to every subscribed connection.
func (k *Kernel) Publish(env *api.Envelope) error {
	payload, err := protocol.EncodeEnvelope(env)
	if err != nil {
		return err
	}
	k.mu.Lock()
	subs := append([]net.Conn{}, k.subs...)
	k.mu.Unlock()
	for _, conn := range subs {
		// Dead subscribers drop off on their own close path.
		_ = protocol.WriteFrame(conn, payload)
	}
	return nil
}

// Requests returns a copy of the dealer requests received so far, in arrival
// order.
func (k *Kernel) Requests() []*api.Envelope {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]*api.Envelope{}, k.requests...)
}

// Greetings returns a copy of the greetings received so far.
func (k *Kernel) Greetings() []protocol.Greeting {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]protocol.Greeting{}, k.greetings...)
}

// SubscriberCount reports the number of registered sub connections.
func (k *Kernel) SubscriberCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.subs)
}

// WaitRequests polls until at least n dealer requests have arrived or the
// timeout elapses.
func (k *Kernel) WaitRequests(n int, timeout time.Duration) ([]*api.Envelope, error) {
	deadline := time.Now().Add(timeout)
	for {
		reqs := k.Requests()
		if len(reqs) >= n {
			return reqs, nil
		}
		if time.Now().After(deadline) {
			return reqs, fmt.Errorf("fake kernel: got %d of %d requests before timeout", len(reqs), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// WaitSubscribers polls until at least n sub connections are registered or
// the timeout elapses.
func (k *Kernel) WaitSubscribers(n int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for k.SubscriberCount() < n {
		if time.Now().After(deadline) {
			return errors.New("fake kernel: no subscriber before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func (k *Kernel) isClosed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed
}

// Close shuts the listener and every connection down and waits for the
// serving goroutines to exit.
func (k *Kernel) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	conns := append([]net.Conn{}, k.conns...)
	k.mu.Unlock()

	err := k.ln.Close()
	for _, conn := range conns {
		conn.Close()
	}
	if werr := k.g.Wait(); err == nil {
		err = werr
	}
	return err
}
