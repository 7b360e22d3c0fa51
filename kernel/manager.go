// File: kernel/manager.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Manager is the top-level façade over the three kernel channels and the
// kernel OS process.

package kernel

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/channel"
	"github.com/momentics/hioload-kernel/session"
)

// Manager owns the channel goroutines and, optionally, the kernel process.
// Channel objects are lazily constructed exactly once, bound to the shared
// context and session.
type Manager struct {
	ctx      *channel.Context
	sess     *session.Session
	log      *zap.Logger
	launcher Launcher

	broadcastHandler api.MessageHandler
	requestHandler   api.MessageHandler
	reverseHandler   api.MessageHandler

	mu        sync.Mutex
	listening bool
	proc      Process
	broadcast *channel.BroadcastChannel
	request   *channel.RequestChannel
	reverse   *channel.ReverseChannel
}

// NewManager creates a manager. With no options it uses a no-op logger, a
// fresh session and a default channel context; a kernel can only be launched
// once a Launcher is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if m.sess == nil {
		m.sess = session.New()
	}
	if m.ctx == nil {
		m.ctx = channel.NewContext(channel.WithLogger(m.log))
	}
	return m
}

// Session returns the envelope-builder shared by all channels.
func (m *Manager) Session() *session.Session {
	return m.sess
}

//
// Channel management
//

// StartListening starts all three channel goroutines, in the order broadcast,
// request, reverse. Fails with api.ErrAlreadyListening when already
// listening; on a partial failure the channels already started are stopped
// again before returning.
func (m *Manager) StartListening() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listening {
		return api.ErrAlreadyListening
	}

	channels, err := m.ensureChannelsLocked()
	if err != nil {
		return err
	}

	var started []channel.Channel
	for _, ch := range channels {
		if err := ch.Start(); err != nil {
			for _, s := range started {
				_ = s.Stop()
			}
			return fmt.Errorf("start listening: %w", err)
		}
		started = append(started, ch)
	}

	m.listening = true
	m.log.Info("listening on kernel channels",
		zap.String("session", m.sess.ID()))
	return nil
}

// StopListening stops all three channels, each stop blocking until that
// goroutine fully exits. Stopping a non-listening manager is a no-op.
func (m *Manager) StopListening() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listening {
		return nil
	}
	m.listening = false

	var errs []error
	for _, ch := range []channel.Channel{m.broadcast, m.request, m.reverse} {
		if ch != nil {
			if err := ch.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	m.log.Info("stopped listening on kernel channels")
	return errors.Join(errs...)
}

// IsListening reports whether all three channels have been started and not
// explicitly stopped.
func (m *Manager) IsListening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening
}

// IsAlive reports whether the kernel is alive: when a process handle is
// held it is probed directly, otherwise listening state is the best
// available signal.
func (m *Manager) IsAlive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.proc != nil {
		return m.proc.Alive()
	}
	return m.listening
}

//
// Kernel process management
//

// StartKernel launches a kernel process on the local host and rewrites the
// request/broadcast addresses to the ports the process actually bound.
// Fails with api.ErrRemoteLaunch when either address is non-local.
func (m *Manager) StartKernel() error {
	reqCh, err := m.RequestChannel()
	if err != nil {
		return err
	}
	subCh, err := m.BroadcastChannel()
	if err != nil {
		return err
	}

	reqAddr, subAddr := reqCh.Address(), subCh.Address()
	if !reqAddr.IsLocal() || !subAddr.IsLocal() {
		return api.ErrRemoteLaunch
	}
	if m.launcher == nil {
		return errors.New("start kernel: no launcher configured")
	}

	res, err := m.launcher.Launch(reqAddr.Port, subAddr.Port)
	if err != nil {
		return fmt.Errorf("start kernel: %w", err)
	}

	m.SetKernel(res.Process)
	if err := reqCh.SetAddress(api.Address{Host: api.Localhost, Port: res.RequestPort}); err != nil {
		return err
	}
	if err := subCh.SetAddress(api.Address{Host: api.Localhost, Port: res.BroadcastPort}); err != nil {
		return err
	}

	m.log.Info("kernel started",
		zap.Int("pid", res.Process.Pid()),
		zap.Int("request_port", res.RequestPort),
		zap.Int("broadcast_port", res.BroadcastPort))
	return nil
}

// RestartKernel kills the held kernel process, if any, and launches a new
// one on the same addresses.
func (m *Manager) RestartKernel() error {
	if m.HasKernel() {
		if err := m.KillKernel(); err != nil && !errors.Is(err, api.ErrNoKernel) {
			return err
		}
	}
	return m.StartKernel()
}

// SetKernel adopts an externally started kernel process. Setting a process
// is only required for signalling/killing; the channels are configured
// separately through the address setters.
func (m *Manager) SetKernel(proc Process) {
	m.mu.Lock()
	m.proc = proc
	m.mu.Unlock()
}

// HasKernel reports whether a kernel process handle is currently held.
func (m *Manager) HasKernel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proc != nil
}

// KillKernel forcibly terminates the kernel process and clears the handle.
// Fails with api.ErrNoKernel when none is held.
func (m *Manager) KillKernel() error {
	m.mu.Lock()
	proc := m.proc
	m.proc = nil
	m.mu.Unlock()

	if proc == nil {
		return api.ErrNoKernel
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("kill kernel pid %d: %w", proc.Pid(), err)
	}
	m.log.Info("kernel killed", zap.Int("pid", proc.Pid()))
	return nil
}

// SignalKernel forwards an OS signal to the kernel process. Fails with
// api.ErrNoKernel when none is held.
func (m *Manager) SignalKernel(sig os.Signal) error {
	m.mu.Lock()
	proc := m.proc
	m.mu.Unlock()

	if proc == nil {
		return api.ErrNoKernel
	}
	if err := proc.Signal(sig); err != nil {
		return fmt.Errorf("signal kernel pid %d: %w", proc.Pid(), err)
	}
	return nil
}

//
// Channels used for communication with the kernel
//

// BroadcastChannel returns the channel carrying kernel-published events,
// constructing it on first access.
func (m *Manager) BroadcastChannel() (*channel.BroadcastChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureBroadcastLocked()
}

// RequestChannel returns the channel used to make requests of the kernel,
// constructing it on first access.
func (m *Manager) RequestChannel() (*channel.RequestChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureRequestLocked()
}

// ReverseChannel returns the channel handling kernel-initiated raw-input
// requests, constructing it on first access.
func (m *Manager) ReverseChannel() (*channel.ReverseChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureReverseLocked()
}

func (m *Manager) ensureBroadcastLocked() (*channel.BroadcastChannel, error) {
	if m.broadcast == nil {
		ch, err := channel.NewBroadcast(m.ctx, m.sess, m.broadcastHandler)
		if err != nil {
			return nil, err
		}
		m.broadcast = ch
	}
	return m.broadcast, nil
}

func (m *Manager) ensureRequestLocked() (*channel.RequestChannel, error) {
	if m.request == nil {
		ch, err := channel.NewRequest(m.ctx, m.sess, m.requestHandler)
		if err != nil {
			return nil, err
		}
		m.request = ch
	}
	return m.request, nil
}

func (m *Manager) ensureReverseLocked() (*channel.ReverseChannel, error) {
	if m.reverse == nil {
		ch, err := channel.NewReverse(m.ctx, m.sess, m.reverseHandler)
		if err != nil {
			return nil, err
		}
		m.reverse = ch
	}
	return m.reverse, nil
}

// ensureChannelsLocked constructs any missing channels and returns them in
// start order: broadcast, request, reverse.
func (m *Manager) ensureChannelsLocked() ([]channel.Channel, error) {
	sub, err := m.ensureBroadcastLocked()
	if err != nil {
		return nil, err
	}
	req, err := m.ensureRequestLocked()
	if err != nil {
		return nil, err
	}
	rev, err := m.ensureReverseLocked()
	if err != nil {
		return nil, err
	}
	return []channel.Channel{sub, req, rev}, nil
}

//
// Delegates for the channel address attributes
//

// BroadcastAddress returns the broadcast channel's address.
func (m *Manager) BroadcastAddress() (api.Address, error) {
	ch, err := m.BroadcastChannel()
	if err != nil {
		return api.Address{}, err
	}
	return ch.Address(), nil
}

// SetBroadcastAddress sets the broadcast channel's address; subject to the
// immutable-once-running rule.
func (m *Manager) SetBroadcastAddress(addr api.Address) error {
	ch, err := m.BroadcastChannel()
	if err != nil {
		return err
	}
	return ch.SetAddress(addr)
}

// RequestAddress returns the request channel's address.
func (m *Manager) RequestAddress() (api.Address, error) {
	ch, err := m.RequestChannel()
	if err != nil {
		return api.Address{}, err
	}
	return ch.Address(), nil
}

// SetRequestAddress sets the request channel's address; subject to the
// immutable-once-running rule.
func (m *Manager) SetRequestAddress(addr api.Address) error {
	ch, err := m.RequestChannel()
	if err != nil {
		return err
	}
	return ch.SetAddress(addr)
}

// ReverseAddress returns the reverse channel's address.
func (m *Manager) ReverseAddress() (api.Address, error) {
	ch, err := m.ReverseChannel()
	if err != nil {
		return api.Address{}, err
	}
	return ch.Address(), nil
}

// SetReverseAddress sets the reverse channel's address; subject to the
// immutable-once-running rule.
func (m *Manager) SetReverseAddress(addr api.Address) error {
	ch, err := m.ReverseChannel()
	if err != nil {
		return err
	}
	return ch.SetAddress(addr)
}
