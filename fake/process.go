// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake kernel process handle and launcher with predictable, controllable
// behavior.

package fake

import (
	"os"
	"sync"

	"github.com/momentics/hioload-kernel/kernel"
)

// Process is a fake implementation of kernel.Process.
type Process struct {
	mu      sync.Mutex
	pid     int
	alive   bool
	killErr error
	sigErr  error
	signals []os.Signal
	killed  bool
}

// NewProcess creates a live fake process with the given pid.
func NewProcess(pid int) *Process {
	return &Process{pid: pid, alive: true}
}

// Pid implements kernel.Process.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// Kill implements kernel.Process.
func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.killErr != nil {
		return p.killErr
	}
	p.alive = false
	p.killed = true
	return nil
}

// Signal implements kernel.Process, recording each delivered signal.
func (p *Process) Signal(sig os.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sigErr != nil {
		return p.sigErr
	}
	p.signals = append(p.signals, sig)
	return nil
}

// Alive implements kernel.Process.
func (p *Process) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

// SetAlive overrides liveness, simulating a kernel death.
func (p *Process) SetAlive(alive bool) {
	p.mu.Lock()
	p.alive = alive
	p.mu.Unlock()
}

// Killed reports whether Kill was called.
func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// Signals returns the signals delivered so far.
func (p *Process) Signals() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]os.Signal{}, p.signals...)
}

// Launcher is a fake implementation of kernel.Launcher.
type Launcher struct {
	mu            sync.Mutex
	launches      int
	launchErr     error
	requestPort   int
	broadcastPort int
	lastProcess   *Process
}

// NewLauncher creates a launcher that reports the given bound ports.
func NewLauncher(requestPort, broadcastPort int) *Launcher {
	return &Launcher{requestPort: requestPort, broadcastPort: broadcastPort}
}

// SetError makes subsequent launches fail with err.
func (l *Launcher) SetError(err error) {
	l.mu.Lock()
	l.launchErr = err
	l.mu.Unlock()
}

// Launch implements kernel.Launcher, handing out a fresh fake process.
func (l *Launcher) Launch(requestPort, broadcastPort int) (*kernel.LaunchResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.launches++
	reqPort, subPort := l.requestPort, l.broadcastPort
	if requestPort != 0 {
		reqPort = requestPort
	}
	if broadcastPort != 0 {
		subPort = broadcastPort
	}
	l.lastProcess = NewProcess(10000 + l.launches)
	return &kernel.LaunchResult{
		Process:       l.lastProcess,
		RequestPort:   reqPort,
		BroadcastPort: subPort,
	}, nil
}

// Launches reports how many launches succeeded.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

// LastProcess returns the most recently launched fake process.
func (l *Launcher) LastProcess() *Process {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastProcess
}
