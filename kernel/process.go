// File: kernel/process.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kernel

import (
	"os"
	"syscall"
)

// Process is the handle the manager holds on an external kernel process.
// The handle is owned solely by the manager; kill and signal are expected to
// be called from the owning thread only.
type Process interface {
	// Pid returns the OS process id.
	Pid() int
	// Kill forcibly terminates the process.
	Kill() error
	// Signal forwards an OS signal to the process.
	Signal(sig os.Signal) error
	// Alive reports whether the process still exists.
	Alive() bool
}

// osProcess wraps a started *os.Process.
type osProcess struct {
	proc *os.Process
}

// NewOSProcess adopts a started OS process as a kernel process handle.
func NewOSProcess(proc *os.Process) Process {
	return &osProcess{proc: proc}
}

func (p *osProcess) Pid() int {
	return p.proc.Pid
}

func (p *osProcess) Kill() error {
	return p.proc.Kill()
}

func (p *osProcess) Signal(sig os.Signal) error {
	return p.proc.Signal(sig)
}

// Alive probes the process with signal 0.
func (p *osProcess) Alive() bool {
	return p.proc.Signal(syscall.Signal(0)) == nil
}
