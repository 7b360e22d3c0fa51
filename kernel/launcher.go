// File: kernel/launcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The kernel-launch collaborator: given the ports the frontend requested,
// start a kernel process and report the ports it actually bound.

package kernel

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// LaunchResult reports a launched kernel process and its bound ports.
type LaunchResult struct {
	Process       Process
	RequestPort   int
	BroadcastPort int
}

// Launcher starts a kernel process. A requested port of 0 asks the launcher
// to pick a free one; the result always carries concrete ports.
type Launcher interface {
	Launch(requestPort, broadcastPort int) (*LaunchResult, error)
}

// Argv placeholders substituted by CommandLauncher.
const (
	PlaceholderRequestPort   = "{request_port}"
	PlaceholderBroadcastPort = "{broadcast_port}"
)

// CommandLauncher launches a kernel executable with the channel ports
// substituted into its argument list.
type CommandLauncher struct {
	// Path is the kernel executable.
	Path string
	// Args are passed to the executable; PlaceholderRequestPort and
	// PlaceholderBroadcastPort are replaced with the resolved port numbers.
	Args []string
	// Env entries are appended to the inherited environment.
	Env []string
}

// Launch resolves OS-assigned ports, starts the kernel process and returns
// its handle together with the concrete ports.
func (l *CommandLauncher) Launch(requestPort, broadcastPort int) (*LaunchResult, error) {
	var err error
	if requestPort == 0 {
		if requestPort, err = freePort(); err != nil {
			return nil, fmt.Errorf("resolve request port: %w", err)
		}
	}
	if broadcastPort == 0 {
		if broadcastPort, err = freePort(); err != nil {
			return nil, fmt.Errorf("resolve broadcast port: %w", err)
		}
	}

	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		a = strings.ReplaceAll(a, PlaceholderRequestPort, strconv.Itoa(requestPort))
		a = strings.ReplaceAll(a, PlaceholderBroadcastPort, strconv.Itoa(broadcastPort))
		args[i] = a
	}

	cmd := exec.Command(l.Path, args...)
	cmd.Env = append(os.Environ(), l.Env...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch kernel %s: %w", l.Path, err)
	}
	// Reap the child so a killed kernel does not linger as a zombie.
	go func() { _ = cmd.Wait() }()

	return &LaunchResult{
		Process:       NewOSProcess(cmd.Process),
		RequestPort:   requestPort,
		BroadcastPort: broadcastPort,
	}, nil
}

// freePort asks the OS for an unused loopback TCP port.
func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		return 0, err
	}
	return port, nil
}
