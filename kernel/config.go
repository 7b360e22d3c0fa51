// File: kernel/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection-info files: a plain YAML document recording where a kernel's
// channels are reachable, so a frontend can attach to an already running
// kernel.

package kernel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-kernel/api"
)

// ConnectionInfo describes the endpoints of a running kernel.
type ConnectionInfo struct {
	IP            string `yaml:"ip"`
	RequestPort   int    `yaml:"request_port"`
	BroadcastPort int    `yaml:"broadcast_port"`
	ReversePort   int    `yaml:"reverse_port"`
}

// Validate checks port ranges and fills an empty IP with loopback.
func (ci *ConnectionInfo) Validate() error {
	if ci.IP == "" {
		ci.IP = api.Localhost
	}
	for name, port := range map[string]int{
		"request_port":   ci.RequestPort,
		"broadcast_port": ci.BroadcastPort,
		"reverse_port":   ci.ReversePort,
	} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("connection info: %s %d out of range", name, port)
		}
	}
	return nil
}

// LoadConnectionFile reads and validates a connection file.
func LoadConnectionFile(path string) (*ConnectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read connection file: %w", err)
	}
	ci := &ConnectionInfo{}
	if err := yaml.Unmarshal(data, ci); err != nil {
		return nil, fmt.Errorf("parse connection file %s: %w", path, err)
	}
	if err := ci.Validate(); err != nil {
		return nil, err
	}
	return ci, nil
}

// WriteFile persists the connection info as YAML.
func (ci *ConnectionInfo) WriteFile(path string) error {
	if err := ci.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(ci)
	if err != nil {
		return fmt.Errorf("encode connection file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write connection file: %w", err)
	}
	return nil
}

// ApplyConnectionInfo points all three channels at the endpoints in ci.
// Fails with api.ErrAlreadyRunning if any channel is alive.
func (m *Manager) ApplyConnectionInfo(ci *ConnectionInfo) error {
	if err := ci.Validate(); err != nil {
		return err
	}
	if err := m.SetRequestAddress(api.Address{Host: ci.IP, Port: ci.RequestPort}); err != nil {
		return err
	}
	if err := m.SetBroadcastAddress(api.Address{Host: ci.IP, Port: ci.BroadcastPort}); err != nil {
		return err
	}
	return m.SetReverseAddress(api.Address{Host: ci.IP, Port: ci.ReversePort})
}

// ConnectionInfo snapshots the current channel endpoints.
func (m *Manager) ConnectionInfo() (*ConnectionInfo, error) {
	reqAddr, err := m.RequestAddress()
	if err != nil {
		return nil, err
	}
	subAddr, err := m.BroadcastAddress()
	if err != nil {
		return nil, err
	}
	revAddr, err := m.ReverseAddress()
	if err != nil {
		return nil, err
	}
	return &ConnectionInfo{
		IP:            reqAddr.Normalize().Host,
		RequestPort:   reqAddr.Port,
		BroadcastPort: subAddr.Port,
		ReversePort:   revAddr.Port,
	}, nil
}
