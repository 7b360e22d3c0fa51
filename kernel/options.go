// File: kernel/options.go
// Package kernel defines functional options for the Manager façade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package kernel

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-kernel/api"
	"github.com/momentics/hioload-kernel/channel"
	"github.com/momentics/hioload-kernel/session"
)

// Option customizes manager initialization.
type Option func(*Manager)

// WithLogger attaches a structured logger to the manager and, unless a
// context is supplied explicitly, to the channels it creates.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithContext supplies a pre-built shared channel context.
func WithContext(ctx *channel.Context) Option {
	return func(m *Manager) { m.ctx = ctx }
}

// WithSession supplies a pre-built session/envelope builder.
func WithSession(sess *session.Session) Option {
	return func(m *Manager) { m.sess = sess }
}

// WithLauncher supplies the kernel-launch collaborator used by StartKernel.
func WithLauncher(l Launcher) Option {
	return func(m *Manager) { m.launcher = l }
}

// WithBroadcastHandler sets the consumer of kernel-published events.
func WithBroadcastHandler(h api.MessageHandler) Option {
	return func(m *Manager) { m.broadcastHandler = h }
}

// WithRequestHandler sets the consumer of kernel replies.
func WithRequestHandler(h api.MessageHandler) Option {
	return func(m *Manager) { m.requestHandler = h }
}

// WithReverseHandler sets the consumer of kernel-initiated input requests.
func WithReverseHandler(h api.MessageHandler) Option {
	return func(m *Manager) { m.reverseHandler = h }
}
