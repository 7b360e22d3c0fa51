// File: channel/context.go
// Package channel defines the shared socket-creation context.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channel

import (
	"time"

	"go.uber.org/zap"
)

// defaultDialTimeout bounds the blocking connect performed during channel
// startup on the channel's own goroutine.
const defaultDialTimeout = 5 * time.Second

// Context carries process-wide transport resources shared by all channels of
// one kernel manager: the logger and socket dial policy.
type Context struct {
	log         *zap.Logger
	dialTimeout time.Duration
}

// ContextOption customizes context construction.
type ContextOption func(*Context)

// WithLogger attaches a structured logger used by all channels created from
// this context.
func WithLogger(log *zap.Logger) ContextOption {
	return func(c *Context) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDialTimeout overrides the connect timeout applied at channel startup.
func WithDialTimeout(d time.Duration) ContextOption {
	return func(c *Context) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// NewContext creates a context with a no-op logger and default dial policy.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		log:         zap.NewNop(),
		dialTimeout: defaultDialTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger exposes the context logger.
func (c *Context) Logger() *zap.Logger {
	return c.log
}
