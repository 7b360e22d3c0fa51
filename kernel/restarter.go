// File: kernel/restarter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Restarter monitors a kernel's liveness and restarts the process when it
// dies. One restart is attempted; if the kernel is still dead on the next
// poll, the kernel is declared dead and monitoring stops.

package kernel

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RestartEvent names the restarter callback hooks.
type RestartEvent string

const (
	// EventRestart fires when the kernel has died and will be restarted.
	EventRestart RestartEvent = "restart"
	// EventDead fires when a restart has failed and the kernel is left dead.
	EventDead RestartEvent = "dead"
)

// defaultPollInterval is the liveness poll period.
const defaultPollInterval = 3 * time.Second

// Restarter polls Manager.IsAlive and auto-restarts the kernel process.
type Restarter struct {
	mgr      *Manager
	log      *zap.Logger
	interval time.Duration

	mu         sync.Mutex
	callbacks  map[RestartEvent][]func()
	restarting bool
	running    bool
	stop       chan struct{}
	done       chan struct{}
}

// NewRestarter creates a restarter polling every interval; interval <= 0
// selects the default.
func NewRestarter(mgr *Manager, interval time.Duration) *Restarter {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Restarter{
		mgr:      mgr,
		log:      mgr.log.Named("restarter"),
		interval: interval,
		callbacks: map[RestartEvent][]func(){
			EventRestart: nil,
			EventDead:    nil,
		},
	}
}

// AddCallback registers fn to fire on the given event.
func (r *Restarter) AddCallback(event RestartEvent, fn func()) {
	r.mu.Lock()
	r.callbacks[event] = append(r.callbacks[event], fn)
	r.mu.Unlock()
}

// Start begins polling the kernel. The restarter can be started again after
// Stop.
func (r *Restarter) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("restarter already running")
	}
	r.running = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	stop, done := r.stop, r.done
	r.mu.Unlock()

	go r.run(stop, done)
	return nil
}

// Stop ends polling and waits for the monitor goroutine to exit.
func (r *Restarter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done
}

func (r *Restarter) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !r.poll() {
				r.mu.Lock()
				r.running = false
				r.mu.Unlock()
				return
			}
		}
	}
}

// poll checks liveness once; a false return ends monitoring.
func (r *Restarter) poll() bool {
	r.log.Debug("polling kernel")
	if r.mgr.IsAlive() {
		r.mu.Lock()
		if r.restarting {
			r.log.Debug("restart apparently succeeded")
		}
		r.restarting = false
		r.mu.Unlock()
		return true
	}

	r.mu.Lock()
	restarting := r.restarting
	r.mu.Unlock()

	if restarting {
		r.log.Warn("restart failed, kernel left dead")
		r.fire(EventDead)
		r.mu.Lock()
		r.restarting = false
		r.mu.Unlock()
		return false
	}

	r.log.Info("kernel died, restarting")
	r.fire(EventRestart)
	if err := r.mgr.RestartKernel(); err != nil {
		r.log.Error("restart attempt failed", zap.Error(err))
	}
	r.mu.Lock()
	r.restarting = true
	r.mu.Unlock()
	return true
}

func (r *Restarter) fire(event RestartEvent) {
	r.mu.Lock()
	callbacks := append([]func(){}, r.callbacks[event]...)
	r.mu.Unlock()
	for _, fn := range callbacks {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.log.Error("restarter callback panicked",
						zap.String("event", string(event)),
						zap.Any("panic", rec))
				}
			}()
			fn()
		}()
	}
}
