// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session drives the interactive derivation loop: parameter
// acquisition, validation, delivery, and the idle watchdog that can end an
// unattended session.
package session

import (
	"sync"
	"time"
)

// Watchdog ends a session after a configured stretch of user silence. It
// tracks the last activity and the last recheck timestamps; a chained recheck
// either fires the timeout or reschedules itself by however far activity has
// advanced past the previous recheck. When the user stays silent the chain
// converges on one recheck per threshold, so total time-to-timeout stays at
// roughly the threshold with recheck granularity never below one second.
//
// A nil *Watchdog is valid and permanently disabled: Start, Stop and
// NotifyActivity are no-ops and Timeout returns a nil channel that never
// delivers.
type Watchdog struct {
	mu          sync.Mutex
	active      time.Time // last user activity (keepalive)
	scheduled   time.Time // last time a recheck decided to continue
	threshold   time.Duration
	granularity time.Duration // floor for the recheck delay
	timer       *time.Timer
	stopped     bool
	timeout     chan struct{}
}

// NewWatchdog returns an armed-but-not-started watchdog, or nil (disabled)
// when threshold is not positive.
func NewWatchdog(threshold time.Duration) *Watchdog {
	if threshold <= 0 {
		return nil
	}
	return &Watchdog{
		threshold:   threshold,
		granularity: time.Second,
		timeout:     make(chan struct{}, 1),
	}
}

// Start records now as both last-activity and last-recheck, then arranges the
// first recheck after the full threshold.
func (w *Watchdog) Start() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.active = now
	w.scheduled = now
	w.timer = time.AfterFunc(w.threshold, w.recheck)
}

// NotifyActivity marks the user as present, pushing the timeout deadline out.
func (w *Watchdog) NotifyActivity() {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.active = time.Now()
	w.mu.Unlock()
}

// Timeout returns the channel on which the single timeout event is delivered.
// For a disabled watchdog the channel is nil and blocks forever in a select.
func (w *Watchdog) Timeout() <-chan struct{} {
	if w == nil {
		return nil
	}
	return w.timeout
}

// Stop halts the recheck chain without firing.
func (w *Watchdog) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

// recheck runs on the timer goroutine. It fires the timeout when the user has
// been silent for at least the full threshold measured from the last recorded
// activity, not from the last recheck. Otherwise it reschedules itself by
// round(active - scheduled), floor-clamped to the granularity so two nearly
// equal timestamps cannot cause busy rescheduling.
func (w *Watchdog) recheck() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	if now.Sub(w.active) >= w.threshold {
		w.stopped = true
		w.mu.Unlock()
		select {
		case w.timeout <- struct{}{}:
		default:
		}
		return
	}
	next := w.active.Sub(w.scheduled).Round(w.granularity)
	if next < w.granularity {
		next = w.granularity
	}
	w.scheduled = now
	w.timer = time.AfterFunc(next, w.recheck)
	w.mu.Unlock()
}
