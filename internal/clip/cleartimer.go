// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

package clip

import (
	"sync"
	"time"
)

// ClearTimer owns at most one pending clipboard wipe. Scheduling a new wipe
// always cancels the pending one first, so a stale timer can never clear the
// clipboard after a fresh copy superseded it.
type ClearTimer struct {
	mu    sync.Mutex
	timer *time.Timer
	wipe  func() error
}

// NewClearTimer returns a ClearTimer that wipes with the given function, or
// the real system clipboard wipe when nil.
func NewClearTimer(wipe func() error) *ClearTimer {
	if wipe == nil {
		wipe = Wipe
	}
	return &ClearTimer{wipe: wipe}
}

// Schedule arranges a clipboard wipe after delay, superseding any pending
// wipe. The wipe is best effort: by the time it fires the secret's exposure
// window has elapsed, so a failed clipboard write is swallowed.
func (c *ClearTimer) Schedule(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	wipe := c.wipe
	c.timer = time.AfterFunc(delay, func() {
		_ = wipe()
	})
}

// Cancel stops any pending wipe without replacement. Called on every teardown
// path and whenever a non-clipboard delivery is taken.
func (c *ClearTimer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
