// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.
package session

import (
	"testing"
	"time"
)

// newTestWatchdog shrinks the recheck granularity so the cadence tests run in
// milliseconds instead of seconds.
func newTestWatchdog(threshold time.Duration) *Watchdog {
	w := NewWatchdog(threshold)
	w.granularity = 5 * time.Millisecond
	return w
}

func TestWatchdogDisabled(t *testing.T) {
	var w *Watchdog
	if NewWatchdog(0) != nil {
		t.Fatal("zero threshold must disable the watchdog")
	}
	// All operations on a disabled watchdog are no-ops.
	w.Start()
	w.NotifyActivity()
	w.Stop()
	if w.Timeout() != nil {
		t.Fatal("disabled watchdog must expose a nil timeout channel")
	}
}

func TestWatchdogNeverFiresWhileActive(t *testing.T) {
	w := newTestWatchdog(100 * time.Millisecond)
	w.Start()
	defer w.Stop()

	// Activity gaps strictly below the threshold for several threshold
	// lengths must never produce a timeout.
	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case <-w.Timeout():
			t.Fatal("watchdog fired despite continuous activity")
		case <-time.After(30 * time.Millisecond):
			w.NotifyActivity()
		}
	}
}

func TestWatchdogFiresOnceAfterSilence(t *testing.T) {
	w := newTestWatchdog(60 * time.Millisecond)
	w.Start()

	select {
	case <-w.Timeout():
		// fired as expected
	case <-time.After(300 * time.Millisecond):
		t.Fatal("watchdog did not fire after a full threshold of silence")
	}

	// Exactly once: no second event arrives.
	select {
	case <-w.Timeout():
		t.Fatal("watchdog fired a second time")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatchdogLateActivityDefersTimeout(t *testing.T) {
	w := newTestWatchdog(100 * time.Millisecond)
	start := time.Now()
	w.Start()

	time.Sleep(60 * time.Millisecond)
	w.NotifyActivity()

	select {
	case <-w.Timeout():
		elapsed := time.Since(start)
		// Activity at ~60ms pushes the earliest legal timeout to ~160ms.
		if elapsed < 150*time.Millisecond {
			t.Fatalf("fired after %v, before the deferred deadline", elapsed)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("watchdog never fired after activity stopped")
	}
}

func TestWatchdogStopPreventsFiring(t *testing.T) {
	w := newTestWatchdog(40 * time.Millisecond)
	w.Start()
	w.Stop()

	select {
	case <-w.Timeout():
		t.Fatal("stopped watchdog fired")
	case <-time.After(120 * time.Millisecond):
	}
}
