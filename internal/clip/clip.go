// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

// Package clip wraps the system clipboard and owns the lifecycle of a copied
// secret: delivery, and the guaranteed bounded-time wipe that follows it.
package clip

import (
	"github.com/atotto/clipboard"
)

// Copy writes text to the system clipboard.
func Copy(text string) error {
	return clipboard.WriteAll(text)
}

// Wipe overwrites the clipboard with an empty string.
func Wipe() error {
	return clipboard.WriteAll("")
}

// Available reports whether a clipboard is usable on this system. The probe
// is a read: platforms without a clipboard helper fail it immediately.
func Available() bool {
	if clipboard.Unsupported {
		return false
	}
	_, err := clipboard.ReadAll()
	return err == nil
}
