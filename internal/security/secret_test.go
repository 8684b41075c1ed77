// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.
package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestSecretRedactionAndJSON(t *testing.T) {
	s := FromString("supersecret")
	if fmt.Sprintf("%v", s) != "[SECRET]" {
		t.Fatalf("unexpected fmt output: %q", fmt.Sprintf("%v", s))
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if string(b) != "\"[SECRET]\"" {
		t.Fatalf("unexpected json marshal: %s", string(b))
	}
}

func TestSecretZero(t *testing.T) {
	s := FromString("abc123")
	(&s).Zero()
	// Inspect the underlying bytes using Use to avoid creating copies.
	if err := s.Use(func(b []byte) error {
		for i := range b {
			if b[i] != 0 {
				t.Fatalf("expected zeroed byte at index %d, got %d", i, b[i])
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("s.Use failed: %v", err)
	}
}

// TestSecretBytes tests that Bytes() returns an independent copy.
func TestSecretBytes(t *testing.T) {
	s := Secret([]byte("sensitive"))

	copy1 := s.Bytes()
	if !bytes.Equal(copy1, []byte("sensitive")) {
		t.Fatalf("copy doesn't match original: %v", copy1)
	}

	copy1[0] = 'X'
	if s[0] != 's' {
		t.Fatalf("modifying copy affected original: %v", s)
	}
}

// TestSecretUse tests that Use executes the callback with the underlying
// bytes and propagates its error.
func TestSecretUse(t *testing.T) {
	s := FromString("testdata")
	callCount := 0

	err := s.Use(func(b []byte) error {
		callCount++
		if string(b) != "testdata" {
			return errors.New("unexpected byte slice content")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	if callCount != 1 {
		t.Fatalf("callback not called exactly once, count: %d", callCount)
	}

	testErr := errors.New("callback error")
	if err := s.Use(func([]byte) error { return testErr }); err != testErr {
		t.Fatalf("expected %v, got %v", testErr, err)
	}
}
