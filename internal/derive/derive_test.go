// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.
package derive

import (
	"strings"
	"testing"
)

// testKey is an arbitrary but fixed 64-byte master key so the rendering tests
// don't pay the scrypt cost.
func testKey() []byte {
	key := make([]byte, keySize)
	for i := range key {
		key[i] = byte(i * 7)
	}
	return key
}

func TestMasterKeyStretching(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt is expensive")
	}
	key, err := MasterKey("Jane Doe", []byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("MasterKey failed: %v", err)
	}
	if len(key) != keySize {
		t.Fatalf("master key length = %d, want %d", len(key), keySize)
	}

	// Same inputs, same key.
	again, err := MasterKey("Jane Doe", []byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("MasterKey failed: %v", err)
	}
	if string(key) != string(again) {
		t.Fatal("master key derivation is not deterministic")
	}
}

func TestMasterKeyRejectsEmptyInputs(t *testing.T) {
	if _, err := MasterKey("", []byte("pw")); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := MasterKey("Jane Doe", nil); err == nil {
		t.Error("expected error for empty passphrase")
	}
}

func TestPasswordDeterminism(t *testing.T) {
	key := testKey()
	a, err := Password(key, "example.com", "long", 1)
	if err != nil {
		t.Fatalf("Password failed: %v", err)
	}
	b, err := Password(key, "example.com", "long", 1)
	if err != nil {
		t.Fatalf("Password failed: %v", err)
	}
	if a != b {
		t.Fatalf("derivation not deterministic: %q vs %q", a, b)
	}
}

func TestPasswordCounterRotation(t *testing.T) {
	key := testKey()
	first, _ := Password(key, "example.com", "long", 1)
	second, _ := Password(key, "example.com", "long", 2)
	if first == second {
		t.Fatal("different counters must produce different passwords")
	}
}

func TestPasswordShapes(t *testing.T) {
	key := testKey()

	cases := []struct {
		class  string
		length int
	}{
		{"maximum", 20},
		{"long", 14},
		{"medium", 8},
		{"basic", 8},
		{"short", 4},
		{"pin", 4},
		{"name", 9},
	}
	for _, tc := range cases {
		pw, err := Password(key, "example.com", tc.class, 1)
		if err != nil {
			t.Fatalf("Password(%s) failed: %v", tc.class, err)
		}
		if len(pw) != tc.length {
			t.Errorf("class %s: length = %d, want %d (%q)", tc.class, len(pw), tc.length, pw)
		}
	}
}

func TestPasswordPinIsNumeric(t *testing.T) {
	pw, err := Password(testKey(), "bank.example", "pin", 1)
	if err != nil {
		t.Fatalf("Password failed: %v", err)
	}
	for _, r := range pw {
		if r < '0' || r > '9' {
			t.Fatalf("pin %q contains non-digit %q", pw, r)
		}
	}
}

func TestPasswordPhraseHasSpaces(t *testing.T) {
	pw, err := Password(testKey(), "example.com", "phrase", 1)
	if err != nil {
		t.Fatalf("Password failed: %v", err)
	}
	if !strings.Contains(pw, " ") {
		t.Fatalf("phrase %q should contain spaces", pw)
	}
}

func TestPasswordValidation(t *testing.T) {
	key := testKey()
	if _, err := Password(key, "", "long", 1); err == nil {
		t.Error("expected error for empty site")
	}
	if _, err := Password(key, "example.com", "bogus", 1); err == nil {
		t.Error("expected error for unknown class")
	}
	if _, err := Password(key, "example.com", "long", 0); err == nil {
		t.Error("expected error for zero counter")
	}
	if _, err := Password(key[:10], "example.com", "long", 1); err == nil {
		t.Error("expected error for short key")
	}
}

func TestClassesPublished(t *testing.T) {
	classes := Classes()
	if len(classes) == 0 {
		t.Fatal("Classes returned nothing")
	}
	for _, c := range classes {
		if !ValidClass(c) {
			t.Errorf("published class %q not accepted by ValidClass", c)
		}
	}
	if ValidClass("nope") {
		t.Error("ValidClass accepted an unknown class")
	}
}
