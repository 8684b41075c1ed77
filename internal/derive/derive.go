// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

// Package derive implements the Master Password v3 derivation scheme: a
// scrypt-stretched master key computed once per session, and a pure,
// stateless per-site rendering that maps an HMAC-SHA256 seed through a
// class-specific password template. Nothing in this package performs I/O or
// retains state between calls.
package derive

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scope is the Master Password algorithm purpose string. It keys both the
// master-key salt and the site seed.
const scope = "com.lyndir.masterpassword"

// scrypt parameters fixed by the algorithm.
const (
	scryptN = 32768
	scryptR = 8
	scryptP = 2
	keySize = 64
)

// templates maps each template class to its template set. The seed's first
// byte selects the template; each subsequent byte selects a character from
// the class named by the template letter.
var templates = map[string][]string{
	"maximum": {"anoxxxxxxxxxxxxxxxxx", "axxxxxxxxxxxxxxxxxno"},
	"long": {
		"CvcvnoCvcvCvcv", "CvcvCvcvnoCvcv", "CvcvCvcvCvcvno",
		"CvccnoCvcvCvcv", "CvccCvcvnoCvcv", "CvccCvcvCvcvno",
		"CvcvnoCvccCvcv", "CvcvCvccnoCvcv", "CvcvCvccCvcvno",
		"CvcvnoCvcvCvcc", "CvcvCvcvnoCvcc", "CvcvCvcvCvccno",
		"CvccnoCvccCvcv", "CvccCvccnoCvcv", "CvccCvccCvcvno",
		"CvcvnoCvccCvcc", "CvcvCvccnoCvcc", "CvcvCvccCvccno",
		"CvccnoCvcvCvcc", "CvccCvcvnoCvcc", "CvccCvcvCvccno",
	},
	"medium": {"CvcnoCvc", "CvcCvcno"},
	"basic":  {"aaanaaan", "aannaaan", "aaannaaa"},
	"short":  {"Cvcn"},
	"pin":    {"nnnn"},
	"name":   {"cvccvcvcv"},
	"phrase": {"cvcc cvc cvccvcv cvc", "cvc cvccvcvcv cvcv", "cv cvccv cvc cvcvccv"},
}

// classOrder is the published ordering of template classes for help output
// and validation messages.
var classOrder = []string{"maximum", "long", "medium", "basic", "short", "pin", "name", "phrase"}

// charClasses maps a template letter to the characters it may produce.
var charClasses = map[byte]string{
	'V': "AEIOU",
	'C': "BCDFGHJKLMNPQRSTVWXYZ",
	'v': "aeiou",
	'c': "bcdfghjklmnpqrstvwxyz",
	'A': "AEIOUBCDFGHJKLMNPQRSTVWXYZ",
	'a': "AEIOUaeiouBCDFGHJKLMNPQRSTVWXYZbcdfghjklmnpqrstvwxyz",
	'n': "0123456789",
	'o': "@&%?,=[]_:-+*$#!'^~;()/.",
	'x': "AEIOUaeiouBCDFGHJKLMNPQRSTVWXYZbcdfghjklmnpqrstvwxyz0123456789!@#$%^&*()",
	' ': " ",
}

// Classes returns the valid template class names in display order.
func Classes() []string {
	out := make([]string, len(classOrder))
	copy(out, classOrder)
	return out
}

// ValidClass reports whether class names a known template class.
func ValidClass(class string) bool {
	_, ok := templates[class]
	return ok
}

// ClassList returns the valid class names as a single comma-separated string,
// for use in error and help messages.
func ClassList() string { return strings.Join(classOrder, ", ") }

// MasterKey stretches a full name and master passphrase into the 64-byte
// master key. This is the only expensive operation in the package; callers
// run it once and must scrub the passphrase afterwards.
func MasterKey(name string, passphrase []byte) ([]byte, error) {
	if name == "" {
		return nil, errors.New("derive: name must not be empty")
	}
	if len(passphrase) == 0 {
		return nil, errors.New("derive: passphrase must not be empty")
	}

	salt := make([]byte, 0, len(scope)+4+len(name))
	salt = append(salt, scope...)
	salt = binary.BigEndian.AppendUint32(salt, uint32(len(name)))
	salt = append(salt, name...)

	return scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, keySize)
}

// Password renders the site password for (site, class, counter) from a master
// key. The function is total over valid inputs: identical arguments always
// produce the identical password.
func Password(key []byte, site, class string, counter uint32) (string, error) {
	if len(key) != keySize {
		return "", fmt.Errorf("derive: master key must be %d bytes, got %d", keySize, len(key))
	}
	if site == "" {
		return "", errors.New("derive: site must not be empty")
	}
	if counter < 1 {
		return "", fmt.Errorf("derive: counter must be >= 1, got %d", counter)
	}
	set, ok := templates[class]
	if !ok {
		return "", fmt.Errorf("derive: unknown template class %q (valid: %s)", class, ClassList())
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(scope))
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(len(site)))
	mac.Write(buf[:])
	mac.Write([]byte(site))
	binary.BigEndian.PutUint32(buf[:], counter)
	mac.Write(buf[:])
	seed := mac.Sum(nil)

	tpl := set[int(seed[0])%len(set)]
	var b strings.Builder
	b.Grow(len(tpl))
	for i := 0; i < len(tpl); i++ {
		chars := charClasses[tpl[i]]
		b.WriteByte(chars[int(seed[i+1])%len(chars)])
	}
	return b.String(), nil
}
