// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Sitekey.
//
// Usage:
//
//	go run . [site] [flags]
//	./sitekey [site] [flags]
//
// This launches the Sitekey CLI. See --help for options.
package main

import (
	"os"

	"github.com/sitekey/sitekey/ui/cli"
)

// main is the entrypoint for the Sitekey CLI.
func main() {
	if err := cli.Execute(); err != nil {
		// The error has already been reported by the CLI layer.
		os.Exit(1)
	}
}
