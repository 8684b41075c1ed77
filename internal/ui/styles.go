// Copyright (c) 2026 Sitekey Authors
// Sitekey - deterministic per-site password generator
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ui holds the terminal output styling for the CLI. A Styles value is
// constructed once at startup and passed explicitly to every output routine;
// there is no mutable package-level color state.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the prompt loop and the CLI.
type Styles struct {
	Prompt lipgloss.Style
	Info   lipgloss.Style
	Error  lipgloss.Style
	Secret lipgloss.Style
}

// NewStyles builds the style set. With noColor set (or when the terminal
// profile strips colors anyway), every style renders plain text.
func NewStyles(noColor bool) *Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return &Styles{Prompt: plain, Info: plain, Error: plain, Secret: plain}
	}
	return &Styles{
		Prompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Secret: lipgloss.NewStyle().Bold(true),
	}
}
