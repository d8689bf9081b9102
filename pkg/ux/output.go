// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output for the mychat CLI: the sink that
// carries assistant text to stdout and styled diagnostics for stderr.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette - deep ocean teals with standard semantic colors
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Icon is a status glyph prefixed to diagnostics.
type Icon string

const (
	IconError   Icon = "✗"
	IconWarning Icon = "⚠"
	IconArrow   Icon = "→"
)

// Printer writes styled diagnostics to a single writer.
//
// Styles are rendered through a lipgloss renderer bound to that writer,
// so color is dropped automatically when it is not a terminal (pipes,
// files, test buffers).
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	mutedStyle   lipgloss.Style
	titleStyle   lipgloss.Style
}

// NewPrinter creates a Printer for w (normally os.Stderr).
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:            w,
		renderer:     r,
		errorStyle:   r.NewStyle().Foreground(ColorError).Bold(true),
		warningStyle: r.NewStyle().Foreground(ColorWarning),
		mutedStyle:   r.NewStyle().Foreground(ColorSlate),
		titleStyle:   r.NewStyle().Foreground(ColorTealBright).Bold(true),
	}
}

// Error prints "✗ mychat: <err>" on one line.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	msg := strings.TrimSpace(err.Error())
	fmt.Fprintf(p.w, "%s %s\n", p.errorStyle.Render(string(IconError)+" mychat:"), msg)
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	fmt.Fprintf(p.w, "%s %s\n", p.warningStyle.Render(string(IconWarning)), text)
}

// Hint prints a muted follow-up line, e.g. a usage pointer.
func (p *Printer) Hint(text string) {
	fmt.Fprintf(p.w, "%s %s\n", p.mutedStyle.Render(string(IconArrow)), p.mutedStyle.Render(text))
}

// Title prints a bold heading line.
func (p *Printer) Title(text string) {
	fmt.Fprintln(p.w, p.titleStyle.Render(text))
}

// Raw writes text unchanged. Used for blocks such as metrics dumps.
func (p *Printer) Raw(text string) {
	fmt.Fprint(p.w, text)
}
