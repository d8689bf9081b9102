// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// Spinner animates a waiting indicator on one terminal line.
//
// # Description
//
// Meant for stderr while no reply text has arrived. Stop erases the
// line, so text written to stdout afterwards starts on a clean line.
// Only use it when the writer is a terminal.
//
// # Thread Safety
//
// Start and Stop may be called from any goroutine, any number of times.
type Spinner struct {
	w       io.Writer
	message string
	style   lipgloss.Style

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a stopped spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		style:   lipgloss.NewRenderer(w).NewStyle().Foreground(ColorTealBright),
	}
}

// Start begins the animation. A running spinner is left alone.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.animate(s.stop, s.done)
}

// Stop ends the animation and clears its line. Safe when not running.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-stop:
			fmt.Fprint(s.w, clearLine)
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r%s %s", s.style.Render(spinnerFrames[frame]), s.message)
			frame = (frame + 1) % len(spinnerFrames)
		}
	}
}

// =============================================================================
// Spinner Sink
// =============================================================================

// SpinnerSink stops a spinner before anything reaches the wrapped sink.
type SpinnerSink struct {
	inner   *WriterSink
	spinner *Spinner
}

// NewSpinnerSink wraps inner. The spinner is expected to be running.
func NewSpinnerSink(inner *WriterSink, spinner *Spinner) *SpinnerSink {
	return &SpinnerSink{inner: inner, spinner: spinner}
}

// Emit stops the spinner, then forwards text.
func (s *SpinnerSink) Emit(text string) error {
	if text == "" {
		return nil
	}
	s.spinner.Stop()
	return s.inner.Emit(text)
}

// Finish stops the spinner, then ends the reply.
func (s *SpinnerSink) Finish() error {
	s.spinner.Stop()
	return s.inner.Finish()
}
