// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"io"
)

// =============================================================================
// Sink Interface
// =============================================================================

// Sink receives assistant text as it is produced.
//
// Emit must make text visible immediately: streamed fragments are shown
// as they arrive, with no buffering delay.
type Sink interface {
	// Emit writes a text fragment and flushes it.
	Emit(text string) error
}

// flusher matches writers with an explicit flush (bufio.Writer and friends).
type flusher interface {
	Flush() error
}

// =============================================================================
// Writer Sink
// =============================================================================

// WriterSink is a Sink over an io.Writer, typically os.Stdout.
//
// # Description
//
// After every Emit the writer is flushed when it supports Flush. Nothing
// is added between fragments; Finish writes the single trailing newline
// that ends a reply.
//
// # Example
//
//	sink := ux.NewWriterSink(os.Stdout)
//	sink.Emit("Hel")
//	sink.Emit("lo!")
//	sink.Finish() // stdout now holds "Hello!\n"
type WriterSink struct {
	w       io.Writer
	emitted int
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes text and flushes. Empty text is a no-op.
func (s *WriterSink) Emit(text string) error {
	if text == "" {
		return nil
	}
	if _, err := io.WriteString(s.w, text); err != nil {
		return err
	}
	s.emitted += len(text)
	return s.flush()
}

// Emitted returns the number of bytes emitted so far.
func (s *WriterSink) Emitted() int {
	return s.emitted
}

// Finish writes exactly one trailing newline and flushes.
func (s *WriterSink) Finish() error {
	if _, err := io.WriteString(s.w, "\n"); err != nil {
		return err
	}
	return s.flush()
}

// flush pushes buffered writers through. *os.File is unbuffered, so a
// plain stdout needs nothing beyond the write.
func (s *WriterSink) flush() error {
	if f, ok := s.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

var _ Sink = (*WriterSink)(nil)
