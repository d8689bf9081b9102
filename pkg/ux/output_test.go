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
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// Printer Tests
// =============================================================================

func TestPrinter_Error(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Error(errors.New("endpoint error: rate limited  "))

	out := buf.String()
	if !strings.Contains(out, "mychat:") {
		t.Errorf("expected program prefix, got %q", out)
	}
	if !strings.HasSuffix(out, "endpoint error: rate limited\n") {
		t.Errorf("expected trimmed message on one line, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("non-terminal output must not contain ANSI codes, got %q", out)
	}
}

func TestPrinter_ErrorNil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Error(nil)

	if buf.Len() != 0 {
		t.Errorf("nil error should print nothing, got %q", buf.String())
	}
}

func TestPrinter_HintAndWarning(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Warning("history unreadable")
	p.Hint("run 'mychat --help' for usage")
	p.Title("metrics")
	p.Raw("raw\n")

	out := buf.String()
	for _, want := range []string{"history unreadable", "run 'mychat --help' for usage", "metrics\n", "raw\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

// =============================================================================
// Sink Tests
// =============================================================================

func TestWriterSink_EmitAndFinish(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	for _, fragment := range []string{"Hel", "", "lo!"} {
		if err := sink.Emit(fragment); err != nil {
			t.Fatalf("Emit(%q) error: %v", fragment, err)
		}
	}
	if err := sink.Finish(); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	if got := buf.String(); got != "Hello!\n" {
		t.Errorf("output = %q, want %q", got, "Hello!\n")
	}
	if sink.Emitted() != len("Hello!") {
		t.Errorf("Emitted() = %d, want %d", sink.Emitted(), len("Hello!"))
	}
}

func TestWriterSink_FlushesBufferedWriter(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriterSize(&buf, 4096)
	sink := NewWriterSink(bw)

	if err := sink.Emit("tok"); err != nil {
		t.Fatalf("Emit error: %v", err)
	}

	if got := buf.String(); got != "tok" {
		t.Errorf("fragment must be flushed immediately, underlying writer has %q", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriterSink_WriteError(t *testing.T) {
	sink := NewWriterSink(failingWriter{})

	if err := sink.Emit("x"); err == nil {
		t.Error("expected write error to surface")
	}
	if sink.Emitted() != 0 {
		t.Errorf("failed write must not count, got %d", sink.Emitted())
	}
}
