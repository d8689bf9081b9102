// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stream decodes a chat reply body.
//
// The live path (Decoder.Decode) reads an event-stream line by line and
// forwards text as it arrives. The fallback path (Decoder.Fallback) parses
// the buffered non-event lines as one JSON document when nothing streamed.
//
// Parsers only classify lines. They do no I/O and hold no state.
package stream

import "strings"

// =============================================================================
// Line Classification
// =============================================================================

// LineKind classifies one line of a reply body.
type LineKind int

const (
	// LinePassthrough is any line not starting with "data:". It is kept
	// verbatim for the fallback parse.
	LinePassthrough LineKind = iota

	// LineNoop is a data line with an empty payload or the "[DONE]"
	// sentinel. It marks the body as streamed but carries no text.
	LineNoop

	// LineData is a data line with a payload to interpret.
	LineData
)

// String returns the kind name.
func (k LineKind) String() string {
	switch k {
	case LineNoop:
		return "noop"
	case LineData:
		return "data"
	default:
		return "passthrough"
	}
}

// DataPrefix starts every event-stream data line.
const DataPrefix = "data:"

// DoneSentinel is the payload that announces the end of a stream.
const DoneSentinel = "[DONE]"

// Line is a classified body line.
type Line struct {
	Kind LineKind

	// Payload is the data after the prefix for LineData and LineNoop, and
	// the whole line (without line terminator) for LinePassthrough.
	Payload string
}

// IsData reports whether the line began with the data prefix.
func (l Line) IsData() bool {
	return l.Kind == LineData || l.Kind == LineNoop
}

// ParseLine classifies a single line.
//
// # Description
//
// A trailing "\n" and then "\r" are dropped first. Lines starting with
// "data:" have the prefix and at most one following space stripped; the
// rest is the payload. Payloads that are blank or equal "[DONE]" are
// no-ops. Every other line is passthrough.
//
// # Example
//
//	ParseLine(`data: {"response":"Hi"}`)  // {LineData, `{"response":"Hi"}`}
//	ParseLine("data: [DONE]\r")           // {LineNoop, "[DONE]"}
//	ParseLine(`{"error":null}`)           // {LinePassthrough, `{"error":null}`}
func ParseLine(raw string) Line {
	line := strings.TrimSuffix(raw, "\n")
	line = strings.TrimSuffix(line, "\r")

	if !strings.HasPrefix(line, DataPrefix) {
		return Line{Kind: LinePassthrough, Payload: line}
	}

	payload := strings.TrimPrefix(line, DataPrefix)
	payload = strings.TrimPrefix(payload, " ")

	if trimmed := strings.TrimSpace(payload); trimmed == "" || trimmed == DoneSentinel {
		return Line{Kind: LineNoop, Payload: payload}
	}
	return Line{Kind: LineData, Payload: payload}
}
