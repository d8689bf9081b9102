// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/endpoint"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/telemetry"
	"github.com/AleutianAI/mychat/pkg/logging"
	"github.com/AleutianAI/mychat/pkg/ux"
)

// ErrOutput wraps failures writing to the sink. Read failures are not
// wrapped with it.
var ErrOutput = errors.New("output failed")

// =============================================================================
// Result
// =============================================================================

// Result is what one pass over a reply body produced.
type Result struct {
	// Text is the aggregate of every fragment emitted, in arrival order.
	Text string

	// Streamed is true once any line began with "data:", whether or not
	// it yielded text.
	Streamed bool

	// Raw holds every passthrough line joined with "\n". Only the
	// fallback parse reads it.
	Raw string

	// DataFrames counts data lines, no-ops included.
	DataFrames int

	// Fragments counts data lines that yielded non-empty text.
	Fragments int
}

// =============================================================================
// Decoder
// =============================================================================

// Decoder turns a reply body into text on a sink.
//
// # Description
//
// One Decoder serves one session. The endpoint shape is fixed at
// construction and decides how payloads map to text; the decoder itself
// knows only the line protocol.
//
// # Thread Safety
//
// Not safe for concurrent use. A session decodes one body at a time.
type Decoder struct {
	shape   endpoint.Shape
	sink    ux.Sink
	metrics *telemetry.Metrics
	log     *logging.Logger
}

// NewDecoder creates a decoder for shape writing to sink.
//
// metrics and log may be nil.
func NewDecoder(shape endpoint.Shape, sink ux.Sink, metrics *telemetry.Metrics, log *logging.Logger) *Decoder {
	if log == nil {
		log = logging.Nop()
	}
	return &Decoder{
		shape:   shape,
		sink:    sink,
		metrics: metrics,
		log:     log,
	}
}

// Decode reads body to the end, emitting text as it arrives.
//
// # Description
//
// Lines are split on "\n"; a final unterminated line is still handled.
// Each data payload is handed to the shape's stream extractor and any
// non-empty text is emitted to the sink at once and appended to the
// aggregate. Payloads that are not valid JSON are skipped. Passthrough
// lines are collected into Result.Raw.
//
// # Inputs
//
//   - ctx: Checked between lines
//   - body: Reply body, read until EOF
//
// # Outputs
//
//   - Result: Everything observed up to the point reading stopped
//   - error: A sink failure (wrapping ErrOutput), a read failure other
//     than EOF, or ctx's error.
//     Result is valid in every case.
func (d *Decoder) Decode(ctx context.Context, body io.Reader) (Result, error) {
	reader := bufio.NewReader(body)

	var (
		result Result
		text   strings.Builder
		raw    []string
	)
	finish := func() Result {
		result.Text = text.String()
		result.Raw = strings.Join(raw, "\n")
		return result
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		chunk, readErr := reader.ReadString('\n')
		if chunk != "" {
			line := ParseLine(chunk)

			switch line.Kind {
			case LinePassthrough:
				raw = append(raw, line.Payload)
				d.metrics.ObserveFrame(telemetry.FramePassthrough)

			case LineNoop:
				result.Streamed = true
				result.DataFrames++
				d.metrics.ObserveFrame(telemetry.FrameNoop)

			case LineData:
				result.Streamed = true
				result.DataFrames++

				payload := []byte(line.Payload)
				if !gjson.ValidBytes(payload) {
					d.metrics.ObserveFrame(telemetry.FrameMalformed)
					d.log.Debug("skipping malformed frame", "payload_bytes", len(payload))
					break
				}
				d.metrics.ObserveFrame(telemetry.FrameData)

				fragment := d.shape.StreamText(payload)
				if fragment == "" {
					break
				}
				if err := d.sink.Emit(fragment); err != nil {
					return finish(), fmt.Errorf("%w: emit fragment: %w", ErrOutput, err)
				}
				text.WriteString(fragment)
				result.Fragments++
				d.metrics.ObserveText(fragment)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return finish(), nil
			}
			return finish(), fmt.Errorf("read body: %w", readErr)
		}
	}
}
