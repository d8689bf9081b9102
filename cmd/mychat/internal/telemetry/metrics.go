// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry holds the per-run metrics registry and the optional
// stdout trace exporter.
package telemetry

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Frame kinds counted by Metrics.ObserveFrame.
const (
	FrameData        = "data"
	FrameNoop        = "noop"
	FrameMalformed   = "malformed"
	FramePassthrough = "passthrough"
)

// Metrics counts what a single chat run saw on the wire.
//
// # Description
//
// A fresh registry is created per run rather than using the global
// default, so repeated runs in one process (tests) never collide on
// registration. All methods are nil-safe: a nil *Metrics records nothing.
//
// # Example
//
//	metrics := telemetry.NewMetrics()
//	metrics.ObserveFrame(telemetry.FrameData)
//	metrics.WriteText(os.Stderr)
type Metrics struct {
	registry *prometheus.Registry

	// Frames counts stream lines by kind.
	Frames *prometheus.CounterVec

	// TextFragments counts fragments emitted to the output sink.
	TextFragments prometheus.Counter

	// TextBytes counts bytes of assistant text emitted.
	TextBytes prometheus.Counter

	// FallbackDecodes counts runs that fell back to the buffered body parse.
	FallbackDecodes prometheus.Counter

	// EndpointErrors counts error bodies returned by the endpoint.
	EndpointErrors prometheus.Counter
}

// NewMetrics creates and registers the counters on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mychat",
			Name:      "stream_frames_total",
			Help:      "Stream lines observed, by kind (data, noop, malformed, passthrough).",
		}, []string{"kind"}),
		TextFragments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mychat",
			Name:      "text_fragments_total",
			Help:      "Assistant text fragments written to the output.",
		}),
		TextBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mychat",
			Name:      "text_bytes_total",
			Help:      "Bytes of assistant text written to the output.",
		}),
		FallbackDecodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mychat",
			Name:      "fallback_decodes_total",
			Help:      "Responses decoded from the buffered body because nothing streamed.",
		}),
		EndpointErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mychat",
			Name:      "endpoint_errors_total",
			Help:      "Error bodies returned by the endpoint.",
		}),
	}
	m.registry.MustRegister(m.Frames, m.TextFragments, m.TextBytes, m.FallbackDecodes, m.EndpointErrors)
	return m
}

// ObserveFrame counts one stream line of the given kind.
func (m *Metrics) ObserveFrame(kind string) {
	if m == nil {
		return
	}
	m.Frames.WithLabelValues(kind).Inc()
}

// ObserveText counts one emitted fragment.
func (m *Metrics) ObserveText(text string) {
	if m == nil || text == "" {
		return
	}
	m.TextFragments.Inc()
	m.TextBytes.Add(float64(len(text)))
}

// ObserveFallback counts a fallback decode.
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.FallbackDecodes.Inc()
}

// ObserveEndpointError counts an endpoint error body.
func (m *Metrics) ObserveEndpointError() {
	if m == nil {
		return
	}
	m.EndpointErrors.Inc()
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteText dumps every metric family in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("encode metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
