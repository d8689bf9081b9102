// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package endpoint describes the two remote API variants a chat turn can
// target and builds the request for each.
//
// A Shape is selected once at startup. It owns everything that differs
// between the variants: URL, body layout, and how reply text is pulled
// out of a streamed frame or a buffered body. Text extraction never
// fails; anything that does not match the expected layout yields "".
package endpoint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// =============================================================================
// Shape Interface
// =============================================================================

// Shape is the strategy for one endpoint variant.
//
// # Thread Safety
//
// Implementations are stateless and safe for concurrent use.
type Shape interface {
	// Name is the identifier used in config and on the command line.
	Name() string

	// DefaultModel is the model used when none is configured.
	DefaultModel() string

	// URL returns the request URL under base (no trailing slash) for model.
	URL(base, model string) string

	// Body renders the request body. messages are pre-serialized JSON
	// message objects inserted verbatim into the array.
	Body(messages []string, model string, temperature float64) []byte

	// StreamText extracts the text carried by one streamed "data:" payload.
	StreamText(payload []byte) string

	// FinalText extracts the reply text from a complete, non-streamed body.
	FinalText(body []byte) string
}

// Shape names.
const (
	NameRun       = "run"
	NameResponses = "responses"
)

var shapes = map[string]Shape{
	NameRun:       runShape{},
	NameResponses: responsesShape{},
}

// ByName returns the shape registered under name.
func ByName(name string) (Shape, error) {
	shape, ok := shapes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %q (want one of: %s)", name, strings.Join(Names(), ", "))
	}
	return shape, nil
}

// Names lists the registered shape names in sorted order.
func Names() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run returns the Run-style shape.
func Run() Shape { return runShape{} }

// Responses returns the Responses-style shape.
func Responses() Shape { return responsesShape{} }

// =============================================================================
// Run-style
// =============================================================================

// runShape targets ".../ai/run/<model>". Streamed frames and buffered
// bodies carry a flat "response" string; buffered bodies may wrap it in
// a "result" object.
type runShape struct{}

func (runShape) Name() string         { return NameRun }
func (runShape) DefaultModel() string { return "@cf/meta/llama-3.1-8b-instruct" }

func (runShape) URL(base, model string) string {
	return base + "/ai/run/" + model
}

func (runShape) Body(messages []string, _ string, temperature float64) []byte {
	var b strings.Builder
	b.WriteString(`{"messages":`)
	writeArray(&b, messages)
	b.WriteString(`,"temperature":`)
	b.WriteString(formatTemperature(temperature))
	b.WriteString(`,"stream":true}`)
	return []byte(b.String())
}

func (runShape) StreamText(payload []byte) string {
	root, ok := parseObject(payload)
	if !ok {
		return ""
	}
	return stringField(root.Get("response"))
}

func (runShape) FinalText(body []byte) string {
	root, ok := parseObject(body)
	if !ok {
		return ""
	}
	if nested := root.Get("result.response"); nested.Exists() {
		return stringField(nested)
	}
	return stringField(root.Get("response"))
}

// =============================================================================
// Responses-style
// =============================================================================

// responsesShape targets ".../ai/v1/responses". Text lives in the
// "content" list of every "output" element whose type is "message".
type responsesShape struct{}

// outputTextDelta is the event type of an incremental Responses frame.
const outputTextDelta = "response.output_text.delta"

func (responsesShape) Name() string         { return NameResponses }
func (responsesShape) DefaultModel() string { return "@cf/openai/gpt-oss-120b" }

func (responsesShape) URL(base, _ string) string {
	return base + "/ai/v1/responses"
}

func (responsesShape) Body(messages []string, model string, temperature float64) []byte {
	var b strings.Builder
	b.WriteString(`{"model":`)
	b.WriteString(quote(model))
	b.WriteString(`,"input":`)
	writeArray(&b, messages)
	b.WriteString(`,"temperature":`)
	b.WriteString(formatTemperature(temperature))
	b.WriteByte('}')
	return []byte(b.String())
}

func (responsesShape) StreamText(payload []byte) string {
	root, ok := parseObject(payload)
	if !ok {
		return ""
	}
	if eventType := root.Get("type"); eventType.Type == gjson.String && eventType.Str == outputTextDelta {
		return stringField(root.Get("delta"))
	}
	return messageText(root)
}

func (responsesShape) FinalText(body []byte) string {
	root, ok := parseObject(body)
	if !ok {
		return ""
	}
	return messageText(root)
}

// messageText concatenates content[].text of every output[] element of
// type "message", in order. Missing or non-string text contributes nothing.
func messageText(root gjson.Result) string {
	output := root.Get("output")
	if !output.IsArray() {
		return ""
	}

	var b strings.Builder
	for _, item := range output.Array() {
		if kind := item.Get("type"); kind.Type != gjson.String || kind.Str != "message" {
			continue
		}
		content := item.Get("content")
		if !content.IsArray() {
			continue
		}
		for _, part := range content.Array() {
			b.WriteString(stringField(part.Get("text")))
		}
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// parseObject parses data as a JSON object. ok is false for invalid JSON
// or any non-object document.
func parseObject(data []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, false
	}
	root := gjson.ParseBytes(data)
	return root, root.IsObject()
}

// stringField returns the value of r if it is a JSON string, "" otherwise.
func stringField(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

func writeArray(b *strings.Builder, elems []string) {
	b.WriteByte('[')
	for i, elem := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(elem)
	}
	b.WriteByte(']')
}

func formatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
