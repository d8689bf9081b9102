// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package endpoint

import (
	"strings"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/transcript"
)

// DefaultTemperature is the sampling temperature sent with every request.
const DefaultTemperature = 0.7

// AccountPlaceholder is substituted with the account identifier in the API base.
const AccountPlaceholder = "{account_id}"

// Request is a fully formed chat request.
type Request struct {
	// URL is the target endpoint.
	URL string

	// Body is the JSON request body.
	Body []byte

	// Messages is the replayed history followed by the new user line,
	// exactly as embedded in Body.
	Messages []string
}

// Build merges history and the new user message into a request for shape.
//
// # Description
//
// History lines are inserted verbatim; only the new message is encoded
// here (through transcript.Quote). The resulting message array always has
// len(history)+1 elements with the new user line last.
//
// # Inputs
//
//   - shape: Endpoint variant to address
//   - base: API base URL, already resolved with ResolveBase
//   - history: Pre-serialized transcript lines (may be empty)
//   - user: The new user message
//   - model: Model identifier (shape.DefaultModel() when empty)
//   - temperature: Sampling temperature
//
// # Example
//
//	req := endpoint.Build(endpoint.Run(), base, nil, transcript.UserMessage("hi"), "", endpoint.DefaultTemperature)
//	// req.Body == {"messages":[{"role":"user","content":"hi"}],"temperature":0.7,"stream":true}
func Build(shape Shape, base string, history []string, user transcript.Message, model string, temperature float64) Request {
	if model == "" {
		model = shape.DefaultModel()
	}

	messages := make([]string, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, user.Line())

	return Request{
		URL:      shape.URL(strings.TrimRight(base, "/"), model),
		Body:     shape.Body(messages, model, temperature),
		Messages: messages,
	}
}

// ResolveBase substitutes accountID into base and trims trailing slashes.
func ResolveBase(base, accountID string) string {
	return strings.TrimRight(strings.ReplaceAll(base, AccountPlaceholder, accountID), "/")
}

func quote(s string) string {
	return transcript.Quote(s)
}
