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
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/endpoint"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/util"
)

// Fallback parses a non-streamed body as a single JSON document.
//
// # Description
//
// Only meaningful when Decode reported Streamed == false; raw is then the
// whole body. The outcomes are:
//
//   - raw is not valid JSON: "" and no error
//   - raw carries a non-null "error": an EndpointError with its message
//   - otherwise: the shape's final text, emitted to the sink once
//
// # Inputs
//
//   - raw: Result.Raw from Decode
//
// # Outputs
//
//   - string: The extracted reply, possibly empty
//   - error: *util.ChatError of KindEndpoint, or a sink failure
//
// # Example
//
//	res, _ := dec.Decode(ctx, body)
//	if !res.Streamed {
//	    text, err := dec.Fallback(res.Raw)
//	}
func (d *Decoder) Fallback(raw string) (string, error) {
	d.metrics.ObserveFallback()

	body := []byte(raw)
	if !gjson.ValidBytes(body) {
		d.log.Debug("fallback body is not JSON", "body_bytes", len(body))
		return "", nil
	}

	if msg, isErr := endpoint.ErrorMessage(body); isErr {
		d.metrics.ObserveEndpointError()
		d.log.Warn("endpoint reported an error", "message", msg)
		return "", util.NewEndpointError(msg)
	}

	text := d.shape.FinalText(body)
	if text == "" {
		return "", nil
	}
	if err := d.sink.Emit(text); err != nil {
		return "", fmt.Errorf("%w: emit reply: %w", ErrOutput, err)
	}
	d.metrics.ObserveText(text)
	return text, nil
}
