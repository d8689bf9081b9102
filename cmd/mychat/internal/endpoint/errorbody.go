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

import "github.com/tidwall/gjson"

// UnknownErrorMessage is reported when an error body carries no usable message.
const UnknownErrorMessage = "Unknown endpoint error"

// ErrorMessage reports whether body is an endpoint error and its message.
//
// # Description
//
// The rule is the same for both shapes: body is a JSON object whose
// top-level "error" field exists and is not null. The message is
// error.message when it is a non-empty string, else error itself when it
// is a non-empty string, else UnknownErrorMessage.
//
// # Example
//
//	msg, ok := ErrorMessage([]byte(`{"error":{"message":"rate limited"}}`))
//	// msg == "rate limited", ok == true
//	_, ok = ErrorMessage([]byte(`{"error":null,"result":{"response":"hi"}}`))
//	// ok == false
func ErrorMessage(body []byte) (string, bool) {
	root, ok := parseObject(body)
	if !ok {
		return "", false
	}

	field := root.Get("error")
	if !field.Exists() || field.Type == gjson.Null {
		return "", false
	}

	if msg := stringField(field.Get("message")); msg != "" {
		return msg, true
	}
	if msg := stringField(field); msg != "" {
		return msg, true
	}
	return UnknownErrorMessage, true
}
