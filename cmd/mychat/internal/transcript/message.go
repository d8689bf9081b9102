// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transcript persists the conversation replayed on every turn.
//
// The transcript is a flat file with one JSON message per line, in
// conversation order. Lines are kept pre-serialized: existing lines are
// never re-parsed, only replayed and rewritten verbatim.
package transcript

import (
	"strings"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Immutable once created.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage returns a user message with the given content.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant message with the given content.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Line returns the message as a single-line JSON object.
//
// # Description
//
// Field order is fixed (role, then content) and both values go through
// Quote, so the same message always yields byte-identical output.
//
// # Example
//
//	UserMessage("hello there").Line() // {"role":"user","content":"hello there"}
func (m Message) Line() string {
	var b strings.Builder
	b.Grow(len(m.Content) + 32)
	b.WriteString(`{"role":`)
	b.WriteString(Quote(string(m.Role)))
	b.WriteString(`,"content":`)
	b.WriteString(Quote(m.Content))
	b.WriteByte('}')
	return b.String()
}
