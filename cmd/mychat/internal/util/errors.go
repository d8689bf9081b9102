// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package util

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Kinds
// =============================================================================

// Kind classifies a fatal chat failure.
//
// Every Kind aborts the run with exit code 1. Malformed stream frames
// are not a Kind: they are absorbed by the decoder and never surface.
type Kind int

const (
	// KindConfiguration is a missing credential or invalid setting.
	// Raised before any network call.
	KindConfiguration Kind = iota + 1

	// KindUsage means no message could be resolved from stdin or args.
	KindUsage

	// KindEndpoint means the remote service answered with an error body.
	KindEndpoint

	// KindEmptyResponse means neither decoder produced any text.
	KindEmptyResponse
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUsage:
		return "usage"
	case KindEndpoint:
		return "endpoint"
	case KindEmptyResponse:
		return "empty response"
	default:
		return "unknown"
	}
}

// =============================================================================
// Chat Error Type
// =============================================================================

// ChatError is a fatal, classified failure of a chat run.
//
// # Description
//
// Carries the Kind used for reporting, a user-facing message, and an
// optional wrapped cause. Supports errors.Is/As through Unwrap.
//
// # Thread Safety
//
// ChatError is immutable after creation and safe for concurrent reads.
//
// # Example
//
//	err := NewEndpointError("rate limited")
//	fmt.Println(err.Error()) // "endpoint error: rate limited"
//
//	var chatErr *ChatError
//	if errors.As(err, &chatErr) && chatErr.Kind == KindEndpoint {
//	    // transcript must stay untouched
//	}
type ChatError struct {
	// Kind classifies the failure.
	Kind Kind

	// Message is the user-facing diagnostic.
	Message string

	// Wrapped is the underlying error (may be nil).
	Wrapped error
}

// Error returns "<kind> error: <message>" with the cause appended when present.
func (e *ChatError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *ChatError) Unwrap() error {
	return e.Wrapped
}

// NewConfigurationError reports a missing or invalid setting.
func NewConfigurationError(message string, wrapped error) *ChatError {
	return &ChatError{Kind: KindConfiguration, Message: message, Wrapped: wrapped}
}

// NewUsageError reports that no message text was supplied.
func NewUsageError(message string) *ChatError {
	return &ChatError{Kind: KindUsage, Message: message}
}

// NewEndpointError reports an error body returned by the remote service.
func NewEndpointError(message string) *ChatError {
	return &ChatError{Kind: KindEndpoint, Message: message}
}

// NewEmptyResponseError reports a turn that produced no assistant text.
func NewEmptyResponseError() *ChatError {
	return &ChatError{Kind: KindEmptyResponse, Message: "no response received"}
}

// =============================================================================
// Helpers
// =============================================================================

// IsKind reports whether any ChatError in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr.Kind == kind
	}
	return false
}

// ExitCode maps an error to the process exit code: 0 for nil, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
