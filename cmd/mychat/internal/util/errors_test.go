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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ChatError
		want string
	}{
		{"endpoint", NewEndpointError("rate limited"), "endpoint error: rate limited"},
		{"empty", NewEmptyResponseError(), "empty response error: no response received"},
		{"usage", NewUsageError("no message supplied"), "usage error: no message supplied"},
		{
			"configuration with cause",
			NewConfigurationError("invalid config file", errors.New("yaml: line 3")),
			"configuration error: invalid config file: yaml: line 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestChatError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewConfigurationError("cannot read config", cause)

	assert.ErrorIs(t, err, cause)
}

func TestIsKind_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("run chat: %w", NewEndpointError("boom"))

	assert.True(t, IsKind(err, KindEndpoint))
	assert.False(t, IsKind(err, KindUsage))
	assert.False(t, IsKind(errors.New("plain"), KindEndpoint))
	assert.False(t, IsKind(nil, KindEndpoint))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(NewEmptyResponseError()))
	require.Equal(t, 1, ExitCode(errors.New("anything")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "configuration", KindConfiguration.String())
	assert.Equal(t, "usage", KindUsage.String())
	assert.Equal(t, "endpoint", KindEndpoint.String())
	assert.Equal(t, "empty response", KindEmptyResponse.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
