// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/util"
)

var testSource = Source{AccountIDEnv: "TEST_ACCOUNT", APITokenEnv: "TEST_TOKEN"}

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoad_Success(t *testing.T) {
	creds, err := Load(testSource, envFrom(map[string]string{
		"TEST_ACCOUNT": " acct-1 ",
		"TEST_TOKEN":   "secret-token\n",
	}))
	require.NoError(t, err)

	assert.Equal(t, "acct-1", creds.AccountID())

	header, err := creds.Authorization()
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", header)

	// The enclave can be opened repeatedly.
	again, err := creds.Authorization()
	require.NoError(t, err)
	assert.Equal(t, header, again)
}

func TestLoad_Missing(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		wantIn []string
		notIn  []string
	}{
		{
			name:   "token missing",
			env:    map[string]string{"TEST_ACCOUNT": "acct"},
			wantIn: []string{"TEST_TOKEN"},
			notIn:  []string{"TEST_ACCOUNT"},
		},
		{
			name:   "account blank",
			env:    map[string]string{"TEST_ACCOUNT": "   ", "TEST_TOKEN": "tok"},
			wantIn: []string{"TEST_ACCOUNT"},
			notIn:  []string{"TEST_TOKEN"},
		},
		{
			name:   "both missing",
			env:    map[string]string{},
			wantIn: []string{"TEST_ACCOUNT", "TEST_TOKEN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := Load(testSource, envFrom(tt.env))
			require.Error(t, err)
			assert.Nil(t, creds)
			assert.True(t, util.IsKind(err, util.KindConfiguration))
			for _, want := range tt.wantIn {
				assert.Contains(t, err.Error(), want)
			}
			for _, absent := range tt.notIn {
				assert.NotContains(t, err.Error(), absent)
			}
		})
	}
}
