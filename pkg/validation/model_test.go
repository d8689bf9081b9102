// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"
)

func TestValidateModel(t *testing.T) {
	tests := []struct {
		model   string
		wantErr bool
	}{
		// Valid
		{"@cf/meta/llama-3.1-8b-instruct", false},
		{"@cf/openai/gpt-oss-120b", false},
		{"@hf/thebloke/mistral-7b-instruct-v0.1-awq", false},
		{"gpt-4o", false},
		{"vendor:model_v2", false},

		// Invalid
		{"", true},
		{"../../tokens", true},
		{"@cf/../admin", true},
		{"@cf//double", true},
		{"@cf/meta/", true},
		{"-leading-dash", true},
		{"has space", true},
		{"query?x=1", true},
		{"frag#1", true},
		{"percent%2e%2e", true},
		{strings.Repeat("a", MaxModelLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			err := ValidateModel(tt.model)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModel(%q) error = %v, wantErr %v", tt.model, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeModel(t *testing.T) {
	got, err := SanitizeModel("  @cf/meta/llama-3.1-8b-instruct\n")
	if err != nil {
		t.Fatalf("SanitizeModel() error = %v", err)
	}
	if got != "@cf/meta/llama-3.1-8b-instruct" {
		t.Errorf("SanitizeModel() = %q", got)
	}

	if _, err := SanitizeModel("   "); err == nil {
		t.Error("SanitizeModel() should reject blank input")
	}
}
