// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for values that
// end up inside request URLs.
//
// A model identifier is appended to the run endpoint's path, so an
// unchecked value could point the request at a different API route.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxModelLength bounds a model identifier.
const MaxModelLength = 128

// modelPattern matches catalog identifiers such as "@cf/meta/llama-3.1-8b-instruct".
// Allows: letters, digits, and the punctuation @ . _ : / -
var modelPattern = regexp.MustCompile(`^[A-Za-z0-9@][A-Za-z0-9@._:/\-]*$`)

// ValidateModel validates a model identifier before it is used in a URL.
//
// Valid identifiers:
//   - 1-128 characters
//   - Start with a letter, digit or "@"
//   - Contain only letters, digits and @ . _ : / -
//   - No empty or ".." path segments, no trailing "/"
//
// Example:
//
//	if err := validation.ValidateModel(model); err != nil {
//	    return fmt.Errorf("invalid model: %w", err)
//	}
//	// Safe to append to /ai/run/
func ValidateModel(model string) error {
	if model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if len(model) > MaxModelLength {
		return fmt.Errorf("model is %d characters, limit is %d", len(model), MaxModelLength)
	}
	if !modelPattern.MatchString(model) {
		return fmt.Errorf("invalid model format: %q (letters, digits and @ . _ : / - only)", model)
	}
	for _, segment := range strings.Split(model, "/") {
		if segment == "" || segment == ".." || segment == "." {
			return fmt.Errorf("invalid model path: %q", model)
		}
	}
	return nil
}

// SanitizeModel trims whitespace and validates the result.
//
//	model, err := validation.SanitizeModel(flagValue)
func SanitizeModel(model string) (string, error) {
	clean := strings.TrimSpace(model)
	if err := ValidateModel(clean); err != nil {
		return "", err
	}
	return clean, nil
}
