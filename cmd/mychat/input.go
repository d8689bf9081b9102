// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/util"
)

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// resolveMessage builds the user message from piped input and arguments.
//
// # Description
//
// When piped is true all of stdin is read and trailing line breaks are
// dropped. The message is the piped text followed by the space-joined
// arguments, separated by one space when both are present. A message
// that is empty or only whitespace is a usage error.
//
// # Example
//
//	echo "summarize:" | mychat this file
//	// message == "summarize: this file"
func resolveMessage(stdin io.Reader, piped bool, args []string) (string, error) {
	var parts []string

	if piped && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", util.NewUsageError(fmt.Sprintf("cannot read standard input: %v", err))
		}
		if text := strings.TrimRight(string(data), "\r\n"); text != "" {
			parts = append(parts, text)
		}
	}

	if joined := strings.Join(args, " "); joined != "" {
		parts = append(parts, joined)
	}

	message := strings.Join(parts, " ")
	if strings.TrimSpace(message) == "" {
		return "", util.NewUsageError("no message supplied")
	}
	return message, nil
}
