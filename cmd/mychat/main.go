// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command mychat sends a message to a hosted LLM and streams the reply.
//
// Usage:
//
//	mychat [--model <id>] [--endpoint run|responses] <message...>
//	echo "message" | mychat
package main

import (
	"os"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/credentials"
)

func main() {
	code := execute(&env{
		stdin:      os.Stdin,
		stdinPiped: !isTerminal(os.Stdin),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		stderrTTY:  isTerminal(os.Stderr),
		getenv:     os.Getenv,
		dotEnv:     ".env",
	}, os.Args[1:])

	credentials.Purge()
	os.Exit(code)
}
