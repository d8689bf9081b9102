// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transcript

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/mychat/pkg/logging"
)

// Store reads and rewrites the transcript file at a fixed path.
//
// # Description
//
// The path is given at construction; the store holds no other state and
// re-reads the file on every Load. No locking is done: two concurrent
// CLI runs race and the last writer wins.
//
// # Example
//
//	store := transcript.NewStore("/home/me/.mychat_history", logger)
//	history := store.Load()
//	err := store.Append(transcript.UserMessage("hi"), transcript.AssistantMessage("hello"))
type Store struct {
	path string
	log  *logging.Logger
}

// NewStore creates a store for path. A nil logger discards diagnostics.
func NewStore(path string, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{path: path, log: log}
}

// Path returns the transcript file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored lines in conversation order.
//
// # Description
//
// Never fails. A missing file is an empty transcript; an unreadable file
// is logged and treated as empty. Lines are returned verbatim (a trailing
// "\r" is dropped) and are not validated, so a corrupt line is replayed
// as opaque history. Blank lines are skipped.
//
// # Outputs
//
//   - []string: Pre-serialized JSON lines, possibly empty (never nil)
func (s *Store) Load() []string {
	lines := []string{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("transcript unreadable, starting empty", "path", s.path, "error", err)
		}
		return lines
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Save truncates the file and writes lines, each followed by "\n".
//
// The parent directory is created when missing. New files are 0600.
func (s *Store) Save(lines []string) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create transcript directory: %w", err)
		}
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(s.path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Append adds msgs after the current history in a single rewrite.
func (s *Store) Append(msgs ...Message) error {
	lines := s.Load()
	for _, m := range msgs {
		lines = append(lines, m.Line())
	}
	if err := s.Save(lines); err != nil {
		return err
	}
	s.log.Debug("transcript saved", "path", s.path, "lines", len(lines))
	return nil
}
