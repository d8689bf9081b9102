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

import "strings"

const hexDigits = "0123456789abcdef"

// Quote renders s as a JSON string literal.
//
// # Description
//
// This is the one escaping rule used wherever raw text is embedded in
// JSON (transcript lines, request bodies):
//
//   - `"` becomes `\"` and `\` becomes `\\`
//   - every byte below 0x20 becomes `\u00XX` (no short forms like `\n`)
//   - everything else, including multi-byte UTF-8 and `<>&`, is copied as is
//
// # Example
//
//	Quote("a\"b\n") // "a\"b\u000a" (with surrounding quotes)
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
