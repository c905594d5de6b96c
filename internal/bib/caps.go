// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"
	"unicode"

	"github.com/pdiddy/bibexport/pkg/types"
)

// protectCaps brace-wraps letter runs so downstream styles cannot fold
// their capitalization. The policy decides which runs qualify; runs inside
// existing brace groups are already protected and left alone.
//
// Command detection is a parity heuristic, not a LaTeX tokenizer: a run
// preceded by an odd number of backslashes is considered part of a command
// and skipped, and a brace preceded by an odd number of backslashes is
// escaped rather than structural. Downstream consumers depend on this
// exact behavior on edge cases like `\\{`, so it stays a counter.
func protectCaps(text string, policy types.PreserveCaps) string {
	if policy == types.PreserveNone || policy == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 16)

	runes := []rune(text)
	depth := 0
	backslashes := 0

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\\' {
			backslashes++
			b.WriteRune(r)
			i++
			continue
		}

		if unicode.IsLetter(r) {
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			run := string(runes[start:i])
			if depth == 0 && backslashes%2 == 0 && wantsProtection(run, policy) {
				b.WriteByte('{')
				b.WriteString(run)
				b.WriteByte('}')
			} else {
				b.WriteString(run)
			}
			backslashes = 0
			continue
		}

		switch r {
		case '{':
			if backslashes%2 == 0 {
				depth++
			}
		case '}':
			if backslashes%2 == 0 && depth > 0 {
				depth--
			}
		}
		b.WriteRune(r)
		backslashes = 0
		i++
	}

	return b.String()
}

// wantsProtection decides whether one letter run qualifies under the
// policy: all protects any run with an uppercase letter, inner only runs
// with an uppercase letter past the first position.
func wantsProtection(run string, policy types.PreserveCaps) bool {
	for i, r := range run {
		if !unicode.IsUpper(r) {
			continue
		}
		if policy == types.PreserveAll {
			return true
		}
		if i > 0 {
			return true
		}
	}
	return false
}
