// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import "strings"

// ExpandBraces applies shell-style brace expansion to every unquoted word
// of line, producing the cartesian product of comma-separated alternatives.
// Quoted words are passed through untouched.
func ExpandBraces(line string) string {
	words := tokenizeWords(line)
	var out []string

	for _, w := range words {
		if w.isOperator {
			out = append(out, w.text)
			continue
		}
		if _, _, quoted := isQuoted(w.text); quoted {
			out = append(out, w.text)
			continue
		}
		out = append(out, expandBraceWord(w.text)...)
	}

	return strings.Join(out, " ")
}

// expandBraceWord expands the left-most top-level {a,b,c} group in s and
// recurses into each alternative and into the suffix, so nested groups
// ("{a,b{c,d}}") and adjacent groups ("{a,b}{1,2}") both produce the full
// cartesian product. A brace group with no top-level comma is not an
// alternation and is left as a literal.
func expandBraceWord(s string) []string {
	open := strings.IndexByte(s, '{')
	if open == -1 {
		return []string{s}
	}
	close := matchBrace(s, open)
	if close == -1 {
		return []string{s}
	}

	prefix := s[:open]
	body := s[open+1 : close]
	suffix := s[close+1:]

	alts := splitTopCommas(body)
	if len(alts) < 2 {
		return []string{s}
	}

	suffixExpansions := expandBraceWord(suffix)

	var out []string
	for _, alt := range alts {
		for _, a := range expandBraceWord(alt) {
			for _, suf := range suffixExpansions {
				out = append(out, prefix+a+suf)
			}
		}
	}
	return out
}

// matchBrace returns the index of the '}' matching the '{' at open, or -1
// if s has no matching close.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopCommas splits body on commas that are not inside a nested brace
// group, so "a,b{c,d}" splits into ["a", "b{c,d}"] rather than four pieces.
func splitTopCommas(body string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, body[start:])
	return parts
}
