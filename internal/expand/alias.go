// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import "strings"

// AliasLookup resolves an alias name to its replacement text. It returns
// false when name has no alias bound.
type AliasLookup func(name string) (string, bool)

// DefaultMaxAliasDepth bounds the alias expansion fixpoint loop so a pair of
// aliases that reference each other (directly or through a chain) cannot
// hang the shell.
const DefaultMaxAliasDepth = 16

// ExpandAliases rewrites the first word of every simple command in line
// according to lookup, re-expanding the new first word until it is no
// longer an alias or maxDepth expansions have been applied to that
// position. Only the leading word of each simple command is eligible;
// aliases never expand mid-command.
func ExpandAliases(line string, lookup AliasLookup, maxDepth int) string {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxAliasDepth
	}

	words := tokenizeWords(line)
	var out []rawWord
	atCommandStart := true

	for i := 0; i < len(words); i++ {
		w := words[i]
		if w.isOperator {
			out = append(out, w)
			atCommandStart = true
			continue
		}
		if !atCommandStart {
			out = append(out, w)
			continue
		}
		atCommandStart = false

		if _, _, quoted := isQuoted(w.text); quoted {
			out = append(out, w)
			continue
		}

		replacement := expandAliasChain(w.text, lookup, maxDepth)
		repWords := tokenizeWords(replacement)
		if len(repWords) == 0 {
			continue
		}
		out = append(out, repWords[0])
		for _, extra := range repWords[1:] {
			out = append(out, extra)
		}
	}

	return joinWords(out)
}

// expandAliasChain repeatedly substitutes name for its alias value until a
// fixpoint, a cycle, or maxDepth is reached, returning the final text
// (which may itself be multiple words, e.g. "ll" -> "ls -l").
func expandAliasChain(name string, lookup AliasLookup, maxDepth int) string {
	current := name
	seen := map[string]bool{}

	for depth := 0; depth < maxDepth; depth++ {
		firstWord, rest := splitFirstWord(current)
		if seen[firstWord] {
			return current
		}
		val, ok := lookup(firstWord)
		if !ok {
			return current
		}
		seen[firstWord] = true
		current = strings.TrimRight(val, " \t") + rest
	}

	return current
}

func splitFirstWord(s string) (first, rest string) {
	s = strings.TrimLeft(s, " \t")
	idx := strings.IndexAny(s, " \t")
	if idx == -1 {
		return s, ""
	}
	return s[:idx], s[idx:]
}
