// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"path/filepath"
	"strings"
)

// globWord expands a word carrying glob metacharacters (*, ?, [...]) into
// its sorted filesystem matches. A word with no glob metacharacters, or
// one whose pattern matches nothing, is returned unchanged: an
// unmatched glob stays literal rather than disappearing, matching the
// common shell convention the grammar assumes (no nullglob).
func globWord(word string) []string {
	if !hasGlobMeta(word) {
		return []string{word}
	}
	matches, err := filepath.Glob(word)
	if err != nil || len(matches) == 0 {
		return []string{word}
	}
	return matches
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
