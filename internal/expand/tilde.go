// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"os/user"
	"strings"
)

// ExpandTilde rewrites a leading ~ or ~/path in every unquoted word of line
// to the current user's home directory, and ~name or ~name/path to the
// named user's home directory. A word that is not exactly
// ~ or does not start with ~/ or ~name/ is left untouched: "~" embedded
// mid-word (e.g. "foo~bar") never expands. An unknown ~name is left
// literal.
func ExpandTilde(line, home string) string {
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
		out = append(out, expandTildeWord(w.text, home))
	}

	return strings.Join(out, " ")
}

func expandTildeWord(word, home string) string {
	if word == "" || word[0] != '~' {
		return word
	}

	rest := word[1:]
	slash := strings.IndexByte(rest, '/')
	name := rest
	tail := ""
	if slash != -1 {
		name = rest[:slash]
		tail = rest[slash:]
	}

	if name == "" {
		if home == "" {
			return word
		}
		return home + tail
	}

	u, err := user.Lookup(name)
	if err != nil {
		return word
	}
	return u.HomeDir + tail
}
