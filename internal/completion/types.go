// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package completion implements dsh's unified completion engine: it
// merges candidates from a command's JSON-defined subcommand tree, a
// dynamic shell-invoked source, the history frecency index, the
// filesystem, and PATH executables, in the priority order spec.md §4.E
// describes, behind a single TTL cache.
package completion

import "github.com/staranto/dsh/internal/parser"

// Source names a Candidate's origin, surfaced in the completion UIs so a
// user can tell a history suggestion from a filesystem one at a glance.
type Source string

const (
	SourceJSONTree Source = "json"
	SourceDynamic  Source = "dynamic"
	SourceHistory  Source = "history"
	SourceFilesystem Source = "file"
	SourcePath     Source = "path"
)

// Candidate is one completion suggestion.
type Candidate struct {
	Value       string
	Description string
	From        Source
}

// Request carries everything the Engine needs to produce candidates for
// one keystroke: the full line, cursor position, the role-aware word list
// parser.GetWords already produced (the engine never re-tokenizes), and
// the current working directory used to resolve relative filesystem
// candidates.
type Request struct {
	Line   string
	Cursor int
	Words  []parser.Word
	Cwd    string
}

// CurrentWord returns the Word whose span covers the cursor, if any.
func (r Request) CurrentWord() (parser.Word, bool) {
	for _, w := range r.Words {
		if w.IsCurrent {
			return w, true
		}
	}
	return parser.Word{}, false
}

// Argv0 returns the first word of the simple command the cursor's word
// belongs to, i.e. the nearest RoleArgv0 word at or before the cursor.
func (r Request) Argv0() (string, bool) {
	var last string
	var found bool
	for _, w := range r.Words {
		if w.Role == parser.RoleArgv0 && w.Start <= r.Cursor {
			last = w.Text
			found = true
		}
	}
	return last, found
}

// HistorySource adapts history.Store's prefix search to the narrow
// surface the completion package needs, so this package never imports
// internal/history directly and cannot form an import cycle with it.
type HistorySource interface {
	CompletionCandidates(prefix string, limit int) []string
}
