// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package completion

import (
	"context"
	"strings"
	"time"

	"github.com/staranto/dsh/internal/parser"
)

// Engine merges the five candidate sources spec.md §4.E describes behind
// a shared TTL cache: JSON-tree, dynamic shell-invoked, history,
// filesystem, and PATH executables, in that priority order.
type Engine struct {
	Trees   *TreeRegistry
	Rules   *RuleSet
	History HistorySource
	Env     map[string]string
	Cache   *Cache

	ShellOutTimeout time.Duration
	HistoryLimit    int
}

// NewEngine builds an Engine from its collaborators. trees, rules, and
// history may be nil, in which case that source contributes nothing.
func NewEngine(trees *TreeRegistry, rules *RuleSet, history HistorySource, env map[string]string) *Engine {
	return &Engine{
		Trees:           trees,
		Rules:           rules,
		History:         history,
		Env:             env,
		Cache:           NewCache(DefaultCacheTTL),
		ShellOutTimeout: DefaultShellOutTimeout,
		HistoryLimit:    20,
	}
}

// Complete returns completion candidates for req, consulting the cache
// first and populating it with the freshly computed result. The cache key
// is the whole line up to the cursor, so a completed dynamic shell-out
// (never cached beyond the current keystroke, per spec.md §4.E) is still
// covered by the cache's longest-prefix fallback for subsequent, purely
// additive keystrokes within the same word — its own contribution,
// however, is deliberately excluded from what gets cached (see below).
func (e *Engine) Complete(ctx context.Context, req Request) []Candidate {
	key := req.Line[:req.Cursor]

	if cached, ok := e.Cache.Get(key); ok {
		return cached
	}

	if e.Cache.MarkPending(key) {
		// Another goroutine is already computing this prefix; the caller
		// will see a cache hit on its next poll rather than duplicate the
		// work.
		return nil
	}
	defer e.Cache.ClearPending(key)

	cacheable, dynamic, treeN := e.compute(ctx, req)
	e.Cache.Set(key, cacheable)
	merged := append([]Candidate{}, cacheable[:treeN]...)
	merged = append(merged, dynamic...)
	return append(merged, cacheable[treeN:]...)
}

// compute runs every applicable source in priority order. The dynamic
// shell-invoked source's results are returned separately so Complete can
// hand them to the caller without caching them (spec.md §4.E: "Never
// cached beyond the current keystroke"); treeN is the number of leading
// JSON-tree candidates in cacheable, after which Complete places them.
func (e *Engine) compute(ctx context.Context, req Request) (cacheable, dynamic []Candidate, treeN int) {
	current, _ := req.CurrentWord()
	argv0, haveArgv0 := req.Argv0()
	onArgv0 := current.Role == parser.RoleArgv0

	argWords := priorArgWords(req.Words, current)

	if current.Role == parser.RoleRedirectTarget {
		return FilesystemCandidates(current.Text, req.Cwd), nil, 0
	}

	if haveArgv0 && e.Trees != nil {
		if t, ok := e.Trees.Lookup(argv0); ok {
			pos := t.resolve(argWords)
			cacheable = append(cacheable, pos.candidates(current.Text, e.Env, PathExecutables, FilesystemCandidates, req.Cwd)...)
		}
	}
	treeN = len(cacheable)

	if haveArgv0 && e.Rules != nil {
		if rule, ok := e.Rules.Matching(argv0, argWords); ok {
			dynamic = rule.Run(ctx, e.ShellOutTimeout)
		}
	}

	if e.History != nil && current.Text != "" {
		for _, cmd := range e.History.CompletionCandidates(current.Text, e.historyLimit()) {
			cacheable = append(cacheable, Candidate{Value: cmd, From: SourceHistory})
		}
	}

	if onArgv0 || !haveArgv0 {
		for _, name := range PathExecutables() {
			if strings.HasPrefix(name, current.Text) {
				cacheable = append(cacheable, Candidate{Value: name, From: SourcePath})
			}
		}
		return cacheable, dynamic, treeN
	}

	cacheable = append(cacheable, FilesystemCandidates(current.Text, req.Cwd)...)
	return cacheable, dynamic, treeN
}

func (e *Engine) historyLimit() int {
	if e.HistoryLimit <= 0 {
		return 20
	}
	return e.HistoryLimit
}

// priorArgWords returns the text of every word after argv0 and before
// current (the word currently being edited), in order — the "already
// typed" words a JSON-tree or dynamic-rule match condition walks.
func priorArgWords(words []parser.Word, current parser.Word) []string {
	var out []string
	for _, w := range words {
		if w.Role == parser.RoleArgv0 {
			continue
		}
		if current.Text != "" && w.Start == current.Start && w.End == current.End {
			break
		}
		out = append(out, w.Text)
	}
	return out
}
