// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/staranto/dsh/internal/frecency"
)

// Back moves the session recency cursor back one command and returns it,
// or ("", false) if already at the oldest command.
func (s *Store) Back() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor <= 0 {
		return "", false
	}
	s.cursor--
	return s.recency[s.cursor], true
}

// Forward moves the session recency cursor forward one command and
// returns it, or ("", false) if already at the newest command.
func (s *Store) Forward() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.recency)-1 {
		s.cursor = len(s.recency)
		return "", false
	}
	s.cursor++
	return s.recency[s.cursor], true
}

// SearchPrefix returns the most-frecent command starting with prefix.
func (s *Store) SearchPrefix(prefix string) (string, bool) {
	return s.SearchPrefixWithContext(prefix, "")
}

// CompletionCandidates returns up to limit commands starting with prefix,
// frecency-ordered (most-frecent first), for the completion engine's
// history candidate source. A limit <= 0 returns every match.
func (s *Store) CompletionCandidates(prefix string, limit int) []string {
	s.mu.Lock()
	cf := s.cmdFrecency
	s.mu.Unlock()

	ranked := cf.Sorted(frecency.Frecent, "")
	seen := make(map[string]bool, len(ranked))
	var out []string
	for _, e := range ranked {
		if !hasPrefix(e.Item, prefix) || seen[e.Item] {
			continue
		}
		seen[e.Item] = true
		out = append(out, e.Item)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// SearchPrefixWithContext is SearchPrefix with the context boost applied:
// among commands starting with prefix, one whose recorded context matches
// currentContext ranks higher.
func (s *Store) SearchPrefixWithContext(prefix, currentContext string) (string, bool) {
	s.mu.Lock()
	cf := s.cmdFrecency
	s.mu.Unlock()

	candidates := cf.SearchPrefixRange(prefix)
	if len(candidates) == 0 {
		return "", false
	}

	best := candidates[0]
	bestScore := -1.0
	for _, e := range candidates {
		sc := scoreWithContext(cf, e, currentContext)
		if sc > bestScore {
			bestScore = sc
			best = e
		}
	}
	return best.Item, true
}

func scoreWithContext(cf *frecency.Store, e frecency.Entry, currentContext string) float64 {
	// Sorted applies decay and the context boost, but its entries carry the
	// stored Frecency, so rank position is the boosted score.
	ranked := cf.Sorted(frecency.Frecent, currentContext)
	for i, r := range ranked {
		if r.Item == e.Item {
			return float64(len(ranked) - i)
		}
	}
	return e.Frecency
}

// Reload replays command_history rows written since the last call (or
// since Open, on the first call) into the in-memory command frecency
// index and the per-session recency list, so a concurrently running dsh
// process's writes become visible here, merged using timestamp ordering.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	lastSeen := s.lastSeenID
	s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, timestamp, context, exit_code, duration_ms, cwd, count
		 FROM command_history WHERE id > ? ORDER BY id ASC`, lastSeen)
	if err != nil {
		return fmt.Errorf("history: reload query: %w", err)
	}
	defer rows.Close()

	var newest int64
	var replayed []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Command, &e.Timestamp, &e.Context, &e.ExitCode, &e.DurationMs, &e.Cwd, &e.Count); err != nil {
			return fmt.Errorf("history: reload scan: %w", err)
		}
		replayed = append(replayed, e)
		if e.ID > newest {
			newest = e.ID
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range replayed {
		s.cmdFrecency.AddAt(e.Command, e.Context, s.cmdFrecency.HoursSince(time.Unix(e.Timestamp, 0)))
		s.recency = append(s.recency, e.Command)
	}
	s.cursor = len(s.recency)
	if newest > s.lastSeenID {
		s.lastSeenID = newest
	}
	return nil
}

// Recent returns the n most recently executed commands, newest first.
func (s *Store) Recent(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.recency) {
		n = len(s.recency)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = s.recency[len(s.recency)-1-i]
	}
	return out
}

// ImportFromFile bulk-loads commands, given as lines already read from an
// external shell's history file (e.g. bash's ~/.bash_history) and skipping
// empty ones, into command_history in one transaction, attributing them to importedContext so they participate in frecency
// ranking immediately, since migrating to dsh from another shell with an
// empty history would otherwise cold-start every suggestion and
// completion ranking.
func (s *Store) ImportFromFile(lines []string, importedContext string, atUnix int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: import begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, line := range lines {
		if line == "" {
			continue
		}
		if err := persistOne(tx, Entry{Command: line, Timestamp: atUnix, Context: importedContext}); err != nil {
			return fmt.Errorf("history: import %q: %w", line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return s.Reload(context.Background())
}
