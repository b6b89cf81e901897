// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/staranto/dsh/internal/frecency"
)

// loadDirectorySnapshot populates the in-memory directory frecency index
// from the directory_snapshot table, so `z`-style navigation has ranked
// results immediately after Open rather than after the first visit.
func (s *Store) loadDirectorySnapshot() error {
	rows, err := s.db.Query(
		`SELECT item, frecency, last_access, num_accesses, context FROM directory_snapshot`,
	)
	if err != nil {
		return fmt.Errorf("history: load directory snapshot: %w", err)
	}
	defer rows.Close()

	var entries []frecency.Entry
	for rows.Next() {
		var e frecency.Entry
		if err := rows.Scan(&e.Item, &e.Frecency, &e.LastAccessHours, &e.NumAccesses, &e.Context); err != nil {
			return fmt.Errorf("history: scan directory snapshot: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.dirFrecency.Restore(entries)
	s.mu.Unlock()
	return nil
}

// VisitDirectory records a `z`-style directory visit: it updates the
// in-memory directory frecency index synchronously, appends an audit row
// to directory_visits, and rewrites that directory's row in
// directory_snapshot so a future Open sees the current score without
// replaying the full visit log.
func (s *Store) VisitDirectory(dir, context string, atUnix int64) {
	if atUnix == 0 {
		atUnix = time.Now().Unix()
	}

	s.mu.Lock()
	s.dirFrecency.AddAt(dir, context, s.dirFrecency.HoursSince(time.Unix(atUnix, 0)))
	entry, _ := s.dirFrecency.Get(dir)
	s.mu.Unlock()

	// Directory visits are a single-row upsert rather than the command
	// log's append-and-dedup, so they are persisted inline instead of
	// through the batching writer goroutine.
	if err := s.persistDirectoryVisit(dir, context, atUnix, entry); err != nil {
		log.WithError(err).Error("history: failed to persist directory visit")
	}
}

func (s *Store) persistDirectoryVisit(dir, context string, atUnix int64, entry frecency.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin directory visit: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(
		`INSERT INTO directory_visits (directory, timestamp) VALUES (?, ?)`,
		dir, atUnix,
	); err != nil {
		return fmt.Errorf("history: insert directory visit: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO directory_snapshot (item, frecency, last_access, num_accesses, context)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(item) DO UPDATE SET
			frecency = excluded.frecency,
			last_access = excluded.last_access,
			num_accesses = excluded.num_accesses,
			context = excluded.context`,
		entry.Item, entry.Frecency, entry.LastAccessHours, entry.NumAccesses, entry.Context,
	); err != nil {
		return fmt.Errorf("history: upsert directory snapshot: %w", err)
	}

	return tx.Commit()
}

// RankedDirectories returns the directory frecency index's entries sorted
// by method, optionally boosted by currentContext, for `z <query>` to
// fuzzy-match against.
func (s *Store) RankedDirectories(method frecency.Method, currentContext string) []frecency.Entry {
	s.mu.Lock()
	df := s.dirFrecency
	s.mu.Unlock()
	return df.Sorted(method, currentContext)
}

// PruneDirectories drops directory entries that fail exists (typically
// os.Stat-based), keeping the index free of paths that no longer exist on
// disk, and persists the pruned snapshot.
func (s *Store) PruneDirectories(exists func(item string) bool) error {
	s.mu.Lock()
	s.dirFrecency.Prune(exists)
	remaining := s.dirFrecency.Sorted(frecency.Recent, "")
	s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin prune: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM directory_snapshot`); err != nil {
		return fmt.Errorf("history: clear directory snapshot: %w", err)
	}
	for _, e := range remaining {
		if _, err := tx.Exec(
			`INSERT INTO directory_snapshot (item, frecency, last_access, num_accesses, context) VALUES (?, ?, ?, ?, ?)`,
			e.Item, e.Frecency, e.LastAccessHours, e.NumAccesses, e.Context,
		); err != nil {
			return fmt.Errorf("history: reinsert directory snapshot: %w", err)
		}
	}
	return tx.Commit()
}
