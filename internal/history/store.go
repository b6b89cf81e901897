// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/staranto/dsh/internal/frecency"
)

// Store is dsh's command log and frecency index: a SQLite
// table written by a single background goroutine, plus an in-memory
// command frecency index rebuilt from that table and a SQL-backed
// directory frecency index used for `z`-style navigation.
type Store struct {
	db *sql.DB

	writeCh chan Entry
	done    chan struct{}
	wg      sync.WaitGroup

	mu          sync.Mutex
	cmdFrecency *frecency.Store
	dirFrecency *frecency.Store
	recency     []string
	cursor      int
	lastSeenID  int64
}

// Open opens (creating if necessary) the SQLite database at path, rebuilds
// the in-memory command frecency index and per-session recency list from
// its existing rows, loads the directory frecency snapshot, and starts the
// background writer goroutine.
func Open(path string, halfLifeHours float64) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:          db,
		writeCh:     make(chan Entry, 256),
		done:        make(chan struct{}),
		cmdFrecency: frecency.NewAt(halfLifeHours, time.Unix(0, 0)),
		dirFrecency: frecency.NewAt(halfLifeHours, time.Unix(0, 0)),
		cursor:      -1,
	}

	if err := s.loadDirectorySnapshot(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.Reload(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.runWriter()

	return s, nil
}

// Close stops the background writer, letting it drain any buffered
// entries, and closes the database.
func (s *Store) Close() error {
	close(s.done)
	s.wg.Wait()
	return s.db.Close()
}

// Record enqueues a completed command for persistence and returns
// immediately: the call site never blocks on the database.
// The in-memory command frecency index and recency list update
// synchronously so back()/forward() and search_prefix() see the command
// right away, even before the writer goroutine durably persists it.
func (s *Store) Record(e Entry) {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}

	s.mu.Lock()
	s.cmdFrecency.AddAt(e.Command, e.Context, s.cmdFrecency.HoursSince(time.Unix(e.Timestamp, 0)))
	s.recency = append(s.recency, e.Command)
	s.cursor = len(s.recency)
	s.mu.Unlock()

	select {
	case s.writeCh <- e:
	case <-s.done:
		log.Warnf("history: dropped entry after shutdown: %s", e.Command)
	}
}

// runWriter is the single background writer goroutine: it drains writeCh,
// batching whatever has accumulated since the last commit into one
// transaction, and logs (without propagating) any write failure.
func (s *Store) runWriter() {
	defer s.wg.Done()

	for {
		select {
		case e := <-s.writeCh:
			batch := []Entry{e}
			draining := true
			for draining {
				select {
				case e2 := <-s.writeCh:
					batch = append(batch, e2)
				default:
					draining = false
				}
			}
			if err := s.persistBatch(batch); err != nil {
				log.WithError(err).Error("history: failed to persist batch")
			}

		case <-s.done:
			// Drain anything left without blocking further.
			for {
				select {
				case e := <-s.writeCh:
					if err := s.persistBatch([]Entry{e}); err != nil {
						log.WithError(err).Error("history: failed to persist batch on shutdown")
					}
				default:
					return
				}
			}
		}
	}
}

// persistBatch writes entries in one transaction, deduping each against
// the most recent row for the same command when that row falls in the
// same day bucket.
func (s *Store) persistBatch(entries []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, e := range entries {
		if err := persistOne(tx, e); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func persistOne(tx *sql.Tx, e Entry) error {
	var lastID int64
	var lastTimestamp, lastCount int64
	row := tx.QueryRow(
		`SELECT id, timestamp, count FROM command_history WHERE command = ? ORDER BY id DESC LIMIT 1`,
		e.Command,
	)
	err := row.Scan(&lastID, &lastTimestamp, &lastCount)
	if err == nil && dayBucket(lastTimestamp) == dayBucket(e.Timestamp) {
		_, err := tx.Exec(
			`UPDATE command_history SET count = ?, timestamp = ?, exit_code = ?, duration_ms = ?, cwd = ?, context = ? WHERE id = ?`,
			lastCount+1, e.Timestamp, e.ExitCode, e.DurationMs, e.Cwd, e.Context, lastID,
		)
		return err
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO command_history (command, timestamp, context, exit_code, duration_ms, cwd, count) VALUES (?, ?, ?, ?, ?, ?, 1)`,
		e.Command, e.Timestamp, e.Context, e.ExitCode, e.DurationMs, e.Cwd,
	)
	return err
}
