// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package history implements dsh's command log and directory/command
// frecency index: a SQLite-backed command_history table
// written by a single background goroutine, plus an in-memory frecency
// index over commands and directories used for prefix search, context
// boosting, and `z`-style navigation.
package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS command_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	command     TEXT NOT NULL,
	timestamp   INTEGER NOT NULL,
	context     TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	cwd         TEXT NOT NULL DEFAULT '',
	count       INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_command_history_ts ON command_history(timestamp);
CREATE INDEX IF NOT EXISTS idx_command_history_command ON command_history(command);

CREATE TABLE IF NOT EXISTS directory_snapshot (
	item          TEXT PRIMARY KEY,
	frecency      REAL NOT NULL,
	last_access   REAL NOT NULL,
	num_accesses  INTEGER NOT NULL,
	context       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS directory_visits (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	directory TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
`

// openDB opens (creating if necessary) the SQLite database at path and
// ensures the schema above exists. modernc.org/sqlite is a pure-Go
// database/sql driver, so dsh's history subsystem needs no cgo toolchain
// at build time.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return db, nil
}
