// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package frecency

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
	"time"

	"golang.org/x/sys/unix"
)

// persisted is the on-disk shape written by Save and read by Load: a
// reference time, the half-life it was computed under, and the
// name-sorted entry list.
type persisted struct {
	RefTime       time.Time
	HalfLifeHours float64
	Entries       []Entry
}

// Load reads a Store previously written by Save. A missing file is not an
// error: it yields a fresh, empty Store at the given half-life, since a
// brand-new shell install has no frecency history yet.
func Load(path string, halfLifeHours float64) (*Store, error) {
	if halfLifeHours <= 0 {
		halfLifeHours = DefaultHalfLifeHours
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(halfLifeHours), nil
	}
	if err != nil {
		return nil, fmt.Errorf("frecency: open %s: %w", path, err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		return nil, fmt.Errorf("frecency: lock %s: %w", path, err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	var p persisted
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("frecency: decode %s: %w", path, err)
	}

	return &Store{
		entries:       p.Entries,
		refTime:       p.RefTime,
		halfLifeHours: halfLifeHours,
	}, nil
}

// Save persists the store to path, unless no mutation occurred since the
// last successful Save (the dirty bit). The write is guarded by an
// exclusive OS advisory lock so a concurrently running shell process
// cannot interleave writes.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("frecency: create %s: %w", path, err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("frecency: lock %s: %w", path, err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Item < entries[j].Item })

	p := persisted{RefTime: s.refTime, HalfLifeHours: s.halfLifeHours, Entries: entries}
	if err := gob.NewEncoder(f).Encode(&p); err != nil {
		return fmt.Errorf("frecency: encode %s: %w", path, err)
	}

	s.dirty = false
	return nil
}

// PathExists is the default existence predicate for Prune when pruning a
// directory frecency store: an item is kept only if something (a
// directory or any other file) still exists at that path.
func PathExists(item string) bool {
	_, err := os.Stat(item)
	return err == nil
}
