// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package frecency

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Store is an ordered collection of Entries, always kept sorted by Item so
// both exact and prefix lookups are O(log N). It is safe
// for concurrent use: in-process readers and writers coordinate through an
// internal RWMutex, while cross-process coordination over the backing file
// is handled by Save/Load's advisory file lock.
type Store struct {
	mu            sync.RWMutex
	entries       []Entry
	refTime       time.Time
	halfLifeHours float64
	dirty         bool
}

// New creates an empty Store with the given half-life. A non-positive
// halfLifeHours falls back to DefaultHalfLifeHours.
func New(halfLifeHours float64) *Store {
	return NewAt(halfLifeHours, time.Now())
}

// NewAt creates an empty Store whose LastAccessHours are measured relative
// to refTime instead of the current time. Passing the Unix epoch lets a
// caller store (and later compare) absolute timestamps across process
// restarts without separately persisting the reference time, which is how
// the history subsystem's SQL-backed directory frecency index uses it.
func NewAt(halfLifeHours float64, refTime time.Time) *Store {
	if halfLifeHours <= 0 {
		halfLifeHours = DefaultHalfLifeHours
	}
	return &Store{refTime: refTime, halfLifeHours: halfLifeHours}
}

// nowElapsed returns hours elapsed since the store's reference time, the
// unit Entry.LastAccessHours is measured in.
func (s *Store) nowElapsed() float64 {
	return time.Since(s.refTime).Hours()
}

// indexOf returns the position of item in the sorted entries slice, and
// whether it was found. When not found, the index is where item would be
// inserted to keep the slice sorted.
func (s *Store) indexOf(item string) (int, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Item >= item })
	if i < len(s.entries) && s.entries[i].Item == item {
		return i, true
	}
	return i, false
}

// Add inserts a new entry or updates an existing one:
// frecency decays by elapsed time since the last access and then gains one
// visit's weight. A zero-value context leaves any previously recorded
// context on the entry untouched rather than clearing it.
func (s *Store) Add(item, context string) {
	s.AddAt(item, context, s.nowElapsed())
}

// AddAt is Add with an explicit "now", expressed in hours elapsed since
// the store's reference time. It lets a caller replay history in its
// original chronological order — e.g. the history subsystem reconstructing
// command frecency from a command log on startup — rather than recording
// every replayed entry as having just happened.
func (s *Store) AddAt(item, context string, now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := s.indexOf(item)
	if found {
		e := &s.entries[i]
		dt := now - e.LastAccessHours
		e.Frecency = e.Frecency*math.Pow(2, -dt/s.halfLifeHours) + 1.0
		e.LastAccessHours = now
		e.NumAccesses++
		if context != "" {
			e.Context = context
		}
		s.dirty = true
		return
	}

	entry := Entry{Item: item, Frecency: 1.0, LastAccessHours: now, NumAccesses: 1, Context: context}
	s.entries = append(s.entries, Entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry
	s.dirty = true
}

// Adjust adds weight to item's raw frecency score without the time-decay
// step Add applies, for callers that want to boost or penalize an entry
// directly (e.g. demoting a stale suggestion). It reports whether item was
// found.
func (s *Store) Adjust(item string, weight float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := s.indexOf(item)
	if !found {
		return false
	}
	s.entries[i].Frecency += weight
	s.dirty = true
	return true
}

// Delete removes item from the store, reporting whether it was present.
func (s *Store) Delete(item string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := s.indexOf(item)
	if !found {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.dirty = true
	return true
}

// currentFrecency applies the decay formula at read time: the stored score
// divided by 2^(elapsed/half_life), where elapsed is time since that
// entry's last access).
func (s *Store) currentFrecency(e Entry, now float64) float64 {
	elapsed := now - e.LastAccessHours
	if elapsed <= 0 {
		return e.Frecency
	}
	return e.Frecency / math.Pow(2, elapsed/s.halfLifeHours)
}

// score computes an entry's ranking score under method, applying the
// context boost for Frecent when context matches and is non-empty.
func (s *Store) score(e Entry, method Method, now float64, context string) float64 {
	switch method {
	case Frequent:
		return float64(e.NumAccesses)
	case Recent:
		return e.LastAccessHours
	default: // Frecent
		v := s.currentFrecency(e, now)
		if context != "" && e.Context == context {
			v *= ContextBoost
		}
		return v
	}
}

// Sorted returns a copy of the store's entries ranked by method, highest
// score first. It never mutates the store's name-sorted order.
func (s *Store) Sorted(method Method, context string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.nowElapsed()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return s.score(out[i], method, now, context) > s.score(out[j], method, now, context)
	})
	return out
}

// Truncate keeps only the top n entries by method, discarding the rest,
// then restores the name-sorted invariant the rest of Store relies on.
func (s *Store) Truncate(n int, method Method) {
	ranked := s.Sorted(method, "")
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Item < ranked[j].Item })

	s.mu.Lock()
	s.entries = ranked
	s.dirty = true
	s.mu.Unlock()
}

// SearchPrefixRange returns the contiguous slice of entries whose Item
// starts with prefix, found via two binary searches bounding the range.
// The returned slice is a copy safe to use after release of the lock.
func (s *Store) SearchPrefixRange(prefix string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Item >= prefix })
	hi := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Item >= prefixUpperBound(prefix) })

	out := make([]Entry, hi-lo)
	copy(out, s.entries[lo:hi])
	return out
}

// prefixUpperBound returns the lexicographically smallest string that is
// greater than every string starting with prefix, so Search for it finds
// the index just past the prefix's matching range.
func prefixUpperBound(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	// prefix is all 0xff bytes (or empty): every string sorts before an
	// unbounded upper bound, so return a value no real item can reach.
	return string(b) + "\xff\xff\xff\xff"
}

// Prune drops every entry whose item no longer exists according to
// exists, intended for directory frecency where an item is a filesystem
// path that may since have been removed.
func (s *Store) Prune(exists func(item string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if exists(e.Item) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.dirty = true
}

// Restore replaces the store's entries wholesale with entries already in
// frecency form, e.g. rows read back from a SQL-backed snapshot table. It
// does not set the dirty bit: restoring a store to exactly the state it
// was last saved in is not itself a mutation.
func (s *Store) Restore(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Item < sorted[j].Item })
	s.entries = sorted
}

// HoursSince converts an absolute time to hours elapsed since the store's
// reference time, the unit Add/AddAt expect for "now". Paired with
// NewAt(halfLife, time.Unix(0, 0)), this lets a caller work in absolute
// timestamps while the store's internal math stays reference-relative.
func (s *Store) HoursSince(t time.Time) float64 {
	return t.Sub(s.refTime).Hours()
}

// Len returns the number of entries currently in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns the entry for item, if present.
func (s *Store) Get(item string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, found := s.indexOf(item)
	if !found {
		return Entry{}, false
	}
	return s.entries[i], true
}
