// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Default limits for an OutputHistory ring, matching the original
// implementation's (dsh-types' OutputHistory) defaults.
const (
	DefaultMaxOutputEntries      = 100
	DefaultMaxOutputEntrySize    = 1 << 20  // 1MB per entry
	DefaultMaxOutputHistoryBytes = 50 << 20 // 50MB total
)

// OutputEntry is one completed command's captured output: the unit
// spec §3 names as part of the Environment entity's output history
// ("bounded ring of (command, stdout, stderr, exit_code, timestamp)").
type OutputEntry struct {
	Command   string
	Stdout    string
	Stderr    string
	ExitCode  int
	Timestamp time.Time
}

func newOutputEntry(command, stdout, stderr string, exitCode int) *OutputEntry {
	return &OutputEntry{
		Command:   command,
		Stdout:    stdout,
		Stderr:    stderr,
		ExitCode:  exitCode,
		Timestamp: time.Now(),
	}
}

func (e *OutputEntry) size() int {
	return len(e.Command) + len(e.Stdout) + len(e.Stderr)
}

// truncate proportionally shrinks Stdout and Stderr, by their share of
// the combined overrun, when their combined size exceeds maxSize, and
// marks whichever stream it cut.
func (e *OutputEntry) truncate(maxSize int) {
	total := len(e.Stdout) + len(e.Stderr)
	if total <= maxSize || maxSize <= 0 {
		return
	}
	const notice = "\n... (truncated)"
	outShare := maxSize * len(e.Stdout) / total
	errShare := maxSize * len(e.Stderr) / total
	if len(e.Stdout) > outShare {
		e.Stdout = e.Stdout[:outShare] + notice
	}
	if len(e.Stderr) > errShare {
		e.Stderr = e.Stderr[:errShare] + notice
	}
}

// OutputHistory is the bounded FIFO ring behind $OUT, $OUT[N] and
// $ERR[N]: entries evict oldest-first, both once the entry count
// reaches maxEntries and whenever the ring's total size would exceed
// maxTotalSize. Index 1 is always the most recently pushed entry.
type OutputHistory struct {
	mu sync.Mutex

	entries      []*OutputEntry // entries[0] is the most recent
	totalSize    int
	maxEntries   int
	maxEntrySize int
	maxTotalSize int
}

// NewOutputHistory builds a ring using dsh's default limits.
func NewOutputHistory() *OutputHistory {
	return NewOutputHistoryWithLimits(DefaultMaxOutputEntries, DefaultMaxOutputEntrySize, DefaultMaxOutputHistoryBytes)
}

// NewOutputHistoryWithLimits builds a ring with explicit limits, for
// tests that need to exercise eviction without pushing megabytes of
// data.
func NewOutputHistoryWithLimits(maxEntries, maxEntrySize, maxTotalSize int) *OutputHistory {
	return &OutputHistory{
		maxEntries:   maxEntries,
		maxEntrySize: maxEntrySize,
		maxTotalSize: maxTotalSize,
	}
}

// Push truncates e to this ring's per-entry limit, evicts the oldest
// entries needed to stay within both the entry-count and total-size
// budgets, and inserts e as the new index 1.
func (h *OutputHistory) Push(e *OutputEntry) {
	e.truncate(h.maxEntrySize)
	size := e.size()

	h.mu.Lock()
	defer h.mu.Unlock()

	for len(h.entries) >= h.maxEntries && len(h.entries) > 0 {
		h.evictOldest()
	}
	for h.totalSize+size > h.maxTotalSize && len(h.entries) > 0 {
		h.evictOldest()
	}

	h.entries = append([]*OutputEntry{e}, h.entries...)
	h.totalSize += size
}

func (h *OutputHistory) evictOldest() {
	last := len(h.entries) - 1
	h.totalSize -= h.entries[last].size()
	h.entries = h.entries[:last]
}

// Get returns the 1-based indexed entry; index 1 is the most recent,
// index Len() the oldest still retained.
func (h *OutputHistory) Get(index int) (*OutputEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 1 || index > len(h.entries) {
		return nil, false
	}
	return h.entries[index-1], true
}

// Stdout returns the 1-based indexed entry's captured stdout.
func (h *OutputHistory) Stdout(index int) (string, bool) {
	e, ok := h.Get(index)
	if !ok {
		return "", false
	}
	return e.Stdout, true
}

// Stderr returns the 1-based indexed entry's captured stderr.
func (h *OutputHistory) Stderr(index int) (string, bool) {
	e, ok := h.Get(index)
	if !ok {
		return "", false
	}
	return e.Stderr, true
}

// Len reports how many entries the ring currently holds.
func (h *OutputHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Clear empties the ring. Note: the `out --clear` builtin does not
// call this — the original implementation left --clear unimplemented,
// a precedent this port keeps (see builtins_output.go).
func (h *OutputHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	h.totalSize = 0
}

// parseOutputIndex recognizes prefix ("OUT" or "ERR") and its indexed
// form "prefix[N]", returning the 1-based index to look up. A bare
// prefix is shorthand for index 1, per spec §3's "$OUT is an alias for
// $OUT[1]".
func parseOutputIndex(name, prefix string) (int, bool) {
	name = strings.TrimPrefix(name, "$")
	if name == prefix {
		return 1, true
	}
	if !strings.HasPrefix(name, prefix+"[") || !strings.HasSuffix(name, "]") {
		return 0, false
	}
	inner := name[len(prefix)+1 : len(name)-1]
	idx, err := strconv.Atoi(inner)
	if err != nil {
		return 0, false
	}
	return idx, true
}
