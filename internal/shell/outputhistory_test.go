// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputHistoryGetIsOneBasedMostRecentFirst(t *testing.T) {
	h := NewOutputHistory()
	h.Push(newOutputEntry("cmd1", "out1", "", 0))
	h.Push(newOutputEntry("cmd2", "out2", "", 0))
	h.Push(newOutputEntry("cmd3", "out3", "", 0))

	stdout, ok := h.Stdout(1)
	require.True(t, ok)
	assert.Equal(t, "out3", stdout)

	stdout, ok = h.Stdout(3)
	require.True(t, ok)
	assert.Equal(t, "out1", stdout)

	_, ok = h.Stdout(4)
	assert.False(t, ok)

	_, ok = h.Stdout(0)
	assert.False(t, ok)
}

func TestOutputHistoryEvictsOldestByEntryCount(t *testing.T) {
	h := NewOutputHistoryWithLimits(3, DefaultMaxOutputEntrySize, DefaultMaxOutputHistoryBytes)
	h.Push(newOutputEntry("cmd1", "out1", "", 0))
	h.Push(newOutputEntry("cmd2", "out2", "", 0))
	h.Push(newOutputEntry("cmd3", "out3", "", 0))
	h.Push(newOutputEntry("cmd4", "out4", "", 0))

	assert.Equal(t, 3, h.Len())
	stdout, ok := h.Stdout(1)
	require.True(t, ok)
	assert.Equal(t, "out4", stdout)
	stdout, ok = h.Stdout(3)
	require.True(t, ok)
	assert.Equal(t, "out2", stdout)
}

func TestOutputHistoryEvictsOldestByTotalSize(t *testing.T) {
	h := NewOutputHistoryWithLimits(DefaultMaxOutputEntries, DefaultMaxOutputEntrySize, 12)
	h.Push(newOutputEntry("a", "12345", "", 0))
	h.Push(newOutputEntry("b", "12345", "", 0))
	// Each entry is 6 bytes (1-byte command + 5-byte stdout); pushing a
	// third would bring the ring past a 12-byte total budget, forcing the
	// oldest ("a") out first.
	h.Push(newOutputEntry("c", "12345", "", 0))

	assert.Equal(t, 2, h.Len())
	_, ok := h.Get(2)
	require.True(t, ok)
	assert.Equal(t, "b", h.entries[1].Command)
}

func TestOutputEntryTruncateShrinksProportionally(t *testing.T) {
	e := newOutputEntry("cmd", "0123456789", "abcdefghij", 0)
	e.truncate(10)
	assert.LessOrEqual(t, len(e.Stdout)+len(e.Stderr), 10+2*len("\n... (truncated)"))
	assert.Contains(t, e.Stdout, "... (truncated)")
	assert.Contains(t, e.Stderr, "... (truncated)")
}

func TestParseOutputIndex(t *testing.T) {
	cases := []struct {
		name    string
		prefix  string
		wantIdx int
		wantOk  bool
	}{
		{"OUT", "OUT", 1, true},
		{"$OUT", "OUT", 1, true},
		{"OUT[1]", "OUT", 1, true},
		{"$OUT[1]", "OUT", 1, true},
		{"OUT[5]", "OUT", 5, true},
		{"OUT[abc]", "OUT", 0, false},
		{"FOO", "OUT", 0, false},
		{"OUT[", "OUT", 0, false},
		{"ERR[2]", "ERR", 2, true},
	}
	for _, c := range cases {
		idx, ok := parseOutputIndex(c.name, c.prefix)
		assert.Equal(t, c.wantOk, ok, c.name)
		if c.wantOk {
			assert.Equal(t, c.wantIdx, idx, c.name)
		}
	}
}

func TestContextVarLookupResolvesOutAndErr(t *testing.T) {
	c := NewContext(t.TempDir())
	c.OutputHistory.Push(newOutputEntry("echo hello", "hello\n", "", 0))

	v, ok := c.VarLookup("OUT")
	require.True(t, ok)
	assert.Equal(t, "hello\n", v)

	v, ok = c.VarLookup("OUT[1]")
	require.True(t, ok)
	assert.Equal(t, "hello\n", v)

	_, ok = c.VarLookup("ERR[1]")
	require.True(t, ok)

	_, ok = c.VarLookup("OUT[2]")
	assert.False(t, ok)
}

func TestContextCloneSharesOutputHistory(t *testing.T) {
	c := NewContext(t.TempDir())
	clone := c.Clone()
	clone.OutputHistory.Push(newOutputEntry("x", "y", "", 0))

	v, ok := c.VarLookup("OUT")
	require.True(t, ok)
	assert.Equal(t, "y", v)
}
