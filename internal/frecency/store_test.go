// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package frecency

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrecencyOrdering(t *testing.T) {
	s := New(12)
	for i := 0; i < 5; i++ {
		s.Add("X", "")
	}
	s.Add("Y", "")

	assert.Equal(t, "X", s.Sorted(Frequent, "")[0].Item)
	assert.Equal(t, "Y", s.Sorted(Recent, "")[0].Item)
}

func TestContextBoost(t *testing.T) {
	s := New(12)
	s.Add("cmd_unique", "A")
	s.Add("cmd_unique_b", "B")

	gotA := searchPrefixWithContext(s, "cmd_unique", "A")
	require.NotNil(t, gotA)
	assert.Equal(t, "cmd_unique", gotA.Item)

	gotB := searchPrefixWithContext(s, "cmd_unique", "B")
	require.NotNil(t, gotB)
	assert.Equal(t, "cmd_unique_b", gotB.Item)
}

// searchPrefixWithContext mirrors the history package's context-boosted
// prefix search: rank the prefix range by Frecent with a context boost and
// take the winner.
func searchPrefixWithContext(s *Store, prefix, context string) *Entry {
	candidates := s.SearchPrefixRange(prefix)
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	bestScore := -1.0
	now := s.nowElapsed()
	for _, e := range candidates {
		sc := s.currentFrecency(e, now)
		if e.Context == context && context != "" {
			sc *= ContextBoost
		}
		if sc > bestScore {
			bestScore = sc
			best = e
		}
	}
	return &best
}

func TestAddPreservesContextWhenNotSupplied(t *testing.T) {
	s := New(12)
	s.Add("proj", "ctxA")
	s.Add("proj", "") // no explicit context: must preserve "ctxA"

	e, ok := s.Get("proj")
	require.True(t, ok)
	assert.Equal(t, "ctxA", e.Context)
	assert.Equal(t, 2, e.NumAccesses)
}

func TestSearchPrefixRangeBounds(t *testing.T) {
	s := New(12)
	for _, item := range []string{"git", "gist", "grep", "go"} {
		s.Add(item, "")
	}

	got := s.SearchPrefixRange("gi")
	var names []string
	for _, e := range got {
		names = append(names, e.Item)
	}
	assert.ElementsMatch(t, []string{"git", "gist"}, names)
}

func TestDeleteAndAdjust(t *testing.T) {
	s := New(12)
	s.Add("a", "")

	assert.True(t, s.Adjust("a", 5))
	e, _ := s.Get("a")
	assert.Greater(t, e.Frecency, 5.0)

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Equal(t, 0, s.Len())
}

func TestTruncateKeepsTopNAndRestoresNameOrder(t *testing.T) {
	s := New(12)
	s.Add("c", "")
	s.Add("a", "")
	s.Add("a", "")
	s.Add("b", "")

	s.Truncate(2, Frequent)

	items := make([]string, 0, s.Len())
	for _, e := range s.Sorted(Recent, "") {
		items = append(items, e.Item)
	}
	assert.Len(t, items, 2)
	assert.Contains(t, items, "a")

	// Name-sorted invariant: SearchPrefixRange relies on it, so verify
	// directly against the internal entries via prefix search.
	got := s.SearchPrefixRange("")
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Item, got[i].Item)
	}
}

func TestPrune(t *testing.T) {
	s := New(12)
	s.Add("/tmp/exists", "")
	s.Add("/tmp/gone", "")

	s.Prune(func(item string) bool { return item == "/tmp/exists" })

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("/tmp/gone")
	assert.False(t, ok)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frecency.bin")

	s := New(12)
	s.Add("a", "ctx")
	s.Add("b", "")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	e, ok := loaded.Get("a")
	require.True(t, ok)
	assert.Equal(t, "ctx", e.Context)
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(filepath.Join(dir, "nope.bin"), 12)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSaveSkipsWriteWhenNotDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frecency.bin")

	s := New(12)
	require.NoError(t, s.Save(path)) // empty, never dirtied: no file expected
	_, err := Load(path, 12)
	require.NoError(t, err) // Load tolerates a missing file
}
