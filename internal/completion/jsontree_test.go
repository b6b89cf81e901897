// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package completion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeRegistryLoadsEmbeddedDefaults(t *testing.T) {
	r := NewTreeRegistry("")
	tree, ok := r.Lookup("git")
	require.True(t, ok)
	assert.Equal(t, "git", tree.Command)
	assert.NotEmpty(t, tree.Subcommands)
}

func TestTreeRegistryUserOverrideWins(t *testing.T) {
	dir := t.TempDir()
	content := `{"command":"git","subcommands":[{"name":"custom"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "git.json"), []byte(content), 0o644))

	r := NewTreeRegistry(dir)
	tree, ok := r.Lookup("git")
	require.True(t, ok)
	require.Len(t, tree.Subcommands, 1)
	assert.Equal(t, "custom", tree.Subcommands[0].Name)
}

func TestTreeRegistryRejectsScriptKind(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"command": "evil",
		"arguments": [{"name": "x", "type": {"type": "Script"}}]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evil.json"), []byte(content), 0o644))

	r := NewTreeRegistry(dir)
	_, ok := r.Lookup("evil")
	assert.False(t, ok)
}

func TestTreeRegistrySkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"not": "a tree"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notatree.json"), []byte(content), 0o644))

	r := NewTreeRegistry(dir)
	_, ok := r.Lookup("notatree")
	assert.False(t, ok)
}

func TestResolvePosition(t *testing.T) {
	r := NewTreeRegistry("")
	tree, ok := r.Lookup("git")
	require.True(t, ok)

	pos := tree.resolve([]string{"commit"})
	assert.Len(t, pos.subcommands, 0)

	var hasMessage bool
	for _, o := range pos.options {
		if o.Short == "-m" {
			hasMessage = true
		}
	}
	assert.True(t, hasMessage)
}
