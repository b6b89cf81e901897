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

func TestFilesystemCandidatesDirsFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Cargo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("x"), 0o644))

	candidates := FilesystemCandidates("Car", dir)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Cargo"+string(filepath.Separator), candidates[0].Value)
	assert.Equal(t, "Cargo.toml", candidates[1].Value)
}

func TestFilesystemCandidatesHidesDotfiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible"), []byte("x"), 0o644))

	candidates := FilesystemCandidates("", dir)
	require.Len(t, candidates, 1)
	assert.Equal(t, "visible", candidates[0].Value)
}
