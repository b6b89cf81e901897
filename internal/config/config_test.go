// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// setupTestConfig sets DSH_CFG_FILE to point to a test settings file. Returns
// a cleanup function that should be deferred.
func setupTestConfig(t *testing.T, testdataFile string) (cleanup func()) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	assert.NoError(t, err)

	t.Setenv("DSH_CFG_FILE", absPath)
	Config = Type{}

	return func() {
		Config = Type{}
	}
}

func withConfig(t *testing.T, testFile string, fn func(t *testing.T)) {
	t.Helper()
	cleanup := setupTestConfig(t, testFile)
	defer cleanup()
	_, _ = Load()
	fn(t)
}

func TestLoad(t *testing.T) {
	withConfig(t, "simple.yaml", func(t *testing.T) {
		assert.NotEmpty(t, Config.Source)
		assert.Contains(t, Config.Data, "history")
	})
}

func TestGetInt(t *testing.T) {
	withConfig(t, "simple.yaml", func(t *testing.T) {
		v, err := GetInt("history.half_life_hours")
		assert.NoError(t, err)
		assert.Equal(t, 6, v)
	})
}

func TestGetIntDefault(t *testing.T) {
	withConfig(t, "simple.yaml", func(t *testing.T) {
		v, err := GetInt("history.missing_key", 42)
		assert.NoError(t, err)
		assert.Equal(t, 42, v)
	})
}

func TestGetString(t *testing.T) {
	withConfig(t, "simple.yaml", func(t *testing.T) {
		v, err := GetString("history.db_path")
		assert.NoError(t, err)
		assert.Equal(t, "/tmp/history.db", v)
	})
}

func TestGetBool(t *testing.T) {
	withConfig(t, "simple.yaml", func(t *testing.T) {
		v, err := GetBool("editor.ghost_suggestion")
		assert.NoError(t, err)
		assert.True(t, v)
	})
}

func TestGetStringSlice(t *testing.T) {
	withConfig(t, "simple.yaml", func(t *testing.T) {
		v, err := GetStringSlice("aliases")
		assert.NoError(t, err)
		assert.Equal(t, []string{"ll", "la"}, v)
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("DSH_CFG_FILE", "/nonexistent/settings.yaml")
	Config = Type{}
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Empty(t, cfg.Data)
}
