// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandAliasesFixpoint(t *testing.T) {
	aliases := map[string]string{
		"a": "b c",
		"b": "d e",
	}
	lookup := func(name string) (string, bool) {
		v, ok := aliases[name]
		return v, ok
	}

	got := ExpandAliases("a x", lookup, DefaultMaxAliasDepth)
	assert.Equal(t, "d e c x", got)
}

func TestExpandAliasesCycleStopsAtVisited(t *testing.T) {
	aliases := map[string]string{
		"a": "b",
		"b": "a",
	}
	lookup := func(name string) (string, bool) {
		v, ok := aliases[name]
		return v, ok
	}

	got := ExpandAliases("a", lookup, DefaultMaxAliasDepth)
	assert.Contains(t, []string{"a", "b"}, got)
}

func TestExpandAliasesOnlyLeadingWord(t *testing.T) {
	aliases := map[string]string{"ls": "ls --color"}
	lookup := func(name string) (string, bool) {
		v, ok := aliases[name]
		return v, ok
	}

	got := ExpandAliases("echo ls", lookup, DefaultMaxAliasDepth)
	assert.Equal(t, "echo ls", got)
}

func TestExpandAliasesSkipsQuotedLeadingWord(t *testing.T) {
	aliases := map[string]string{"ls": "ls --color"}
	lookup := func(name string) (string, bool) {
		v, ok := aliases[name]
		return v, ok
	}

	got := ExpandAliases(`'ls' -a`, lookup, DefaultMaxAliasDepth)
	assert.Equal(t, `'ls' -a`, got)
}

func TestExpandAliasesPerSimpleCommand(t *testing.T) {
	aliases := map[string]string{"ll": "ls -l"}
	lookup := func(name string) (string, bool) {
		v, ok := aliases[name]
		return v, ok
	}

	got := ExpandAliases("ll && ll", lookup, DefaultMaxAliasDepth)
	assert.Equal(t, "ls -l && ls -l", got)
}
