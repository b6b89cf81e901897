// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import "sync"

// AliasTable is the in-process alias binding store consulted by the
// expander's alias-expansion stage and mutated by the `alias`/`unalias`
// builtins.
type AliasTable struct {
	mu    sync.RWMutex
	table map[string]string
}

// NewAliasTable returns an empty alias table.
func NewAliasTable() *AliasTable {
	return &AliasTable{table: make(map[string]string)}
}

// Lookup returns name's alias binding; its signature matches
// expand.AliasLookup.
func (a *AliasTable) Lookup(name string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.table[name]
	return v, ok
}

// Set binds name to value, overwriting any prior binding.
func (a *AliasTable) Set(name, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.table[name] = value
}

// Unset removes name's binding, if any.
func (a *AliasTable) Unset(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.table, name)
}

// List returns a snapshot of every alias binding.
func (a *AliasTable) List() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]string, len(a.table))
	for k, v := range a.table {
		out[k] = v
	}
	return out
}
