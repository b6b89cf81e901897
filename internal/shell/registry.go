// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import "sort"

// Registry holds the builtin-name-to-implementation mapping the
// orchestrator consults before falling back to a PATH search.
type Registry struct {
	builtins map[string]Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]Builtin)}
}

// Register binds name to fn, overwriting any prior registration — the
// same mechanism a Lisp startup script uses to shadow a core builtin
// with a plugin implementation.
func (r *Registry) Register(name string, fn Builtin) {
	r.builtins[name] = fn
}

// Lookup returns the builtin bound to name, if any.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	fn, ok := r.builtins[name]
	return fn, ok
}

// Names returns every registered builtin name, sorted, for `help`-style
// introspection.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builtins))
	for n := range r.builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
