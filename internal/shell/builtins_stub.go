// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import "fmt"

// RegisterDomainStubs registers the domain-specific builtins (bookmarks,
// task tracking, process listing, HTTP serve, notebook playback, AI chat)
// that stay out of this repository's scope; no git wrapper is registered.
// Each stub proves the builtins reach the orchestrator exclusively
// through ShellProxy — the same surface a Lisp plugin would be handed —
// without shipping any of their actual logic.
func RegisterDomainStubs(r *Registry) {
	for _, name := range []string{"bookmark", "task", "procs", "serve", "notebook", "ai"} {
		name := name
		r.Register(name, func(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
			fmt.Fprintf(ctx.Stderr, "%s: not implemented in core\n", name)
			return ExitFailure
		})
	}
}
