// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"time"
)

// ExitStatus is a builtin's or external command's result code, following
// the same convention as a POSIX process exit status.
type ExitStatus int

const (
	ExitSuccess      ExitStatus = 0
	ExitFailure      ExitStatus = 1
	ExitNotFound     ExitStatus = 127
	ExitPermission   ExitStatus = 126
	ExitSignalOffset            = 128
)

// Builtin is the uniform signature every built-in command implements. A
// builtin never imports the orchestrator package directly; it interacts
// with shell state exclusively through proxy, the same surface a
// Lisp-registered plugin builtin would be handed.
type Builtin func(ctx *Context, argv []string, proxy ShellProxy) ExitStatus

// ShellProxy is the capability surface builtins (core or plugin) consume
// to mutate and query shell state without reaching into the
// orchestrator's internals. It is synchronous and non-re-entrant: a
// builtin must not block the REPL for long, and a builtin that needs to
// run something asynchronously does so by asking the proxy, which yields
// back to the orchestrator rather than the builtin spinning its own
// goroutine.
type ShellProxy interface {
	// Dispatch runs cmd (a full command line, e.g. from an alias or a
	// plugin macro) through the same evaluation path as user input.
	Dispatch(ctx context.Context, line string) ExitStatus

	GetVar(name string) (string, bool)
	SetVar(name, value string)
	UnsetVar(name string)

	// OutputAt returns the 1-based indexed OutputHistory entry's
	// captured stdout/stderr, for a builtin (e.g. `out`) that inspects
	// the ring directly rather than going through $OUT/$OUT[N]
	// expansion.
	OutputAt(index int) (stdout, stderr string, ok bool)

	SetEnvVar(name, value string) error
	UnsetEnvVar(name string) error
	GetEnvVar(name string) (string, bool)

	GetAlias(name string) (string, bool)
	SetAlias(name, value string)
	UnsetAlias(name string)
	ListAliases() map[string]string

	// AddPathEntry prepends or appends dir to $PATH for this process and
	// its children.
	AddPathEntry(dir string, prepend bool) error

	ChangeDir(path string) error
	GetCurrentDir() string

	// OpenEditor launches $VISUAL or $EDITOR (in that preference order)
	// on path and waits for it to exit.
	OpenEditor(path string) error

	// CaptureCommand runs line and returns its captured stdout, exactly
	// as command substitution does, for a builtin that needs to shell
	// out internally (e.g. a completion rule tester).
	CaptureCommand(ctx context.Context, line string) (string, error)

	RecentHistory(n int) []string
	SearchHistoryPrefix(prefix string) (string, bool)

	// ResolveDirectory returns the highest-frecency visited directory
	// whose path contains query as a substring, for the `z` builtin.
	ResolveDirectory(query string) (string, bool)

	// Jobs returns a snapshot of every tracked job for `jobs`-style
	// listings.
	Jobs() []JobSummary
	Foreground(jobID int) error
	Background(jobID int) error
	KillJob(jobID int, signal string) error

	// GetGithubStatus and MCPServers round out the capability surface a
	// real plugin builtin (git wrappers, an MCP-aware builtin) would
	// need; CORE ships no logic behind them; see the stub registrations
	// in builtins_stub.go.
	GetGithubStatus() (string, error)
	MCPServers() []string

	// Cancelled reports whether the current foreground command should
	// observe a user-requested interruption (Ctrl+C) on its next
	// cooperative check point.
	Cancelled() bool
}

// JobSummary is the read-only view of a Job a builtin needs for listing
// or targeting; it avoids handing out *process.Job and creating an
// import-cycle-prone dependency from shell's public surface.
type JobSummary struct {
	ID         int
	Command    string
	State      string
	Pgid       int
	Foreground bool
	StartedAt  time.Time
}
