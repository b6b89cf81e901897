// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package shell implements dsh's evaluation loop: it walks a parsed
// Commands AST, resolves each simple command to a builtin or a PATH
// executable, dispatches builtins through the ShellProxy a plugin would
// also use, and runs external commands through the process runtime.
package shell

import (
	"os"
	"sync"
)

// Context is the mutable state threaded through one evaluation: the
// working directory, shell (non-exported) variables, the last exit
// status, the streams builtins and external commands write their output
// to, and whether this evaluation should be recorded to history. A
// command-substitution sub-orchestrator gets its own Context with
// SaveHistory false and Stdout pointed at a pipe instead of the real
// terminal.
type Context struct {
	mu sync.RWMutex

	Cwd         string
	vars        map[string]string
	ExitStatus  int
	SaveHistory bool

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// OutputHistory is the bounded ring of (command, stdout, stderr,
	// exit_code, timestamp) entries behind $OUT/$OUT[N]/$ERR[N]; see
	// outputhistory.go. It is shared (not copied) by Clone, so a
	// command-substitution sub-evaluation sees the same $OUT a parent
	// evaluation does, and an external command it runs appends to the
	// same ring.
	OutputHistory *OutputHistory

	// Interrupted is a cooperative interruption flag carried with this
	// Context. The shell's SIGINT handler does not set it: it records
	// interruptions through Orchestrator.SetInterrupted, which builtins
	// observe via ShellProxy.Cancelled.
	Interrupted bool
}

// NewContext creates a Context rooted at cwd with history recording on
// and the real terminal as its streams.
func NewContext(cwd string) *Context {
	return &Context{
		Cwd:           cwd,
		vars:          make(map[string]string),
		SaveHistory:   true,
		Stdin:         os.Stdin,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		OutputHistory: NewOutputHistory(),
	}
}

// GetVar returns a shell (non-environment) variable's value.
func (c *Context) GetVar(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vars[name]
	return v, ok
}

// SetVar binds a shell variable, visible to $-expansion but not exported
// to child process environments.
func (c *Context) SetVar(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars[name] = value
}

// UnsetVar removes a shell variable binding.
func (c *Context) UnsetVar(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vars, name)
}

// Vars returns a snapshot of every shell variable binding, for `set`'s
// no-argument listing form.
func (c *Context) Vars() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// VarLookup adapts GetVar to expand.VarLookup's signature, additionally
// recognizing the $OUT/$OUT[N]/$ERR[N] forms (spec §3) ahead of the
// plain variable map: those names are never actually stored in vars,
// they are synthesized from OutputHistory on every lookup.
func (c *Context) VarLookup(name string) (string, bool) {
	if idx, ok := parseOutputIndex(name, "OUT"); ok {
		return c.OutputHistory.Stdout(idx)
	}
	if idx, ok := parseOutputIndex(name, "ERR"); ok {
		return c.OutputHistory.Stderr(idx)
	}
	return c.GetVar(name)
}

// Clone returns a Context suitable for a command-substitution
// sub-orchestrator: same cwd and variable bindings, history recording
// off, so nested evaluation can't pollute the real command log. The
// OutputHistory ring itself is shared, not copied: a subshell should
// still see $OUT, and anything it runs should still append to it.
func (c *Context) Clone() *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := &Context{
		Cwd:           c.Cwd,
		vars:          make(map[string]string, len(c.vars)),
		ExitStatus:    c.ExitStatus,
		SaveHistory:   false,
		Stdin:         c.Stdin,
		Stdout:        c.Stdout,
		Stderr:        c.Stderr,
		OutputHistory: c.OutputHistory,
	}
	for k, v := range c.vars {
		cp.vars[k] = v
	}
	return cp
}
