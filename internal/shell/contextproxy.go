// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/staranto/dsh/internal/util"
)

// contextProxy implements ShellProxy for one builtin invocation: it binds
// an Orchestrator to the specific Context the builtin is running
// against. A fresh contextProxy is created per dispatch rather than
// shared, so there is no ambiguity about which evaluation a builtin's
// proxy calls apply to.
type contextProxy struct {
	o   *Orchestrator
	ctx *Context
}

func (p *contextProxy) Dispatch(ctx context.Context, line string) ExitStatus {
	return p.o.Eval(ctx, p.ctx, line)
}

func (p *contextProxy) GetVar(name string) (string, bool) { return p.ctx.GetVar(name) }
func (p *contextProxy) SetVar(name, value string)         { p.ctx.SetVar(name, value) }
func (p *contextProxy) UnsetVar(name string)               { p.ctx.UnsetVar(name) }

func (p *contextProxy) OutputAt(index int) (string, string, bool) {
	e, ok := p.ctx.OutputHistory.Get(index)
	if !ok {
		return "", "", false
	}
	return e.Stdout, e.Stderr, true
}

func (p *contextProxy) SetEnvVar(name, value string) error {
	return os.Setenv(name, value)
}

func (p *contextProxy) UnsetEnvVar(name string) error {
	return os.Unsetenv(name)
}

func (p *contextProxy) GetEnvVar(name string) (string, bool) {
	return os.LookupEnv(name)
}

func (p *contextProxy) GetAlias(name string) (string, bool) { return p.o.Aliases.Lookup(name) }
func (p *contextProxy) SetAlias(name, value string)         { p.o.Aliases.Set(name, value) }
func (p *contextProxy) UnsetAlias(name string)              { p.o.Aliases.Unset(name) }
func (p *contextProxy) ListAliases() map[string]string      { return p.o.Aliases.List() }

func (p *contextProxy) AddPathEntry(dir string, prepend bool) error {
	_, err := addPathEntry(dir, prepend)
	return err
}

func (p *contextProxy) ChangeDir(path string) error {
	if err := os.Chdir(path); err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	p.ctx.Cwd = cwd
	if p.o.History != nil {
		p.o.History.VisitDirectory(cwd, util.Context(), 0)
	}
	return nil
}

func (p *contextProxy) GetCurrentDir() string { return p.ctx.Cwd }

func (p *contextProxy) OpenEditor(path string) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		return errors.New("open_editor: neither $VISUAL nor $EDITOR is set")
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (p *contextProxy) CaptureCommand(ctx context.Context, line string) (string, error) {
	return p.o.captureOutput(ctx, p.ctx, line)
}

func (p *contextProxy) RecentHistory(n int) []string {
	if p.o.History == nil {
		return nil
	}
	return p.o.History.Recent(n)
}

func (p *contextProxy) SearchHistoryPrefix(prefix string) (string, bool) {
	if p.o.History == nil {
		return "", false
	}
	return p.o.History.SearchPrefixWithContext(prefix, util.Context())
}

func (p *contextProxy) ResolveDirectory(query string) (string, bool) {
	if p.o.History == nil {
		return "", false
	}
	return p.o.resolveDirectory(query)
}

func (p *contextProxy) Jobs() []JobSummary {
	jobs := p.o.Jobs.List()
	out := make([]JobSummary, 0, len(jobs))
	p.o.jobLinesMu.Lock()
	defer p.o.jobLinesMu.Unlock()
	for _, j := range jobs {
		out = append(out, JobSummary{
			ID:         j.ID,
			Command:    p.o.jobLines[j.ID],
			State:      j.State().String(),
			Pgid:       j.Pgid,
			Foreground: j.Foreground,
			StartedAt:  j.StartedAt,
		})
	}
	return out
}

func (p *contextProxy) Foreground(jobID int) error {
	job, ok := p.o.Jobs.Get(jobID)
	if !ok {
		return fmt.Errorf("fg: no such job: %d", jobID)
	}
	if err := p.o.Jobs.Continue(job); err != nil {
		return err
	}
	return p.o.Jobs.Foreground(job)
}

func (p *contextProxy) Background(jobID int) error {
	job, ok := p.o.Jobs.Get(jobID)
	if !ok {
		return fmt.Errorf("bg: no such job: %d", jobID)
	}
	if err := p.o.Jobs.Continue(job); err != nil {
		return err
	}
	p.o.Jobs.Background(job)
	return nil
}

func (p *contextProxy) KillJob(jobID int, signal string) error {
	job, ok := p.o.Jobs.Get(jobID)
	if !ok {
		return fmt.Errorf("kill: no such job: %d", jobID)
	}
	sig, ok := signalByName(signal)
	if !ok {
		return fmt.Errorf("kill: unknown signal: %s", signal)
	}
	return p.o.Jobs.Kill(job, sig)
}

// GetGithubStatus and MCPServers complete the ShellProxy surface a
// plugin builtin (a git-aware prompt segment, an MCP-aware command)
// would use; CORE ships no logic behind either, only the contract.
func (p *contextProxy) GetGithubStatus() (string, error) {
	return "", errors.New("github status: not implemented in core")
}

func (p *contextProxy) MCPServers() []string { return nil }

func (p *contextProxy) Cancelled() bool { return p.o.interrupted.Load() }
