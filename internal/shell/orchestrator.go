// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	dshlog "github.com/staranto/dsh/internal/log"

	"github.com/staranto/dsh/internal/expand"
	"github.com/staranto/dsh/internal/frecency"
	"github.com/staranto/dsh/internal/history"
	"github.com/staranto/dsh/internal/parser"
	"github.com/staranto/dsh/internal/process"
	"github.com/staranto/dsh/internal/util"
)

// Orchestrator evaluates parsed command lines: it resolves each simple
// command to a builtin or a PATH executable, dispatches builtins through
// a ShellProxy, and hands pipelines of external commands to the process
// runtime. One Orchestrator is shared by the interactive REPL and every
// command-substitution sub-evaluation it spawns.
type Orchestrator struct {
	Registry *Registry
	Aliases  *AliasTable
	History  *history.Store
	Jobs     *process.Table
	Home     string

	interrupted atomic.Bool

	jobLinesMu sync.Mutex
	jobLines   map[int]string
}

// New builds an Orchestrator wired to the given builtin registry, alias
// table, history store, and job-control table.
func New(reg *Registry, aliases *AliasTable, hist *history.Store, jobs *process.Table, home string) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Aliases:  aliases,
		History:  hist,
		Jobs:     jobs,
		Home:     home,
		jobLines: make(map[int]string),
	}
}

// SetInterrupted records a SIGINT observed by the shell's signal
// handler; Cancelled (the ShellProxy method) and the evaluation loop's
// own cooperative checks consult it.
func (o *Orchestrator) SetInterrupted(v bool) {
	o.interrupted.Store(v)
}

// Eval expands, parses, and runs line against c, returning the exit
// status of the last command executed (or of the last command whose
// operator allowed it to run, per short-circuit rules). It updates
// c.ExitStatus and, when c.SaveHistory, records the line to the command
// history store.
func (o *Orchestrator) Eval(ctx context.Context, c *Context, line string) ExitStatus {
	start := time.Now()

	expander := expand.New(o.Aliases.Lookup, c.VarLookup, &executorAdapter{o: o, parent: c}, o.Home)
	expanded, warnings := expander.Expand(ctx, rewriteSmartPipe(line))
	for _, w := range warnings {
		dshlog.Warnf("expansion: %s", w.String())
	}

	cmds, err := parser.Parse(expanded)
	if err != nil {
		fmt.Fprintln(c.Stderr, err.Error())
		c.ExitStatus = int(ExitFailure)
		return ExitFailure
	}

	status := o.runCommands(ctx, c, cmds)
	c.ExitStatus = int(status)

	if c.SaveHistory && o.History != nil && len(strings.TrimSpace(line)) > 0 {
		o.History.Record(history.Entry{
			Command:    line,
			Timestamp:  time.Now().Unix(),
			Context:    util.Context(),
			ExitCode:   int(status),
			DurationMs: time.Since(start).Milliseconds(),
			Cwd:        c.Cwd,
			Count:      1,
		})
	}

	return status
}

// rewriteSmartPipe implements the glossary's "smart pipe": a line whose
// first non-blank character is a bare | pipes the previously captured
// stdout ($OUT) into the rest of the line, rather than failing to parse
// a pipeline with no left-hand side. It rewrites such a line into a
// `printf` seeded with $OUT feeding the user's pipeline — the same
// "print the last captured stdout, then pipe it onward" shape
// dsh-builtin/src/out.rs's print_last_stdout internal command existed
// for, expressed here as ordinary variable expansion plus a pipeline
// rather than a dedicated internal command, since a pipeline stage must
// be an external command in this runtime (see runOneCommand).
func rewriteSmartPipe(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "|") {
		return line
	}
	return `printf '%s' "$OUT" ` + trimmed
}

// runCommands walks cmds.Items applying ;/&&/||/& sequencing, per §5's
// ordering guarantees: a command only runs if the separator preceding it
// (on the prior command) permits it given the prior command's exit
// status.
func (o *Orchestrator) runCommands(ctx context.Context, c *Context, cmds *parser.Commands) ExitStatus {
	var last ExitStatus
	for i, cmd := range cmds.Items {
		if i > 0 {
			prevSep := cmds.Items[i-1].Sep
			switch prevSep {
			case parser.SepAnd:
				if last != ExitSuccess {
					continue
				}
			case parser.SepOr:
				if last == ExitSuccess {
					continue
				}
			}
		}
		last = o.runOneCommand(ctx, c, cmd)
	}
	return last
}

// runOneCommand executes a single pipeline-plus-background-flag Command,
// choosing between direct builtin dispatch (single-stage pipelines only)
// and the external process runtime.
func (o *Orchestrator) runOneCommand(ctx context.Context, c *Context, cmd *parser.Command) ExitStatus {
	if len(cmd.Pipeline.Commands) == 1 {
		name := cmd.Pipeline.Commands[0].Argv0.Raw()
		if fn, ok := o.Registry.Lookup(name); ok {
			argv := buildBuiltinArgv(cmd.Pipeline.Commands[0])
			proxy := &contextProxy{o: o, ctx: c}
			return fn(c, argv, proxy)
		}
	}
	return o.runExternal(ctx, c, cmd)
}

func buildBuiltinArgv(sc *parser.SimpleCommand) []string {
	argv := make([]string, 0, len(sc.Args)+1)
	argv = append(argv, sc.Argv0.Raw())
	for _, a := range sc.Args {
		argv = append(argv, a.Raw())
	}
	return argv
}

// runExternal builds and starts a Job for cmd, then either foregrounds it
// (blocking until it completes or stops) or leaves it running in the
// background, per cmd.Background. A foreground job's combined output is
// captured into c.OutputHistory as it runs (§4.I, §4.G): a single-stage
// pipeline with no redirects, run with a real terminal on stdout, goes
// through process.CapturedRun so a full-screen program still believes
// it has a PTY; everything else is captured by teeing the job's stdout
// and stderr through a process.Monitor.
func (o *Orchestrator) runExternal(ctx context.Context, c *Context, cmd *parser.Command) ExitStatus {
	first := cmd.Pipeline.Commands[0].Argv0.Raw()
	if _, err := exec.LookPath(first); err != nil {
		candidates := append(append([]string{}, o.Registry.Names()...), pathExecutables()...)
		nf := &NotFoundError{Argv0: first, Suggestions: suggest(first, candidates)}
		fmt.Fprintln(c.Stderr, nf.Error())
		return ExitNotFound
	}

	job := process.BuildJob(0, cmd)
	line := pipelineSummary(cmd)

	if job.Foreground && len(job.Processes) == 1 && len(job.Processes[0].Redirects) == 0 && isRealTerminal(c.Stdout) {
		return o.runCapturedForeground(c, job.Processes[0].Argv, line)
	}

	std := process.StdStreams{Stdin: c.Stdin, Stdout: c.Stdout, Stderr: c.Stderr}

	var outTee, errTee *outputTee
	if job.Foreground {
		outTee, std.Stdout = newOutputTee(c.Stdout)
		errTee, std.Stderr = newOutputTee(c.Stderr)
	}

	if err := process.Start(job, std); err != nil {
		outTee.abort()
		errTee.abort()
		fmt.Fprintf(c.Stderr, "%s: %v\n", first, err)
		return ExitFailure
	}
	outTee.closeWriter()
	errTee.closeWriter()

	id := o.Jobs.Add(job)
	o.jobLinesMu.Lock()
	o.jobLines[id] = line
	o.jobLinesMu.Unlock()

	if job.Foreground {
		if err := o.Jobs.Foreground(job); err != nil {
			dshlog.Warnf("job control: %v", err)
		}
		stdout := outTee.finish()
		stderr := errTee.finish()
		c.OutputHistory.Push(newOutputEntry(line, stdout, stderr, job.ExitCode()))
		if job.State() == process.JobCompleted {
			o.Jobs.Remove(id)
		}
		return ExitStatus(job.ExitCode())
	}

	o.Jobs.Background(job)
	fmt.Fprintf(c.Stdout, "[%d] %d\n", id, job.Pgid)
	return ExitSuccess
}

// runCapturedForeground runs a single-stage, redirect-free foreground
// command under a PTY (process.CapturedRun) so an interactive program
// still believes it's talking to a terminal, while capturing its
// (merged stdout+stderr, as a PTY gives no way to tell them apart)
// output into the ring.
func (o *Orchestrator) runCapturedForeground(c *Context, argv []string, line string) ExitStatus {
	exitCode, captured, err := process.CapturedRun(argv, c.Stdout, DefaultMaxOutputEntrySize)
	c.OutputHistory.Push(newOutputEntry(line, string(captured), "", exitCode))
	if err != nil {
		fmt.Fprintf(c.Stderr, "%s: %v\n", argv[0], err)
	}
	return ExitStatus(exitCode)
}

// isRealTerminal reports whether f is a real terminal device, the
// condition under which running a simple foreground command under a
// PTY (rather than teeing its raw stdout) is worth the byte-for-byte
// terminal translation that comes with it (e.g. \n -> \r\n).
func isRealTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// outputTee duplicates one stream (stdout or stderr) of a foreground
// job into OutputHistory while still mirroring every byte to the real
// terminal (or whatever c.Stdout/c.Stderr currently is) as it arrives,
// via a process.Monitor reading the other end of a pipe.
type outputTee struct {
	r   *os.File
	w   *os.File
	mon *process.Monitor
}

// newOutputTee opens a pipe, starts a Monitor mirroring to mirror, and
// returns the tee plus the pipe's write end for the caller to hand the
// child as its stdout/stderr. A pipe failure degrades to no capture:
// the returned *os.File is just mirror, unchanged.
func newOutputTee(mirror *os.File) (*outputTee, *os.File) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, mirror
	}
	t := &outputTee{
		r:   r,
		w:   w,
		mon: &process.Monitor{Source: r, Mirror: mirror, MaxCapture: DefaultMaxOutputEntrySize},
	}
	t.mon.Run()
	return t, w
}

// closeWriter closes the tee's own copy of the pipe's write end once
// the child has started (and so holds its own dup'd copy): the
// Monitor's read loop only sees EOF once every writer has closed.
func (t *outputTee) closeWriter() {
	if t == nil {
		return
	}
	_ = t.w.Close()
}

// abort tears a tee down after a failed Start, before any data flowed.
func (t *outputTee) abort() {
	if t == nil {
		return
	}
	t.mon.Stop()
	_ = t.w.Close()
	t.mon.Wait()
	_ = t.r.Close()
}

// finish waits for the monitor to observe EOF, releases the pipe, and
// returns everything captured.
func (t *outputTee) finish() string {
	if t == nil {
		return ""
	}
	t.mon.Wait()
	_ = t.r.Close()
	return string(t.mon.Captured())
}

func pipelineSummary(cmd *parser.Command) string {
	var stages []string
	for _, sc := range cmd.Pipeline.Commands {
		words := []string{sc.Argv0.Raw()}
		for _, a := range sc.Args {
			words = append(words, a.Raw())
		}
		stages = append(stages, strings.Join(words, " "))
	}
	return strings.Join(stages, " | ")
}

// captureOutput runs command as a nested evaluation against a clone of
// parent (history recording off, stdout redirected to an in-process
// pipe) and returns everything written to stdout.
func (o *Orchestrator) captureOutput(ctx context.Context, parent *Context, command string) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", fmt.Errorf("command substitution: %w", err)
	}

	sub := parent.Clone()
	sub.Stdout = w

	done := make(chan struct{})
	var status ExitStatus
	go func() {
		status = o.Eval(ctx, sub, command)
		w.Close()
		close(done)
	}()

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, rerr := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	r.Close()
	<-done

	if status != ExitSuccess {
		return string(buf), fmt.Errorf("command substitution: exit status %d", status)
	}
	return string(buf), nil
}

// resolveDirectory ranks every visited directory by frecency (boosted by
// the current git-toplevel context) and returns the highest-ranked one
// whose path contains query.
func (o *Orchestrator) resolveDirectory(query string) (string, bool) {
	ranked := o.History.RankedDirectories(frecency.Frecent, util.Context())
	for _, e := range ranked {
		if query == "" || strings.Contains(e.Item, query) {
			return e.Item, true
		}
	}
	return "", false
}

// executorAdapter binds an Orchestrator and a specific parent Context to
// expand.Executor's signature, so the expander package never needs to
// know about shell.Context or shell.Orchestrator.
type executorAdapter struct {
	o      *Orchestrator
	parent *Context
}

func (e *executorAdapter) CaptureOutput(ctx context.Context, command string) (string, error) {
	return e.o.captureOutput(ctx, e.parent, command)
}
