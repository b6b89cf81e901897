// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package process implements dsh's pipeline and job-control runtime: it
// turns a parsed Commands AST into Job/Process graphs, forks and wires
// pipelines, applies redirects, and tracks job-control state transitions
// (running/stopped/completed) driven by SIGCHLD.
package process

import (
	"sync"
	"time"

	"github.com/staranto/dsh/internal/parser"
)

// State is a Process's run state.
type State int

const (
	Running State = iota
	Stopped
	Completed
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Completed:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Process is one forked program in a pipeline.
type Process struct {
	Argv      []string
	Redirects []*parser.Redirect

	Pid      int
	State    State
	ExitCode int
	StopSig  int // signal that stopped the process, valid when State==Stopped

	// Next indexes the following process in the owning Job's Processes
	// slice, or -1 if this is the pipeline's last stage. Indices, not
	// pointers, link the pipeline so the graph has no cyclic ownership to
	// walk at shutdown.
	Next int
}

// Done reports whether the process has exited (successfully or not).
func (p *Process) Done() bool {
	return p.State == Completed
}

// JobState is a Job's aggregate state, derived from its Processes.
type JobState int

const (
	JobRunning JobState = iota
	JobStopped
	JobCompleted
)

func (s JobState) String() string {
	switch s {
	case JobRunning:
		return "Running"
	case JobStopped:
		return "Stopped"
	case JobCompleted:
		return "Done"
	default:
		return "Unknown"
	}
}

// Job is one top-level command: a pipeline of Processes sharing a single
// process group, plus the list-operator relationship (§3 Separator) to
// whatever follows it on the command line.
type Job struct {
	ID         int
	Processes  []*Process
	Pgid       int
	Foreground bool
	Sep        parser.Separator // how this job relates to its successor
	StartedAt  time.Time        // set by Start, for "jobs"'s relative-age column

	mu sync.Mutex
}

// State derives the job's aggregate state from its processes: all
// completed rolls up to Completed with the last stage's exit code; any
// stopped process rolls up to Stopped; otherwise the job is Running.
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()

	allDone := true
	anyStopped := false
	for _, p := range j.Processes {
		switch p.State {
		case Stopped:
			anyStopped = true
			allDone = false
		case Running:
			allDone = false
		}
	}
	switch {
	case allDone:
		return JobCompleted
	case anyStopped:
		return JobStopped
	default:
		return JobRunning
	}
}

// ExitCode returns the last pipeline stage's exit code — the code a shell
// reports for the whole pipeline (§8 test #6: "false | true exits 0").
func (j *Job) ExitCode() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.Processes) == 0 {
		return 0
	}
	return j.Processes[len(j.Processes)-1].ExitCode
}

// BuildJob translates one parsed Command into a Job, one Process per
// pipeline stage, argv0 and arguments taken from each SimpleCommand's
// already-expanded Span text. Glob metacharacters left untouched by the
// expansion stage are resolved here, at argument-assembly time, per the
// grammar's deferred-globbing rule.
func BuildJob(id int, cmd *parser.Command) *Job {
	pipeline := cmd.Pipeline
	procs := make([]*Process, len(pipeline.Commands))
	for i, sc := range pipeline.Commands {
		argv := buildArgv(sc)
		next := -1
		if i < len(pipeline.Commands)-1 {
			next = i + 1
		}
		procs[i] = &Process{
			Argv:      argv,
			Redirects: sc.Redirects,
			State:     Running,
			Next:      next,
		}
	}
	return &Job{
		ID:         id,
		Processes:  procs,
		Foreground: !cmd.Background,
		Sep:        cmd.Sep,
	}
}

func buildArgv(sc *parser.SimpleCommand) []string {
	var argv []string
	argv = append(argv, globWord(sc.Argv0.Raw())...)
	for _, a := range sc.Args {
		argv = append(argv, globWord(a.Raw())...)
	}
	if len(argv) == 0 {
		argv = []string{""}
	}
	return argv
}
