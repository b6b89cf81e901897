// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"sync"
	"syscall"

	"github.com/apex/log"
	"golang.org/x/sys/unix"
)

// JobControlError wraps a failed signal delivery (SIGCONT in Continue, or
// Kill) to a job's process group. A failed terminal handoff (TIOCSPGRP) is
// not returned as an error; it is logged at warn and the shell continues.
type JobControlError struct {
	Op  string
	Err error
}

func (e *JobControlError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *JobControlError) Unwrap() error { return e.Err }

// Table tracks every live Job for a shell session: next job id, the set of
// jobs, and the controlling terminal's fd used to transfer foreground
// status between the shell and a job's process group.
type Table struct {
	mu      sync.Mutex
	jobs    map[int]*Job
	nextID  int
	ttyFd   int
	shellPg int
}

// NewTable creates an empty job table bound to the controlling terminal
// fd (typically os.Stdin.Fd()) and the shell's own process group.
func NewTable(ttyFd int, shellPgid int) *Table {
	return &Table{jobs: make(map[int]*Job), nextID: 1, ttyFd: ttyFd, shellPg: shellPgid}
}

// Add registers job under a fresh id and returns it.
func (t *Table) Add(job *Job) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	job.ID = id
	t.jobs[id] = job
	return id
}

// Remove discards job from the table, e.g. on completion or `disown`.
func (t *Table) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// Get returns the job registered under id.
func (t *Table) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	return j, ok
}

// List returns every live job, ordered by id.
func (t *Table) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, 0, len(t.jobs))
	for id := 1; id < t.nextID; id++ {
		if j, ok := t.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out
}

// Foreground hands the controlling terminal to job's process group and
// blocks, reaping SIGCHLD transitions until the job completes or stops. On
// return it always reclaims the terminal for the shell, even on error,
// so the editor never inherits a terminal it doesn't own.
func (t *Table) Foreground(job *Job) error {
	if err := unix.IoctlSetPointerInt(t.ttyFd, unix.TIOCSPGRP, job.Pgid); err != nil {
		log.WithError(err).Warn("jobcontrol: failed to foreground job")
	}
	defer t.reclaimTerminal()

	for job.State() == JobRunning {
		if _, err := t.wait(job, 0); err != nil {
			return err
		}
	}
	return nil
}

// reclaimTerminal restores the shell's own process group as the
// terminal's foreground group, per the "shell's terminal foreground is
// restored on every job transition" invariant.
func (t *Table) reclaimTerminal() {
	if err := unix.IoctlSetPointerInt(t.ttyFd, unix.TIOCSPGRP, t.shellPg); err != nil {
		log.WithError(err).Warn("jobcontrol: failed to reclaim terminal")
	}
}

// Background leaves job running without transferring the terminal. The
// caller is expected to print a job-added notice.
func (t *Table) Background(job *Job) {
	job.Foreground = false
}

// Continue sends SIGCONT to job's process group, used by both `fg` and
// `bg` to resume a stopped job.
func (t *Table) Continue(job *Job) error {
	if err := unix.Kill(-job.Pgid, syscall.SIGCONT); err != nil {
		return &JobControlError{Op: "SIGCONT", Err: err}
	}
	job.mu.Lock()
	for _, p := range job.Processes {
		if p.State == Stopped {
			p.State = Running
		}
	}
	job.mu.Unlock()
	return nil
}

// Kill sends sig to job's entire process group.
func (t *Table) Kill(job *Job, sig syscall.Signal) error {
	if err := unix.Kill(-job.Pgid, sig); err != nil {
		return &JobControlError{Op: "kill", Err: err}
	}
	return nil
}

// Poll performs one non-blocking reap pass (WNOHANG) over every process
// belonging to any tracked background job, applying state transitions.
// The orchestrator calls this on a periodic tick so background jobs'
// stop/complete transitions are observed even with no foreground wait in
// flight.
func (t *Table) Poll() {
	t.mu.Lock()
	jobs := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		jobs = append(jobs, j)
	}
	t.mu.Unlock()

	for _, j := range jobs {
		if j.State() == JobCompleted {
			continue
		}
		_, _ = t.wait(j, unix.WNOHANG)
	}
}

// wait reaps at most one child transition for any process in job via
// waitpid(-pgid, ...), applying the resulting state transition to whichever
// Process matches the reaped pid. flags should be 0 for a blocking
// foreground wait or WNOHANG for a periodic background poll.
func (t *Table) wait(job *Job, flags int) (reaped bool, err error) {
	var ws unix.WaitStatus
	pid, werr := unix.Wait4(-job.Pgid, &ws, flags|unix.WUNTRACED|unix.WCONTINUED, nil)
	if werr == syscall.ECHILD {
		// No children left in this group: treat every still-Running
		// process as completed with an unknown (zero) code rather than
		// spinning forever waiting on a group that no longer exists.
		job.mu.Lock()
		for _, p := range job.Processes {
			if p.State == Running {
				p.State = Completed
			}
		}
		job.mu.Unlock()
		return false, nil
	}
	if werr != nil {
		return false, fmt.Errorf("jobcontrol: wait4: %w", werr)
	}
	if pid <= 0 {
		return false, nil
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	for _, p := range job.Processes {
		if p.Pid != pid {
			continue
		}
		switch {
		case ws.Exited():
			p.State = Completed
			p.ExitCode = ws.ExitStatus()
		case ws.Signaled():
			p.State = Completed
			p.ExitCode = 128 + int(ws.Signal())
		case ws.Stopped():
			p.State = Stopped
			p.StopSig = int(ws.StopSignal())
		case ws.Continued():
			p.State = Running
		}
		break
	}
	return true, nil
}
