// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// ExecError is returned when a pipeline stage fails to fork, exec, or open
// one of its redirects. ExitCode follows §7's taxonomy: 126 for a
// permission problem, 1 otherwise.
type ExecError struct {
	Argv0    string
	Err      error
	ExitCode int
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %v", e.Argv0, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// StdStreams is the three file-descriptor triple a job's first and last
// pipeline stages fall back to when they carry no redirect of their own.
type StdStreams struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Start forks and execs every process in job, left to right, wiring a pipe
// between each consecutive pair so stdout of stage i feeds stdin of stage
// i+1, and applying each stage's own redirects on top of std for
// whichever ends it doesn't own. All processes share job's process group:
// the first process creates it: Pgid: the kernel assigns it the new
// group's id equal to its own pid, which subsequent stages then join.
//
// Exec resets every child's signal dispositions to default as a normal
// consequence of the execve() call replacing the process image, which
// satisfies the SIGINT/QUIT/TSTP/TTIN/TTOU/CHLD reset the grammar expects
// of a forked child without any extra code here.
func Start(job *Job, std StdStreams) error {
	job.StartedAt = time.Now()
	n := len(job.Processes)
	cmds := make([]*exec.Cmd, n)
	var prevRead *os.File

	for i, p := range job.Processes {
		if len(p.Argv) == 0 || p.Argv[0] == "" {
			killStarted(cmds[:i])
			return &ExecError{Argv0: "", Err: errors.New("empty command"), ExitCode: 1}
		}

		cmd := exec.Command(p.Argv[0], p.Argv[1:]...)
		cmds[i] = cmd

		rstdin, rstdout, rstderr, err := openRedirects(p.Redirects)
		if err != nil {
			killStarted(cmds[:i])
			return &ExecError{Argv0: p.Argv[0], Err: err, ExitCode: 1}
		}

		switch {
		case rstdin != nil:
			cmd.Stdin = rstdin
		case prevRead != nil:
			cmd.Stdin = prevRead
		default:
			cmd.Stdin = std.Stdin
		}

		var pipeWrite *os.File
		var nextRead *os.File
		switch {
		case rstdout != nil:
			cmd.Stdout = rstdout
		case i < n-1:
			r, w, perr := os.Pipe()
			if perr != nil {
				closeIfSet(rstdin)
				closeIfSet(rstdout)
				closeIfSet(rstderr)
				killStarted(cmds[:i])
				return &ExecError{Argv0: p.Argv[0], Err: perr, ExitCode: 1}
			}
			cmd.Stdout = w
			pipeWrite = w
			nextRead = r
		default:
			cmd.Stdout = std.Stdout
		}

		if rstderr != nil {
			cmd.Stderr = rstderr
		} else {
			cmd.Stderr = std.Stderr
		}

		cmd.SysProcAttr = &syscall.SysProcAttr{
			Setpgid: true,
			Pgid:    job.Pgid,
		}

		if err := cmd.Start(); err != nil {
			closeIfSet(rstdin)
			closeIfSet(rstdout)
			closeIfSet(rstderr)
			closeIfSet(pipeWrite)
			closeIfSet(nextRead)
			killStarted(cmds[:i])
			return &ExecError{Argv0: p.Argv[0], Err: err, ExitCode: execExitCode(err)}
		}

		p.Pid = cmd.Process.Pid
		if i == 0 {
			job.Pgid = p.Pid
		}

		// The parent's copy of every fd handed to the child must close
		// now: the child has its own reference via the fork, and a pipe's
		// reader never sees EOF while the parent keeps the write end open
		// too.
		closeIfSet(rstdin)
		closeIfSet(rstdout)
		closeIfSet(rstderr)
		closeIfSet(pipeWrite)
		closeIfSet(prevRead)
		prevRead = nextRead
	}

	return nil
}

func killStarted(cmds []*exec.Cmd) {
	for _, c := range cmds {
		if c != nil && c.Process != nil {
			_ = c.Process.Kill()
		}
	}
}

func execExitCode(err error) int {
	if errors.Is(err, os.ErrPermission) {
		return 126
	}
	return 1
}
