// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/dsh/internal/parser"
)

func requireBinary(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not found on PATH: %v", name, err)
	}
	return path
}

func waitJob(t *testing.T, job *Job) {
	t.Helper()
	tbl := NewTable(0, os.Getpid())
	tbl.Add(job)
	for job.State() != JobCompleted {
		_, err := tbl.wait(job, 0)
		require.NoError(t, err)
	}
}

func simpleJob(argv ...string) *Job {
	return &Job{
		Processes: []*Process{{Argv: argv, Next: -1}},
	}
}

func pipelineJob(stages ...[]string) *Job {
	procs := make([]*Process, len(stages))
	for i, argv := range stages {
		next := -1
		if i < len(stages)-1 {
			next = i + 1
		}
		procs[i] = &Process{Argv: argv, Next: next}
	}
	return &Job{Processes: procs}
}

func TestStartTruePipeFalseExitsNonzero(t *testing.T) {
	requireBinary(t, "true")
	requireBinary(t, "false")

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer devnull.Close()

	job := pipelineJob([]string{"true"}, []string{"false"})
	require.NoError(t, Start(job, StdStreams{Stdin: devnull, Stdout: devnull, Stderr: devnull}))
	waitJob(t, job)

	assert.Equal(t, 1, job.ExitCode(), "pipeline exit status is the last stage's")
}

func TestStartFalsePipeTrueExitsZero(t *testing.T) {
	requireBinary(t, "true")
	requireBinary(t, "false")

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer devnull.Close()

	job := pipelineJob([]string{"false"}, []string{"true"})
	require.NoError(t, Start(job, StdStreams{Stdin: devnull, Stdout: devnull, Stderr: devnull}))
	waitJob(t, job)

	assert.Equal(t, 0, job.ExitCode())
}

func TestStartCatRedirectedInputEmitsFileBytes(t *testing.T) {
	requireBinary(t, "cat")

	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("line one\nline two\n"), 0o644))

	outFile, err := os.Create(outPath)
	require.NoError(t, err)
	defer outFile.Close()

	job := simpleJob("cat")
	job.Processes[0].Redirects = []*parser.Redirect{
		{Kind: parser.Input, Target: literalSpan(inPath)},
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer devnull.Close()

	require.NoError(t, Start(job, StdStreams{Stdin: devnull, Stdout: outFile, Stderr: devnull}))
	waitJob(t, job)

	assert.Equal(t, 0, job.ExitCode())
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(got))
}

func TestStartPipeWiresStdoutToStdin(t *testing.T) {
	requireBinary(t, "cat")
	grep := requireBinary(t, "grep")
	_ = grep

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")
	outFile, err := os.Create(outPath)
	require.NoError(t, err)
	defer outFile.Close()

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer devnull.Close()

	job := pipelineJob([]string{"echo", "needle-in-haystack"}, []string{"grep", "needle"})
	require.NoError(t, Start(job, StdStreams{Stdin: devnull, Stdout: outFile, Stderr: devnull}))
	waitJob(t, job)

	assert.Equal(t, 0, job.ExitCode())
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "needle-in-haystack")
}
