// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/dsh/internal/parser"
)

func parseOne(t *testing.T, line string) *parser.Command {
	t.Helper()
	ast, err := parser.Parse(line)
	require.NoError(t, err)
	require.Len(t, ast.Items, 1)
	return ast.Items[0]
}

func TestBuildJobArgv(t *testing.T) {
	job := BuildJob(1, parseOne(t, "echo hello world"))
	require.Len(t, job.Processes, 1)
	assert.Equal(t, []string{"echo", "hello", "world"}, job.Processes[0].Argv)
}

func TestBuildJobPipelineLinksStages(t *testing.T) {
	job := BuildJob(1, parseOne(t, "ls | grep foo | wc -l"))
	require.Len(t, job.Processes, 3)
	assert.Equal(t, 1, job.Processes[0].Next)
	assert.Equal(t, 2, job.Processes[1].Next)
	assert.Equal(t, -1, job.Processes[2].Next)
}

func TestBuildJobBackgroundFlag(t *testing.T) {
	job := BuildJob(1, parseOne(t, "sleep 30 &"))
	assert.False(t, job.Foreground)
}

func TestJobStateAggregation(t *testing.T) {
	job := &Job{Processes: []*Process{
		{State: Completed, ExitCode: 1},
		{State: Completed, ExitCode: 0},
	}}
	assert.Equal(t, JobCompleted, job.State())
	assert.Equal(t, 0, job.ExitCode(), "pipeline exit status is the last stage's, even if an earlier stage failed")

	job.Processes[0].State = Stopped
	job.Processes[1].State = Running
	assert.Equal(t, JobStopped, job.State())

	job.Processes[0].State = Running
	assert.Equal(t, JobRunning, job.State())
}

func TestGlobWordExpandsMatches(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, writeEmptyFile(dir+"/"+name))
	}

	got := globWord("*.txt")
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, got)
}

func TestGlobWordLeavesNoMatchLiteral(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	got := globWord("*.nonexistent")
	assert.Equal(t, []string{"*.nonexistent"}, got)
}

func TestGlobWordPassesThroughPlainWord(t *testing.T) {
	assert.Equal(t, []string{"hello"}, globWord("hello"))
}

func writeEmptyFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}
