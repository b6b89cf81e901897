// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/dsh/internal/history"
	"github.com/staranto/dsh/internal/process"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *Context) {
	t.Helper()
	dir := t.TempDir()
	hist, err := history.Open(filepath.Join(dir, "history.db"), 168)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	reg := NewRegistry()
	RegisterCore(reg)
	RegisterDomainStubs(reg)

	tbl := process.NewTable(int(os.Stdin.Fd()), os.Getpid())
	o := New(reg, NewAliasTable(), hist, tbl, os.Getenv("HOME"))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	c := NewContext(cwd)
	c.SaveHistory = false

	return o, c
}

func requireExternal(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not on PATH: %v", name, err)
	}
}

func captureStdout(t *testing.T, c *Context, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := c.Stdout
	c.Stdout = w
	fn()
	w.Close()
	c.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestEvalPipelineExitPropagation(t *testing.T) {
	requireExternal(t, "true")
	requireExternal(t, "false")
	o, c := newTestOrchestrator(t)

	status := o.Eval(context.Background(), c, "true | false")
	assert.Equal(t, ExitFailure, status)

	status = o.Eval(context.Background(), c, "false | true")
	assert.Equal(t, ExitSuccess, status)
}

func TestEvalShortCircuitAndOr(t *testing.T) {
	requireExternal(t, "true")
	requireExternal(t, "false")
	o, c := newTestOrchestrator(t)

	out := captureStdout(t, c, func() {
		status := o.Eval(context.Background(), c, "false && echo A || echo B")
		assert.Equal(t, ExitSuccess, status)
	})
	assert.Equal(t, "B\n", out)
}

func TestEvalCdUpdatesCwd(t *testing.T) {
	o, c := newTestOrchestrator(t)
	dir := t.TempDir()

	status := o.Eval(context.Background(), c, "cd "+dir)
	require.Equal(t, ExitSuccess, status)

	real, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotReal, err := filepath.EvalSymlinks(c.Cwd)
	require.NoError(t, err)
	assert.Equal(t, real, gotReal)
}

func TestEvalExportThenReadback(t *testing.T) {
	o, c := newTestOrchestrator(t)

	status := o.Eval(context.Background(), c, "export DSH_TEST_VAR=hello")
	require.Equal(t, ExitSuccess, status)
	assert.Equal(t, "hello", os.Getenv("DSH_TEST_VAR"))
	t.Cleanup(func() { os.Unsetenv("DSH_TEST_VAR") })
}

func TestEvalSetAndUnsetShellVar(t *testing.T) {
	o, c := newTestOrchestrator(t)

	require.Equal(t, ExitSuccess, o.Eval(context.Background(), c, "set FOO=bar"))
	v, ok := c.GetVar("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v)

	require.Equal(t, ExitSuccess, o.Eval(context.Background(), c, "unset FOO"))
	_, ok = c.GetVar("FOO")
	assert.False(t, ok)
}

func TestEvalAliasExpansion(t *testing.T) {
	requireExternal(t, "echo")
	o, c := newTestOrchestrator(t)

	require.Equal(t, ExitSuccess, o.Eval(context.Background(), c, "alias greet=echo"))

	out := captureStdout(t, c, func() {
		status := o.Eval(context.Background(), c, "greet hi")
		assert.Equal(t, ExitSuccess, status)
	})
	assert.Equal(t, "hi\n", out)
}

func TestEvalCommandSubstitution(t *testing.T) {
	requireExternal(t, "echo")
	o, c := newTestOrchestrator(t)

	out := captureStdout(t, c, func() {
		status := o.Eval(context.Background(), c, "echo $(echo nested)")
		assert.Equal(t, ExitSuccess, status)
	})
	assert.Equal(t, "nested\n", out)
}

func TestEvalCommandNotFoundExit127(t *testing.T) {
	o, c := newTestOrchestrator(t)
	status := o.Eval(context.Background(), c, "this-command-does-not-exist-xyz")
	assert.Equal(t, ExitNotFound, status)
}

func TestEvalBackgroundJobReportsID(t *testing.T) {
	requireExternal(t, "sleep")
	o, c := newTestOrchestrator(t)

	out := captureStdout(t, c, func() {
		status := o.Eval(context.Background(), c, "sleep 5 &")
		assert.Equal(t, ExitSuccess, status)
	})
	assert.Contains(t, out, "[1]")

	jobs := (&contextProxy{o: o, ctx: c}).Jobs()
	require.Len(t, jobs, 1)
	require.NoError(t, o.Jobs.Kill(mustGetJob(t, o, jobs[0].ID), syscall.SIGKILL))
}

func mustGetJob(t *testing.T, o *Orchestrator, id int) *process.Job {
	t.Helper()
	j, ok := o.Jobs.Get(id)
	require.True(t, ok)
	return j
}

func TestEvalPopulatesOutVariable(t *testing.T) {
	requireExternal(t, "echo")
	o, c := newTestOrchestrator(t)

	_ = captureStdout(t, c, func() {
		status := o.Eval(context.Background(), c, "echo hello")
		assert.Equal(t, ExitSuccess, status)
	})

	v, ok := c.VarLookup("OUT")
	require.True(t, ok)
	assert.Equal(t, "hello\n", v)

	v, ok = c.VarLookup("OUT[1]")
	require.True(t, ok)
	assert.Equal(t, "hello\n", v)
}

func TestEvalSmartPipeSeedsFromLastOutput(t *testing.T) {
	requireExternal(t, "echo")
	requireExternal(t, "cat")
	o, c := newTestOrchestrator(t)

	_ = captureStdout(t, c, func() {
		status := o.Eval(context.Background(), c, "echo hello-smart-pipe")
		assert.Equal(t, ExitSuccess, status)
	})

	out := captureStdout(t, c, func() {
		status := o.Eval(context.Background(), c, "| cat")
		assert.Equal(t, ExitSuccess, status)
	})
	assert.Contains(t, out, "hello-smart-pipe")
}
