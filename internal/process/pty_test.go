// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirePTY(t *testing.T) {
	t.Helper()
	master, slave, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available in this environment: %v", err)
	}
	master.Close()
	slave.Close()
}

func TestCapturedRunMirrorsAndCaptures(t *testing.T) {
	requirePTY(t)
	requireBinary(t, "echo")

	var mirror bytes.Buffer
	code, captured, err := CapturedRun([]string{"echo", "captured-output"}, &mirror, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, string(captured), "captured-output")
	assert.Contains(t, mirror.String(), "captured-output")
}

func TestCapturedRunReportsNonzeroExit(t *testing.T) {
	requirePTY(t)
	requireBinary(t, "false")

	var mirror bytes.Buffer
	code, _, err := CapturedRun([]string{"false"}, &mirror, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestCapturedRunEmptyArgvErrors(t *testing.T) {
	_, _, err := CapturedRun(nil, nil, 0)
	require.Error(t, err)
}
