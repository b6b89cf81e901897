// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// CapturedRun starts argv under a PTY so an interactive program still
// believes it's talking to a terminal, while also capturing its output:
// the PTY master is read asynchronously by a Monitor, which mirrors bytes
// to mirror (the shell's real stdout) and accumulates them for
// OutputHistory. It blocks until the child exits.
func CapturedRun(argv []string, mirror io.Writer, maxCapture int) (exitCode int, captured []byte, err error) {
	if len(argv) == 0 {
		return 1, nil, fmt.Errorf("captured run: empty argv")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	master, err := pty.Start(cmd)
	if err != nil {
		return execExitCode(err), nil, &ExecError{Argv0: argv[0], Err: err, ExitCode: execExitCode(err)}
	}
	defer master.Close()

	if w, h, serr := pty.Getsize(os.Stdout); serr == nil {
		_ = pty.Setsize(master, &pty.Winsize{Rows: uint16(h), Cols: uint16(w)})
	}

	mon := &Monitor{Source: master, Mirror: mirror, MaxCapture: maxCapture}
	mon.Run()

	waitErr := cmd.Wait()
	mon.Stop()
	mon.Wait()

	captured = mon.Captured()

	if waitErr == nil {
		return 0, captured, nil
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), captured, nil
	}
	return 1, captured, fmt.Errorf("captured run: %w", waitErr)
}
