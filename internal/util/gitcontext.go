// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package util holds small, dependency-free helpers shared across dsh's
// core packages.
package util

import (
	"os"
	"os/exec"
	"strings"
)

// Context returns the frecency context tag for the current working
// directory: the git repository's top-level directory if cwd is inside one,
// otherwise cwd itself.
func Context() string {
	if top, err := GitToplevel(); err == nil && top != "" {
		return top
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}

// GitToplevel shells out to `git rev-parse --show-toplevel` and returns the
// repository root for the current directory, or an error if cwd is not
// inside a git working tree (or git is not installed).
func GitToplevel() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
