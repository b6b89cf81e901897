// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"os"
	"strings"
)

// pathExecutables returns the basenames of every executable file found in
// $PATH, deduplicated, in PATH order. It supplies the candidates for
// "command not found" suggestions.
func pathExecutables() []string {
	path := os.Getenv("PATH")
	if path == "" {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, dir := range strings.Split(path, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if seen[name] {
				continue
			}
			info, err := e.Info()
			if err != nil || info.Mode()&0o111 == 0 {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// addPathEntry mutates the current process's PATH, prepending or
// appending dir, and returns the new value so a caller can also persist
// it if it wants to.
func addPathEntry(dir string, prepend bool) (string, error) {
	current := os.Getenv("PATH")
	parts := strings.Split(current, string(os.PathListSeparator))
	for _, p := range parts {
		if p == dir {
			return current, nil
		}
	}
	var next string
	if prepend {
		next = dir + string(os.PathListSeparator) + current
	} else {
		next = current + string(os.PathListSeparator) + dir
	}
	if err := os.Setenv("PATH", next); err != nil {
		return current, err
	}
	return next, nil
}
