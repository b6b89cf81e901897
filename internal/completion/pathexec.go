// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package completion

import (
	"os"
	"strings"
)

// PathExecutables returns the basenames of every executable file found in
// $PATH, deduplicated, in PATH order. Used as the completion engine's
// argv0 candidate source (spec.md §4.E source 5: "only when the cursor is
// on an argv0 word").
func PathExecutables() []string {
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
