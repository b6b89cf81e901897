// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package completion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemCandidates lists files and directories under the directory
// portion of partial (the word currently being typed), relative to cwd
// when partial is not itself absolute, with directories sorted before
// files per spec.md §4.E.
func FilesystemCandidates(partial, cwd string) []Candidate {
	dir, prefix := splitPathPrefix(partial)
	lookupDir := dir
	if dir == "" {
		lookupDir = cwd
	} else if !filepath.IsAbs(dir) {
		lookupDir = filepath.Join(cwd, dir)
	}

	entries, err := os.ReadDir(lookupDir)
	if err != nil {
		return nil
	}

	var dirs, files []Candidate
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		value := name
		if dir != "" {
			value = filepath.Join(dir, name)
		}
		if e.IsDir() {
			dirs = append(dirs, Candidate{Value: value + string(filepath.Separator), From: SourceFilesystem})
		} else {
			files = append(files, Candidate{Value: value, From: SourceFilesystem})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Value < dirs[j].Value })
	sort.Slice(files, func(i, j int) bool { return files[i].Value < files[j].Value })
	return append(dirs, files...)
}

// splitPathPrefix splits partial into its directory component and the
// filename prefix still being typed, e.g. "src/ma" -> ("src", "ma").
func splitPathPrefix(partial string) (dir, prefix string) {
	idx := strings.LastIndexByte(partial, filepath.Separator)
	if idx < 0 {
		return "", partial
	}
	return partial[:idx], partial[idx+1:]
}
