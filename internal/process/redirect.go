// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"

	"github.com/staranto/dsh/internal/parser"
)

// openRedirects opens every redirect on a SimpleCommand and returns the
// file descriptors it must install on the child's 0/1/2 before exec. A
// later redirect of the same stream overrides an earlier one, matching
// left-to-right shell evaluation.
func openRedirects(redirects []*parser.Redirect) (stdin, stdout, stderr *os.File, err error) {
	for _, r := range redirects {
		path := r.Target.Raw()
		switch r.Kind {
		case parser.Input:
			f, oerr := os.Open(path)
			if oerr != nil {
				return nil, nil, nil, fmt.Errorf("failed to open input redirect file: %s: %w", path, oerr)
			}
			closeIfSet(stdin)
			stdin = f

		case parser.StdoutOutput, parser.StdoutAppend:
			f, oerr := openForWrite(path, r.Kind == parser.StdoutAppend)
			if oerr != nil {
				return nil, nil, nil, fmt.Errorf("failed to open output redirect file: %s: %w", path, oerr)
			}
			closeIfSet(stdout)
			stdout = f

		case parser.StderrOutput, parser.StderrAppend:
			f, oerr := openForWrite(path, r.Kind == parser.StderrAppend)
			if oerr != nil {
				return nil, nil, nil, fmt.Errorf("failed to open error redirect file: %s: %w", path, oerr)
			}
			closeIfSet(stderr)
			stderr = f

		case parser.StdoutErrOutput, parser.StdoutErrAppend:
			// &> and &>> must share a single fd so stdout/stderr writes
			// interleave deterministically rather than racing two
			// independent file offsets against the same path.
			f, oerr := openForWrite(path, r.Kind == parser.StdoutErrAppend)
			if oerr != nil {
				return nil, nil, nil, fmt.Errorf("failed to open combined redirect file: %s: %w", path, oerr)
			}
			closeIfSet(stdout)
			closeIfSet(stderr)
			stdout = f
			stderr = f
		}
	}
	return stdin, stdout, stderr, nil
}

func openForWrite(path string, doAppend bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if doAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(path, flags, 0o644)
}

func closeIfSet(f *os.File) {
	if f != nil {
		f.Close()
	}
}
