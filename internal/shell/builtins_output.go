// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// builtinOut is the builtin the output-history ring backs for direct
// inspection (as opposed to $OUT/$OUT[N]/$ERR[N] expansion), grounded
// on dsh-builtin/src/out.rs's `out` command.
func builtinOut(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	switch {
	case len(argv) >= 2 && (argv[1] == "--help" || argv[1] == "-h"):
		fmt.Fprintln(ctx.Stdout, "usage: out [N] | --list | --clear | --help")
		return ExitSuccess

	case len(argv) >= 2 && (argv[1] == "--list" || argv[1] == "-l"):
		return listOutputs(ctx, proxy)

	case len(argv) >= 2 && (argv[1] == "--clear" || argv[1] == "-c"):
		// Matches the original: --clear was never implemented there
		// either, so this port doesn't fabricate semantics for it.
		fmt.Fprintln(ctx.Stderr, "out: --clear is not implemented yet")
		return ExitFailure

	case len(argv) == 1:
		return showOutput(ctx, proxy, 1)

	default:
		n, err := strconv.Atoi(argv[1])
		if err != nil || n == 0 {
			fmt.Fprintf(ctx.Stderr, "out: invalid index: %s\n", argv[1])
			return ExitFailure
		}
		return showOutput(ctx, proxy, n)
	}
}

func showOutput(ctx *Context, proxy ShellProxy, index int) ExitStatus {
	stdout, _, ok := proxy.OutputAt(index)
	if !ok {
		fmt.Fprintf(ctx.Stderr, "out: no output at index %d\n", index)
		return ExitFailure
	}
	if stdout == "" {
		fmt.Fprintln(ctx.Stdout, "(empty output)")
		return ExitSuccess
	}
	fmt.Fprint(ctx.Stdout, stdout)
	if !strings.HasSuffix(stdout, "\n") {
		fmt.Fprintln(ctx.Stdout)
	}
	return ExitSuccess
}

// listOutputs prints a one-line preview of each of the ten most recent
// entries, oldest-first cutoff matching the original's fixed window.
func listOutputs(ctx *Context, proxy ShellProxy) ExitStatus {
	for i := 1; i <= 10; i++ {
		stdout, _, ok := proxy.OutputAt(i)
		if !ok {
			break
		}
		lines := strings.Count(stdout, "\n")
		fmt.Fprintf(ctx.Stdout, "[%d] %d lines, %d bytes: %s\n", i, lines, len(stdout), previewLine(stdout))
	}
	return ExitSuccess
}

func previewLine(s string) string {
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[:nl]
	}
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
