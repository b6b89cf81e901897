// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"fmt"
	"strings"
)

func builtinHistory(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	n := 20
	for _, line := range proxy.RecentHistory(n) {
		fmt.Fprintln(ctx.Stdout, line)
	}
	return ExitSuccess
}

// builtinZ jumps to the best-ranked previously-visited directory whose
// path contains the query (or the single most frecent directory overall
// when called with no argument), mirroring the `z`/`autojump`
// navigation convention.
func builtinZ(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	query := ""
	if len(argv) > 1 {
		query = strings.Join(argv[1:], " ")
	}
	dir, ok := proxy.ResolveDirectory(query)
	if !ok {
		fmt.Fprintf(ctx.Stderr, "z: no match for %q\n", query)
		return ExitFailure
	}
	if err := proxy.ChangeDir(dir); err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	fmt.Fprintln(ctx.Stdout, dir)
	return ExitSuccess
}
