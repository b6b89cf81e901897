// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"fmt"
	"sort"
	"strings"
)

func builtinAlias(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	if len(argv) == 1 {
		aliases := proxy.ListAliases()
		names := make([]string, 0, len(aliases))
		for n := range aliases {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(ctx.Stdout, "alias %s='%s'\n", n, aliases[n])
		}
		return ExitSuccess
	}

	status := ExitSuccess
	for _, arg := range argv[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			if v, has := proxy.GetAlias(name); has {
				fmt.Fprintf(ctx.Stdout, "alias %s='%s'\n", name, v)
			} else {
				fmt.Fprintf(ctx.Stderr, "alias: %s: not found\n", name)
				status = ExitFailure
			}
			continue
		}
		proxy.SetAlias(name, strings.Trim(value, "'\""))
	}
	return status
}

func builtinUnalias(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	for _, name := range argv[1:] {
		proxy.UnsetAlias(name)
	}
	return ExitSuccess
}
