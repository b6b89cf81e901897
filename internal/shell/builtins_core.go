// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RegisterCore binds the builtins that are part of CORE per the shell's
// scope boundary: cd, export, set/unset, alias/unalias, jobs/fg/bg/kill,
// history, z, and out. Domain-specific builtins (bookmark, task,
// ...) are registered separately in builtins_stub.go to
// prove the ShellProxy boundary without shipping their logic.
func RegisterCore(r *Registry) {
	r.Register("cd", builtinCd)
	r.Register("export", builtinExport)
	r.Register("set", builtinSet)
	r.Register("unset", builtinUnset)
	r.Register("alias", builtinAlias)
	r.Register("unalias", builtinUnalias)
	r.Register("jobs", builtinJobs)
	r.Register("fg", builtinFg)
	r.Register("bg", builtinBg)
	r.Register("kill", builtinKill)
	r.Register("history", builtinHistory)
	r.Register("z", builtinZ)
	r.Register("out", builtinOut)
}

func builtinCd(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	target := ""
	switch len(argv) {
	case 1:
		home, ok := proxy.GetEnvVar("HOME")
		if !ok {
			fmt.Fprintln(ctx.Stderr, "cd: HOME not set")
			return ExitFailure
		}
		target = home
	case 2:
		target = argv[1]
		if target == "-" {
			prev, ok := proxy.GetVar("OLDPWD")
			if !ok {
				fmt.Fprintln(ctx.Stderr, "cd: OLDPWD not set")
				return ExitFailure
			}
			target = prev
		}
	default:
		fmt.Fprintln(ctx.Stderr, "cd: too many arguments")
		return ExitFailure
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(ctx.Cwd, target)
	}

	oldpwd := ctx.Cwd
	if err := proxy.ChangeDir(target); err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	proxy.SetVar("OLDPWD", oldpwd)
	return ExitSuccess
}

func builtinExport(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	if len(argv) == 1 {
		names := os.Environ()
		sort.Strings(names)
		for _, kv := range names {
			fmt.Fprintln(ctx.Stdout, kv)
		}
		return ExitSuccess
	}
	status := ExitSuccess
	for _, arg := range argv[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			// export NAME (no value): promote an existing shell var, if
			// any, to the environment.
			if v, has := proxy.GetVar(name); has {
				value = v
			} else if v, has := proxy.GetEnvVar(name); has {
				value = v
			}
		}
		if err := proxy.SetEnvVar(name, value); err != nil {
			fmt.Fprintf(ctx.Stderr, "export: %v\n", err)
			status = ExitFailure
		}
	}
	return status
}

func builtinSet(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	if len(argv) == 1 {
		vars := ctx.Vars()
		names := make([]string, 0, len(vars))
		for k := range vars {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(ctx.Stdout, "%s=%s\n", k, vars[k])
		}
		return ExitSuccess
	}
	for _, arg := range argv[1:] {
		name, value, _ := strings.Cut(arg, "=")
		proxy.SetVar(name, value)
	}
	return ExitSuccess
}

func builtinUnset(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	for _, name := range argv[1:] {
		proxy.UnsetVar(name)
		_ = proxy.UnsetEnvVar(name)
	}
	return ExitSuccess
}
