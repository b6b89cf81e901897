// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	humanize "github.com/dustin/go-humanize"
)

// builtinJobs lists every tracked job in a borderless lipgloss table: id,
// fg/bg mark, state, a humanize.Time relative age ("3s ago"), and the
// original command line.
func builtinJobs(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	jobs := proxy.Jobs()
	if len(jobs) == 0 {
		return ExitSuccess
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("JOB", "STATE", "AGE", "COMMAND")
	for _, j := range jobs {
		mark := "-"
		if j.Foreground {
			mark = "+"
		}
		age := "-"
		if !j.StartedAt.IsZero() {
			age = humanize.Time(j.StartedAt)
		}
		t.Row(fmt.Sprintf("[%d]%s", j.ID, mark), j.State, age, j.Command)
	}
	fmt.Fprintln(ctx.Stdout, t.String())
	return ExitSuccess
}

// parseJobID accepts both "3" and the conventional "%3" job spec.
func parseJobID(argv []string) (int, error) {
	if len(argv) < 2 {
		return 0, fmt.Errorf("usage: %s %%<job-id>", argv[0])
	}
	spec := strings.TrimPrefix(argv[1], "%")
	id, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid job id: %s", argv[0], argv[1])
	}
	return id, nil
}

func builtinFg(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	id, err := parseJobID(argv)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	if err := proxy.Foreground(id); err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	return ExitSuccess
}

func builtinBg(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	id, err := parseJobID(argv)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	if err := proxy.Background(id); err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	return ExitSuccess
}

func builtinKill(ctx *Context, argv []string, proxy ShellProxy) ExitStatus {
	signal := "TERM"
	rest := argv[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		signal = rest[0]
		rest = rest[1:]
	}
	if len(rest) == 0 {
		fmt.Fprintln(ctx.Stderr, "kill: usage: kill [-SIGNAL] %job")
		return ExitFailure
	}
	id, err := parseJobID(append([]string{"kill"}, rest[0]))
	if err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	if err := proxy.KillJob(id, signal); err != nil {
		fmt.Fprintln(ctx.Stderr, err.Error())
		return ExitFailure
	}
	return ExitSuccess
}
