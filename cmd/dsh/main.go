// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Command dsh is the entrypoint binary: it wires config, logging, the
// history/frecency stores, the completion engine, the process/job-control
// runtime, and the shell orchestrator into either an interactive REPL (the
// input editor driving Orchestrator.Eval in a loop) or a single
// non-interactive evaluation (-c "<script>").
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	altsrc "github.com/urfave/cli-altsrc/v3"
	altyaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/dsh/internal/completion"
	completionui "github.com/staranto/dsh/internal/completion/ui"
	"github.com/staranto/dsh/internal/config"
	"github.com/staranto/dsh/internal/editor"
	"github.com/staranto/dsh/internal/history"
	"github.com/staranto/dsh/internal/log"
	"github.com/staranto/dsh/internal/process"
	"github.com/staranto/dsh/internal/shell"
	"github.com/staranto/dsh/internal/util"
)

// version is stamped at release build time via -ldflags; "dev" otherwise.
var version = "dev"

var appCtx = context.Background()

func main() {
	os.Exit(realMain())
}

// exitCode carries the last evaluated command's status out of the cli.Command
// action: urfave/cli's Run itself only distinguishes "ran" from "errored".
var exitCode int

func realMain() int {
	log.InitLogger()

	app := buildApp()
	if err := app.Run(appCtx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

func buildApp() *cli.Command {
	settingsPath, _ := defaultSettingsPath()
	yamlSrc := altyaml.YAML("log_level", altsrc.StringSourcer(settingsPath))

	return &cli.Command{
		Name:  "dsh",
		Usage: "an interactive POSIX-style shell",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "command",
				Aliases: []string{"c"},
				Usage:   "run <script> non-interactively and exit with its status",
			},
			&cli.BoolFlag{
				Name:  "no-rc",
				Usage: "skip ~/.config/dsh/config.lisp on startup",
			},
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "print dsh's version and exit",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "trace|debug|info|warn|error (overrides $DSH_LOG)",
				Sources: cli.NewValueSourceChain(yamlSrc),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				fmt.Println(version)
				return nil
			}
			if lvl := cmd.String("log-level"); lvl != "" {
				os.Setenv("DSH_LOG", lvl)
				log.InitLogger()
			}

			app, err := newShell()
			if err != nil {
				return fmt.Errorf("dsh: startup: %w", err)
			}
			defer app.Close()

			if script := cmd.String("command"); script != "" {
				exitCode = int(app.RunScript(ctx, script))
				return nil
			}

			exitCode = app.RunInteractive(ctx)
			return nil
		},
	}
}

// defaultSettingsPath mirrors internal/config's own XDG lookup so the CLI's
// flag-default YAML source and the ambient config package agree on where
// settings.yaml lives; it tolerates the file not existing yet.
func defaultSettingsPath() (string, error) {
	if p := os.Getenv("DSH_CFG_FILE"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dsh", "settings.yaml"), nil
}

// dataDir returns (creating if necessary) the XDG data directory dsh
// persists history.db and frecency.bin under.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		dir := filepath.Join(xdg, "dsh")
		return dir, os.MkdirAll(dir, 0o755)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "share", "dsh")
	return dir, os.MkdirAll(dir, 0o755)
}

// configSubdir returns (without creating) a named subdirectory of
// ~/.config/dsh — "completions" or "dynamic_completions" — tolerating
// absence, since both loaders already treat a missing/unreadable directory
// as "no entries from this source".
func configSubdir(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dsh", name)
}

// shellApp bundles every long-lived collaborator the orchestrator and editor
// share across the lifetime of one dsh process.
type shellApp struct {
	orch   *shell.Orchestrator
	ctx    *shell.Context
	hist   *history.Store
	jobs   *process.Table
	editor *editor.Editor
}

// newShell constructs every subsystem SPEC_FULL.md names and wires them
// together: history/frecency store, builtin registry, job table, completion
// engine and its two picker UIs, and the line editor, all bound to a fresh
// Orchestrator and root Context.
func newShell() (*shellApp, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}

	if _, err := config.Load(); err != nil {
		log.Warnf("config: %v", err)
	}

	halfLife, _ := config.GetFloat64("history.half_life_hours", 12.0)

	dDir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	hist, err := history.Open(filepath.Join(dDir, "history.db"), halfLife)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	reg := shell.NewRegistry()
	shell.RegisterCore(reg)
	shell.RegisterDomainStubs(reg)

	jobs := process.NewTable(int(os.Stdin.Fd()), os.Getpid())

	orch := shell.New(reg, shell.NewAliasTable(), hist, jobs, home)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = home
	}
	rootCtx := shell.NewContext(cwd)

	trees := completion.NewTreeRegistry(configSubdir("completions"))
	rules := completion.LoadRuleSet(configSubdir("dynamic_completions"))
	engine := completion.NewEngine(trees, rules, hist, envMap())

	gridCols, _ := config.GetInt("completion.grid_columns", 4)

	ed := editor.New()
	ed.History = hist
	ed.Completion = engine
	ed.Grid = completionui.NewGrid(gridCols)
	ed.Fuzzy = completionui.NewFuzzy(80, 20)
	ed.CwdFunc = func() string { return rootCtx.Cwd }
	ed.ContextFunc = util.Context

	return &shellApp{
		orch:   orch,
		ctx:    rootCtx,
		hist:   hist,
		jobs:   jobs,
		editor: ed,
	}, nil
}

// Close flushes and releases every collaborator with teardown state.
func (a *shellApp) Close() {
	if err := a.hist.Close(); err != nil {
		log.Warnf("history: close: %v", err)
	}
}

// RunScript evaluates a single non-interactive script line (-c) against
// a.ctx and returns its exit status, matching spec.md §6's "-c" CLI contract.
func (a *shellApp) RunScript(ctx context.Context, script string) shell.ExitStatus {
	a.ctx.SaveHistory = false
	return a.orch.Eval(ctx, a.ctx, script)
}

// RunInteractive drives the read-eval loop until the editor reports exit
// (Ctrl+D on an empty line, or double Ctrl+C), reaping background job state
// transitions on every iteration per spec.md §4.H and cooperatively
// observing SIGINT per spec.md §5/§9 (installSIGINTHandler).
func (a *shellApp) RunInteractive(ctx context.Context) int {
	sigCh := installSIGINTHandler(a.orch)
	defer signal.Stop(sigCh)

	for {
		a.jobs.Poll()
		a.orch.SetInterrupted(false)

		line, err := a.editor.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, editor.ErrExit) {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if line == "" {
			continue
		}

		a.orch.Eval(ctx, a.ctx, line)
	}

	return a.ctx.ExitStatus
}

// installSIGINTHandler starts a goroutine that forwards every SIGINT the
// shell's own process group receives (e.g. one not yet claimed by a
// foregrounded job's process group, per spec.md §5's cancellation
// semantics) to the orchestrator's cooperative interrupt flag.
func installSIGINTHandler(orch *shell.Orchestrator) chan os.Signal {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGINT)
	go func() {
		for range ch {
			orch.SetInterrupted(true)
		}
	}()
	return ch
}

// envMap snapshots os.Environ() into the map form the completion engine's
// Environment-kind argument candidates and dynamic-rule shell-outs expect.
func envMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				out[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return out
}
