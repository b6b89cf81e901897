// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package completion

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	dshlog "github.com/staranto/dsh/internal/log"
)

// MatchKind is a dynamic-completion rule's trigger condition, per spec.md
// §4.E/§6.
type MatchKind string

const (
	MatchStartsWithCommand       MatchKind = "StartsWithCommand"
	MatchHasSubcommand           MatchKind = "HasSubcommand"
	MatchHasSubcommandAndOption  MatchKind = "HasSubcommandAndOption"
	MatchSecondArgument          MatchKind = "SecondArgument"
	MatchThirdArgument           MatchKind = "ThirdArgument"
	MatchCustomPattern           MatchKind = "CustomPattern"
)

// MatchCondition decides whether a Rule applies to the words typed so far.
type MatchCondition struct {
	Type       MatchKind `toml:"type"`
	Subcommand string    `toml:"subcommand,omitempty"`
	Option     string    `toml:"option,omitempty"`
	Pattern    string    `toml:"pattern,omitempty"`
}

// Rule is one dynamic_completions/*.toml entry: a condition under which an
// external shell command is invoked to produce candidates.
type Rule struct {
	Command        string         `toml:"command"`
	Subcommands    []string       `toml:"subcommands,omitempty"`
	Description    string         `toml:"description,omitempty"`
	MatchCondition MatchCondition `toml:"match_condition"`
	ShellCommand   string         `toml:"shell_command"`
	FilterOutput   string         `toml:"filter_output,omitempty"`
	Priority       int            `toml:"priority,omitempty"`
}

type ruleFile struct {
	Rules []Rule `toml:"rules"`
}

// RuleSet holds every loaded dynamic-completion Rule, sorted by Priority
// descending so Matching returns the highest-priority applicable rule
// first.
type RuleSet struct {
	rules []Rule
}

// LoadRuleSet reads every *.toml file under dir (typically
// ~/.config/dsh/dynamic_completions). A missing directory yields an empty,
// non-error RuleSet.
func LoadRuleSet(dir string) *RuleSet {
	rs := &RuleSet{}
	if dir == "" {
		return rs
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return rs
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			dshlog.Warnf("completion: read %s: %v", path, err)
			continue
		}
		var rf ruleFile
		if err := toml.Unmarshal(raw, &rf); err != nil {
			dshlog.Warnf("completion: parse %s: %v", path, err)
			continue
		}
		rs.rules = append(rs.rules, rf.Rules...)
	}
	sortRulesByPriority(rs.rules)
	return rs
}

func sortRulesByPriority(rules []Rule) {
	for i := 1; i < len(rules); i++ {
		for j := i; j > 0 && rules[j].Priority > rules[j-1].Priority; j-- {
			rules[j], rules[j-1] = rules[j-1], rules[j]
		}
	}
}

// Matching returns the highest-priority Rule whose command matches argv0
// and whose MatchCondition is satisfied by argWords (the words after
// argv0, in order, not including the in-progress current word).
func (rs *RuleSet) Matching(argv0 string, argWords []string) (Rule, bool) {
	for _, r := range rs.rules {
		if r.Command != argv0 {
			continue
		}
		if matchConditionSatisfied(r.MatchCondition, argWords) {
			return r, true
		}
	}
	return Rule{}, false
}

func matchConditionSatisfied(mc MatchCondition, argWords []string) bool {
	switch mc.Type {
	case MatchStartsWithCommand:
		return true
	case MatchHasSubcommand:
		return containsWord(argWords, mc.Subcommand)
	case MatchHasSubcommandAndOption:
		return containsWord(argWords, mc.Subcommand) && containsWord(argWords, mc.Option)
	case MatchSecondArgument:
		return len(argWords) == 1
	case MatchThirdArgument:
		return len(argWords) == 2
	case MatchCustomPattern:
		if mc.Pattern == "" {
			return false
		}
		re, err := regexp.Compile(mc.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(strings.Join(argWords, " "))
	default:
		return false
	}
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}

// DefaultShellOutTimeout bounds a dynamic rule's external invocation, per
// spec.md §5's "recommend 300 ms" guidance.
const DefaultShellOutTimeout = 300 * time.Millisecond

// Run invokes r.ShellCommand through the user's shell and returns its
// stdout, line-split and optionally filtered through r.FilterOutput,
// as Candidates. The shell is killed once timeout expires; on expiry, as
// on any other failure, the error is logged and nil is returned (any
// partial output is dropped), matching §5's "results are dropped and the
// prefix is marked non-pending".
func (r Rule) Run(ctx context.Context, timeout time.Duration) []Candidate {
	if timeout <= 0 {
		timeout = DefaultShellOutTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(cctx, shell, "-c", r.ShellCommand)
	out, err := cmd.Output()
	if err != nil {
		dshlog.Warnf("completion: dynamic rule %q: %v", r.Command, err)
		return nil
	}

	var filter *regexp.Regexp
	if r.FilterOutput != "" {
		filter, _ = regexp.Compile(r.FilterOutput)
	}

	var candidates []Candidate
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if filter != nil && !filter.MatchString(line) {
			continue
		}
		candidates = append(candidates, Candidate{Value: line, Description: r.Description, From: SourceDynamic})
	}
	return candidates
}
