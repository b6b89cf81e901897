// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package completion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	dshlog "github.com/staranto/dsh/internal/log"
)

// Kind is an Arg's declared value type, mirroring the JSON completion
// schema's Kind enum (spec.md §6). KindScript is accepted by the JSON
// decoder but rejected by the loader: a tree that declares a Script
// argument is refused outright rather than partially loaded, since an
// arg type whose completion is "run arbitrary code" has no safe fallback.
type Kind string

const (
	KindFile            Kind = "File"
	KindDirectory       Kind = "Directory"
	KindString          Kind = "String"
	KindNumber          Kind = "Number"
	KindChoice          Kind = "Choice"
	KindCommand         Kind = "Command"
	KindEnvironment     Kind = "Environment"
	KindUrl             Kind = "Url"
	KindProcess         Kind = "Process"
	KindRegex           Kind = "Regex"
	KindCommandWithArgs Kind = "CommandWithArgs"
	KindScript          Kind = "Script"
)

// Opt is one option (short and/or long flag) a command or subcommand
// accepts.
type Opt struct {
	Short       string `json:"short,omitempty"`
	Long        string `json:"long,omitempty"`
	Description string `json:"description,omitempty"`
	TakesValue  bool   `json:"takes_value,omitempty"`
}

// ArgType is an Arg's type tag plus any type-specific data (e.g. the
// choice list for KindChoice).
type ArgType struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Choices decodes Data as a list of literal strings, valid when Type ==
// KindChoice.
func (t ArgType) Choices() []string {
	if t.Type != KindChoice || len(t.Data) == 0 {
		return nil
	}
	var out []string
	_ = json.Unmarshal(t.Data, &out)
	return out
}

// Arg is one positional argument slot.
type Arg struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Type        ArgType `json:"type"`
}

// SubCmd is one node of a command's subcommand tree.
type SubCmd struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Options     []Opt    `json:"options,omitempty"`
	Arguments   []Arg    `json:"arguments,omitempty"`
	Subcommands []SubCmd `json:"subcommands,omitempty"`
}

// Tree is a command's full completion definition, as loaded from
// ~/.config/dsh/completions/<command>.json or an embedded default.
type Tree struct {
	Command       string   `json:"command"`
	Description   string   `json:"description,omitempty"`
	GlobalOptions []Opt    `json:"global_options,omitempty"`
	Subcommands   []SubCmd `json:"subcommands,omitempty"`
	Arguments     []Arg    `json:"arguments,omitempty"`
}

// containsScript reports whether t (or any nested subcommand) declares a
// KindScript argument anywhere in its tree.
func (t Tree) containsScript() bool {
	if argsContainScript(t.Arguments) {
		return true
	}
	return subcommandsContainScript(t.Subcommands)
}

func argsContainScript(args []Arg) bool {
	for _, a := range args {
		if a.Type.Type == KindScript {
			return true
		}
	}
	return false
}

func subcommandsContainScript(subs []SubCmd) bool {
	for _, s := range subs {
		if argsContainScript(s.Arguments) {
			return true
		}
		if subcommandsContainScript(s.Subcommands) {
			return true
		}
	}
	return false
}

// TreeRegistry holds the per-command completion Trees loaded from the
// embedded defaults and the user's override directory, keyed by command
// name. User overrides win over embedded defaults of the same name.
type TreeRegistry struct {
	trees map[string]Tree
}

// NewTreeRegistry loads every embedded default tree plus every
// *.json file under userDir (typically
// ~/.config/dsh/completions), skipping (and logging a warning for) any
// file that fails gjson's quick sniff, fails to unmarshal, or declares a
// KindScript argument anywhere in its tree.
func NewTreeRegistry(userDir string) *TreeRegistry {
	r := &TreeRegistry{trees: make(map[string]Tree)}
	for _, raw := range embeddedDefaultTrees() {
		if t, ok := parseTree(raw, "<embedded>"); ok {
			r.trees[t.Command] = t
		}
	}
	r.loadDir(userDir)
	return r
}

func (r *TreeRegistry) loadDir(dir string) {
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			dshlog.Warnf("completion: read %s: %v", path, err)
			continue
		}
		if t, ok := parseTree(raw, path); ok {
			r.trees[t.Command] = t
		}
	}
}

// parseTree sniffs raw with gjson before committing to a full unmarshal
// (cheap rejection of a malformed or unrelated JSON file in the
// completions directory), then rejects any tree declaring KindScript.
func parseTree(raw []byte, source string) (Tree, bool) {
	if !gjson.GetBytes(raw, "command").Exists() {
		dshlog.Warnf("completion: %s: missing \"command\" key, skipping", source)
		return Tree{}, false
	}
	var t Tree
	if err := json.Unmarshal(raw, &t); err != nil {
		dshlog.Warnf("completion: %s: %v", source, err)
		return Tree{}, false
	}
	if t.containsScript() {
		dshlog.Warnf("completion: %s: rejecting Script-typed argument", source)
		return Tree{}, false
	}
	return t, true
}

// Lookup returns the Tree registered for command, if any.
func (r *TreeRegistry) Lookup(command string) (Tree, bool) {
	t, ok := r.trees[command]
	return t, ok
}

// position is the option/argument/subcommand set in scope at one depth of
// a Tree. Tree.resolve computes it by following argWords (the already-typed
// words after argv0, excluding the in-progress current word) one
// subcommand level at a time.
type position struct {
	options    []Opt
	arguments  []Arg
	subcommands []SubCmd
	argIndex   int // how many positional args have already been consumed
}

func (t Tree) resolve(argWords []string) position {
	pos := position{options: t.GlobalOptions, arguments: t.Arguments, subcommands: t.Subcommands}
	argIndex := 0
	for _, w := range argWords {
		if strings.HasPrefix(w, "-") {
			continue
		}
		matched := false
		for _, sc := range pos.subcommands {
			if sc.Name == w {
				pos = position{
					options:     append(append([]Opt{}, t.GlobalOptions...), sc.Options...),
					arguments:   sc.Arguments,
					subcommands: sc.Subcommands,
				}
				argIndex = 0
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		// Not a subcommand name: consumes one positional argument slot.
		argIndex++
	}
	pos.argIndex = argIndex
	return pos
}

// candidates produces completion Candidates for pos given the current
// (possibly empty) word being typed, env is used to resolve KindEnvironment
// candidates, and pathExec/fsCandidates let Kind-specific slots defer
// to the PATH-executable and filesystem sources without this package
// depending on either's implementation package boundary.
func (p position) candidates(current string, env map[string]string, pathExec func() []string, fsCandidates func(partial, cwd string) []Candidate, cwd string) []Candidate {
	var out []Candidate

	if strings.HasPrefix(current, "-") {
		for _, o := range p.options {
			out = append(out, optCandidates(o)...)
		}
		return out
	}

	if len(p.subcommands) > 0 {
		for _, sc := range p.subcommands {
			out = append(out, Candidate{Value: sc.Name, Description: sc.Description, From: SourceJSONTree})
		}
	}

	if p.argIndex < len(p.arguments) {
		arg := p.arguments[p.argIndex]
		out = append(out, argCandidates(arg, env, pathExec, fsCandidates, cwd, current)...)
	}

	return out
}

func optCandidates(o Opt) []Candidate {
	var out []Candidate
	if o.Long != "" {
		out = append(out, Candidate{Value: o.Long, Description: o.Description, From: SourceJSONTree})
	}
	if o.Short != "" {
		out = append(out, Candidate{Value: o.Short, Description: o.Description, From: SourceJSONTree})
	}
	return out
}

func argCandidates(arg Arg, env map[string]string, pathExec func() []string, fsCandidates func(partial, cwd string) []Candidate, cwd, current string) []Candidate {
	switch arg.Type.Type {
	case KindChoice:
		var out []Candidate
		for _, c := range arg.Type.Choices() {
			out = append(out, Candidate{Value: c, Description: arg.Description, From: SourceJSONTree})
		}
		return out
	case KindFile, KindDirectory:
		if fsCandidates == nil {
			return nil
		}
		return fsCandidates(current, cwd)
	case KindCommand, KindCommandWithArgs, KindProcess:
		if pathExec == nil {
			return nil
		}
		var out []Candidate
		for _, name := range pathExec() {
			out = append(out, Candidate{Value: name, Description: arg.Description, From: SourceJSONTree})
		}
		return out
	case KindEnvironment:
		var out []Candidate
		for name := range env {
			out = append(out, Candidate{Value: name, Description: "environment variable", From: SourceJSONTree})
		}
		return out
	case KindUrl, KindRegex, KindString, KindNumber:
		// No enumerable candidate set for freeform types; the user types
		// a literal value.
		return nil
	default:
		return nil
	}
}
