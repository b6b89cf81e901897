// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import "context"

// Expander runs the full expansion pipeline over a raw command line before
// it is handed to parser.Parse for execution: alias, brace, tilde,
// variable, arithmetic, then command substitution. Process substitution
// (<(...) / >(...)) is intentionally never touched here: it is passed
// through untouched to the process runtime, which realizes it as a FIFO
// or /dev/fd path.
type Expander struct {
	Aliases       AliasLookup
	Vars          VarLookup
	Exec          Executor
	Home          string
	MaxAliasDepth int
}

// New builds an Expander with the given collaborators. Any of aliases,
// vars, or exec may be nil, and then behaves as if nothing were defined:
// nil aliases means no alias expands, nil vars means every variable
// expands to "", and nil exec replaces each command substitution with ""
// and reports a Warning for it.
func New(aliases AliasLookup, vars VarLookup, exec Executor, home string) *Expander {
	return &Expander{
		Aliases:       aliases,
		Vars:          vars,
		Exec:          exec,
		Home:          home,
		MaxAliasDepth: DefaultMaxAliasDepth,
	}
}

// Expand runs line through the full pipeline, returning the expanded line
// ready for parser.Parse, along with any non-fatal Warnings collected along
// the way (failed command substitutions, bad arithmetic expressions).
func (e *Expander) Expand(ctx context.Context, line string) (string, []Warning) {
	var warnings []Warning

	line = ExpandAliases(line, e.lookupAlias, e.aliasDepth())
	line = ExpandBraces(line)
	line = ExpandTilde(line, e.Home)
	line = ExpandVariables(line, e.lookupVar)

	var w []Warning
	line, w = ExpandArithmetic(line)
	warnings = append(warnings, w...)

	line, w = ExpandCommandSubstitution(ctx, line, e.Exec)
	warnings = append(warnings, w...)

	return line, warnings
}

func (e *Expander) lookupAlias(name string) (string, bool) {
	if e.Aliases == nil {
		return "", false
	}
	return e.Aliases(name)
}

func (e *Expander) lookupVar(name string) (string, bool) {
	if e.Vars == nil {
		return "", false
	}
	return e.Vars(name)
}

func (e *Expander) aliasDepth() int {
	if e.MaxAliasDepth <= 0 {
		return DefaultMaxAliasDepth
	}
	return e.MaxAliasDepth
}
