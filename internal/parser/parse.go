// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

// Parse tokenizes and parses a raw command line into a Commands AST.
// The parser never attempts error recovery: on failure it
// returns a ParseError carrying the byte position of the problem so the
// editor can render an error highlight and leave the line editable.
func Parse(line string) (*Commands, error) {
	items, st := scanLine(line)
	if st.incomplete() {
		return nil, &ParseError{Pos: len(line), Msg: "unterminated quote, bracket, or continuation"}
	}

	cmds := &Commands{}
	var cur *Pipeline
	var curSimple *SimpleCommand
	var pendingRedirect *RedirectKind

	finishSimple := func() {
		if curSimple != nil {
			cur.Commands = append(cur.Commands, curSimple)
			curSimple = nil
		}
	}
	finishCommand := func(sep Separator, background bool) error {
		finishSimple()
		if cur == nil || len(cur.Commands) == 0 {
			if sep == SepNone && !background {
				return nil
			}
			return &ParseError{Pos: 0, Msg: "operator with no preceding command"}
		}
		cmds.Items = append(cmds.Items, &Command{Pipeline: cur, Sep: sep, Background: background})
		cur = nil
		return nil
	}

	ensureCur := func() {
		if cur == nil {
			cur = &Pipeline{}
		}
		if curSimple == nil {
			curSimple = &SimpleCommand{}
		}
	}

	for _, it := range items {
		switch it.kind {
		case itemWord:
			ensureCur()
			if pendingRedirect != nil {
				curSimple.Redirects = append(curSimple.Redirects, &Redirect{Kind: *pendingRedirect, Target: it.span})
				pendingRedirect = nil
				continue
			}
			if curSimple.Argv0 == nil {
				curSimple.Argv0 = it.span
			} else {
				curSimple.Args = append(curSimple.Args, it.span)
			}

		case itemRedirect:
			ensureCur()
			if curSimple.Argv0 == nil {
				return nil, &ParseError{Pos: it.start, Msg: "redirect with no preceding command"}
			}
			k := it.redirectKind
			pendingRedirect = &k

		case itemPipe:
			if pendingRedirect != nil {
				return nil, &ParseError{Pos: it.start, Msg: "redirect missing target before pipe"}
			}
			finishSimple()

		case itemSemicolon:
			if pendingRedirect != nil {
				return nil, &ParseError{Pos: it.start, Msg: "redirect missing target"}
			}
			if err := finishCommand(SepSemicolon, false); err != nil {
				return nil, err
			}

		case itemAnd:
			if pendingRedirect != nil {
				return nil, &ParseError{Pos: it.start, Msg: "redirect missing target"}
			}
			if err := finishCommand(SepAnd, false); err != nil {
				return nil, err
			}

		case itemOr:
			if pendingRedirect != nil {
				return nil, &ParseError{Pos: it.start, Msg: "redirect missing target"}
			}
			if err := finishCommand(SepOr, false); err != nil {
				return nil, err
			}

		case itemBackground:
			if pendingRedirect != nil {
				return nil, &ParseError{Pos: it.start, Msg: "redirect missing target"}
			}
			if err := finishCommand(SepNone, true); err != nil {
				return nil, err
			}
		}
	}

	if pendingRedirect != nil {
		return nil, &ParseError{Pos: len(line), Msg: "redirect missing target"}
	}
	if curSimple != nil || (cur != nil && len(cur.Commands) > 0) {
		if err := finishCommand(SepNone, false); err != nil {
			return nil, err
		}
	}

	return cmds, nil
}

// IsIncompleteInput reports whether line is syntactically incomplete and
// should be continued on a new line rather than committed. It shares the
// scanner's nesting tracking with Parse rather than re-tokenizing with a
// separate regex pass.
func IsIncompleteInput(line string) bool {
	_, st := scanLine(line)
	return st.incomplete()
}
