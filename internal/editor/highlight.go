// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/dsh/internal/parser"
)

var (
	styleCommandExists    = lipgloss.NewStyle().Foreground(lipgloss.Color("#39D353"))
	styleCommandNotExists = lipgloss.NewStyle().Foreground(lipgloss.Color("#F85149")).Bold(true)
	styleArgument         = lipgloss.NewStyle()
	styleRedirectTarget   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D2A8FF"))
	styleVariable         = lipgloss.NewStyle().Foreground(lipgloss.Color("#79C0FF"))
	styleQuoted           = lipgloss.NewStyle().Foreground(lipgloss.Color("#A5D6FF"))
	styleProcSubst        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA657"))
	styleOperator         = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF7B72")).Bold(true)
	styleErrorRun         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F85149")).Underline(true)
	styleGhost            = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E7681"))
	styleCursor           = lipgloss.NewStyle().Reverse(true)
)

// renderLine produces the current edit line's styled view: syntax
// highlighting per parser.GetWords (or, on a parse failure, a single
// highlighted error run at the failure position plus best-effort
// coloring of everything else), a reverse-video cursor cell, and the dim
// ghost-suggestion suffix when present.
func (m *model) renderLine() string {
	words := m.words()
	errPos := -1
	if _, err := parser.Parse(m.buf); err != nil {
		if pe, ok := err.(*parser.ParseError); ok {
			errPos = pe.Pos
		}
	}

	var b strings.Builder
	pos := 0
	for _, w := range words {
		if w.Start > pos {
			b.WriteString(m.cursorAwarePlain(m.buf[pos:w.Start], pos))
		}
		text := m.buf[w.Start:w.End]
		if errPos >= w.Start && errPos < w.End {
			b.WriteString(m.cursorAwareStyled(text, w.Start, styleErrorRun))
		} else {
			b.WriteString(m.cursorAwareStyled(text, w.Start, styleFor(w)))
		}
		pos = w.End
	}
	if pos < len(m.buf) {
		b.WriteString(m.cursorAwarePlain(m.buf[pos:], pos))
	}
	if m.cursor >= len(m.buf) {
		b.WriteString(styleCursor.Render(" "))
	}

	if m.ghost != "" {
		b.WriteString(styleGhost.Render(m.ghost))
	}
	return b.String()
}

func styleFor(w parser.Word) lipgloss.Style {
	switch w.Role {
	case parser.RoleArgv0:
		if commandExists(w.Text) {
			return styleCommandExists
		}
		return styleCommandNotExists
	case parser.RoleRedirectTarget:
		return styleRedirectTarget
	case parser.RoleVariable:
		return styleVariable
	case parser.RoleSingleQuoted, parser.RoleDoubleQuoted:
		return styleQuoted
	case parser.RoleProcSubst:
		return styleProcSubst
	case parser.RoleOperator:
		return styleOperator
	default:
		return styleArgument
	}
}

// cursorAwareStyled renders text (which starts at byte offset start in
// m.buf) with style, splicing in the reverse-video cursor cell if the
// cursor falls within this run.
func (m *model) cursorAwareStyled(text string, start int, style lipgloss.Style) string {
	if m.cursor < start || m.cursor >= start+len(text) {
		return style.Render(text)
	}
	rel := m.cursor - start
	before, at, after := splitAtCursor(text, rel)
	return style.Render(before) + styleCursor.Render(at) + style.Render(after)
}

func (m *model) cursorAwarePlain(text string, start int) string {
	return m.cursorAwareStyled(text, start, lipgloss.NewStyle())
}

func splitAtCursor(text string, rel int) (before, at, after string) {
	if rel < 0 || rel >= len(text) {
		return text, "", ""
	}
	// rel is a byte offset within text; widen to the full rune at that
	// position so a multi-byte character isn't split mid-sequence.
	r := []rune(text)
	bytePos := 0
	for _, c := range r {
		size := len(string(c))
		if bytePos == rel {
			return text[:bytePos], string(c), text[bytePos+size:]
		}
		bytePos += size
	}
	return text, "", ""
}

// commandExists reports whether name resolves to something runnable,
// used to color an argv0 word green (exists) or red (not found).
func commandExists(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
