// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/staranto/dsh/internal/parser"
)

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Paste {
		m.insertString(string(key.Runes))
		m.invalidate()
		return m, nil
	}

	switch key.Type {
	case tea.KeyRunes:
		if len(key.Runes) == 1 {
			m.insertRune(key.Runes[0])
			m.invalidate()
			return m, nil
		}
		m.insertString(string(key.Runes))
		m.invalidate()
		return m, nil

	case tea.KeyBackspace:
		m.deleteBeforeCursor()
		m.invalidate()
		return m, nil

	case tea.KeyDelete:
		m.deleteAfterCursor()
		m.invalidate()
		return m, nil

	case tea.KeyLeft:
		m.moveCursorLeft()
		return m, nil

	case tea.KeyRight:
		if m.cursor == len(m.buf) && m.ghost != "" {
			m.acceptGhostWhole()
			m.invalidate()
			return m, nil
		}
		m.moveCursorRight()
		return m, nil

	case tea.KeyCtrlLeft:
		m.cursor = prevWordBoundary(m.buf, m.cursor)
		return m, nil

	case tea.KeyCtrlRight:
		m.cursor = nextWordBoundary(m.buf, m.cursor)
		return m, nil

	case tea.KeyCtrlF:
		if m.cursor == len(m.buf) && m.ghost != "" {
			m.acceptGhostWhole()
			m.invalidate()
		}
		return m, nil

	case tea.KeyUp:
		m.scrollHistory(-1)
		return m, nil

	case tea.KeyDown:
		m.scrollHistory(1)
		return m, nil

	case tea.KeyTab:
		return m.triggerCompletion()

	case tea.KeyCtrlR:
		return m.triggerHistorySearch()

	case tea.KeyEnter:
		return m.handleEnter()

	case tea.KeyCtrlC:
		return m.handleCtrlC()

	case tea.KeyCtrlD:
		if m.buf == "" && len(m.priorLines) == 0 {
			m.exit = true
			return m, tea.Quit
		}
		m.deleteAfterCursor()
		m.invalidate()
		return m, nil

	case tea.KeyEsc:
		m.buf = ""
		m.cursor = 0
		m.priorLines = nil
		m.historySearch = false
		m.invalidate()
		return m, nil
	}

	return m, nil
}

func (m *model) insertRune(r rune) {
	m.insertString(string(r))
}

func (m *model) insertString(s string) {
	m.buf = m.buf[:m.cursor] + s + m.buf[m.cursor:]
	m.cursor += len(s)
	m.historySearch = false
}

func (m *model) deleteBeforeCursor() {
	if m.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(m.buf[:m.cursor])
	m.buf = m.buf[:m.cursor-size] + m.buf[m.cursor:]
	m.cursor -= size
}

func (m *model) deleteAfterCursor() {
	if m.cursor >= len(m.buf) {
		return
	}
	_, size := utf8.DecodeRuneInString(m.buf[m.cursor:])
	m.buf = m.buf[:m.cursor] + m.buf[m.cursor+size:]
}

func (m *model) moveCursorLeft() {
	if m.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(m.buf[:m.cursor])
	m.cursor -= size
}

func (m *model) moveCursorRight() {
	if m.cursor >= len(m.buf) {
		return
	}
	_, size := utf8.DecodeRuneInString(m.buf[m.cursor:])
	m.cursor += size
}

func prevWordBoundary(s string, pos int) int {
	for pos > 0 && s[pos-1] == ' ' {
		pos--
	}
	for pos > 0 && s[pos-1] != ' ' {
		pos--
	}
	return pos
}

func nextWordBoundary(s string, pos int) int {
	for pos < len(s) && s[pos] != ' ' {
		pos++
	}
	for pos < len(s) && s[pos] == ' ' {
		pos++
	}
	return pos
}

// scrollHistory moves through the per-session recency list, bound to the
// line's current prefix (spec.md §4.F: "Up/Down → history scroll bound to
// the line's current prefix"). The first Up press in a fresh edit
// captures the in-progress buffer as the search base; subsequent presses
// keep searching from there until the buffer is edited again.
func (m *model) scrollHistory(direction int) {
	if m.editor.History == nil {
		return
	}
	if !m.historySearch {
		m.historySearch = true
		m.historySearchBase = m.buf
		m.historyScrollIdx = 0
	}

	if direction < 0 {
		if line, ok := m.editor.History.Back(); ok && strings.HasPrefix(line, m.historySearchBase) {
			m.setBuffer(line)
			return
		}
	} else {
		if line, ok := m.editor.History.Forward(); ok {
			m.setBuffer(line)
			return
		}
		m.setBuffer(m.historySearchBase)
	}
}

func (m *model) setBuffer(s string) {
	m.buf = s
	m.cursor = len(s)
	m.invalidate()
}

func (m *model) handleEnter() (tea.Model, tea.Cmd) {
	full := m.fullLine()
	if parser.IsIncompleteInput(full) {
		m.priorLines = append(m.priorLines, m.buf)
		m.buf = ""
		m.cursor = 0
		m.invalidate()
		return m, nil
	}

	m.committed = full
	return m, tea.Quit
}

func (m *model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()
	if !m.lastCtrlC.IsZero() && now.Sub(m.lastCtrlC) <= DoubleInterruptWindow {
		m.exit = true
		return m, tea.Quit
	}
	m.lastCtrlC = now
	m.buf = ""
	m.cursor = 0
	m.priorLines = nil
	m.historySearch = false
	m.invalidate()
	return m, nil
}

// acceptGhostWhole commits the rendered ghost suggestion's suffix into the
// buffer, used by Right-arrow/Ctrl+F at end-of-line.
func (m *model) acceptGhostWhole() {
	if m.ghost == "" {
		return
	}
	m.buf += m.ghost
	m.cursor = len(m.buf)
	m.ghost = ""
}
