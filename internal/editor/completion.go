// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/staranto/dsh/internal/completion"
	"github.com/staranto/dsh/internal/completion/ui"
)

// historyBrowseLimit bounds how many recent commands triggerHistorySearch
// hands to the fuzzy picker; bubbles/list's own filtering narrows from
// there, so this only needs to be generous, not exhaustive.
const historyBrowseLimit = 500

// triggerCompletion implements Tab (spec.md §4.E/§4.F): a single candidate
// substitutes immediately, otherwise the terminal is handed to the inline
// grid picker. Esc cancels with the buffer untouched; a carried rune is
// inserted in the grid's place.
func (m *model) triggerCompletion() (tea.Model, tea.Cmd) {
	if m.editor.Completion == nil {
		return m, nil
	}

	words := m.words()
	req := completion.Request{Line: m.buf, Cursor: m.cursor, Words: words, Cwd: m.cwd()}
	candidates := m.editor.Completion.Complete(m.ctx, req)
	if len(candidates) == 0 {
		return m, nil
	}
	if len(candidates) == 1 {
		m.replaceCurrentWord(candidates[0].Value)
		m.invalidate()
		return m, nil
	}

	selector := m.editor.Grid
	if selector == nil {
		selector = ui.NewGrid(4)
	}

	m.program.ReleaseTerminal() //nolint:errcheck
	result := selector.Select(candidates)
	m.program.RestoreTerminal() //nolint:errcheck

	switch {
	case result.Accepted:
		m.replaceCurrentWord(result.Value)
		m.invalidate()
	case result.HasCarried:
		m.insertRune(result.Carried)
		m.invalidate()
	}
	return m, nil
}

// triggerHistorySearch implements Ctrl+R: hand the terminal to the
// full-screen fuzzy picker over recent history, and set the buffer to
// whatever the user accepted.
func (m *model) triggerHistorySearch() (tea.Model, tea.Cmd) {
	if m.editor.History == nil {
		return m, nil
	}

	recent := m.editor.History.Recent(historyBrowseLimit)
	if len(recent) == 0 {
		return m, nil
	}
	candidates := make([]completion.Candidate, len(recent))
	for i, cmd := range recent {
		candidates[i] = completion.Candidate{Value: cmd, From: completion.SourceHistory}
	}

	selector := m.editor.Fuzzy
	if selector == nil {
		selector = ui.NewFuzzy(0, 0)
	}

	m.program.ReleaseTerminal() //nolint:errcheck
	result := selector.Select(candidates)
	m.program.RestoreTerminal() //nolint:errcheck

	switch {
	case result.Accepted:
		m.setBuffer(result.Value)
	case result.HasCarried:
		m.insertRune(result.Carried)
		m.invalidate()
	}
	return m, nil
}

// replaceCurrentWord substitutes the word under the cursor (the token the
// completion engine computed candidates for) with value, leaving the
// cursor positioned just after the inserted text.
func (m *model) replaceCurrentWord(value string) {
	words := m.words()
	for _, w := range words {
		if w.IsCurrent {
			m.buf = m.buf[:w.Start] + value + m.buf[w.End:]
			m.cursor = w.Start + len(value)
			return
		}
	}
	m.insertString(value)
}
