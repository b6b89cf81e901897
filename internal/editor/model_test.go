// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/dsh/internal/history"
)

func newTestModel(t *testing.T, h *history.Store) *model {
	t.Helper()
	e := New()
	e.History = h
	m := &model{editor: e, ctx: context.Background(), cur: cursor.New()}
	return m
}

func openTestHistory(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(filepath.Join(t.TempDir(), "history.db"), 12)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestInsertAndBackspace(t *testing.T) {
	m := newTestModel(t, nil)

	for _, r := range "ls" {
		m.handleKey(runeKey(r))
	}
	assert.Equal(t, "ls", m.buf)
	assert.Equal(t, 2, m.cursor)

	m.handleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "l", m.buf)
	assert.Equal(t, 1, m.cursor)
}

func TestCursorMovementRespectsBounds(t *testing.T) {
	m := newTestModel(t, nil)
	m.buf = "ab"
	m.cursor = 0

	m.handleKey(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.cursor, "moving left at start of buffer is a no-op")

	m.handleKey(tea.KeyMsg{Type: tea.KeyRight})
	m.handleKey(tea.KeyMsg{Type: tea.KeyRight})
	m.handleKey(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.cursor, "moving right at end of buffer is a no-op")
}

func TestWordBoundaryNavigation(t *testing.T) {
	buf := "git commit -m msg"
	assert.Equal(t, 4, nextWordBoundary(buf, 0))
	assert.Equal(t, 11, nextWordBoundary(buf, 4))
	assert.Equal(t, 4, prevWordBoundary(buf, 11))
	assert.Equal(t, 0, prevWordBoundary(buf, 4))
}

func TestPasteInsertsVerbatimWithoutConsumingHistorySearch(t *testing.T) {
	m := newTestModel(t, nil)
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("echo one\ntwo"), Paste: true})
	assert.Equal(t, "echo one\ntwo", m.buf)
	assert.Equal(t, len("echo one\ntwo"), m.cursor)
}

func TestEnterOnIncompleteInputAppendsContinuationLine(t *testing.T) {
	m := newTestModel(t, nil)
	m.buf = `echo "unterminated`
	m.cursor = len(m.buf)

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "an incomplete line must not quit the program")
	require.Len(t, m.priorLines, 1)
	assert.Equal(t, `echo "unterminated`, m.priorLines[0])
	assert.Equal(t, "", m.buf)
}

func TestEnterOnCompleteInputCommitsAndQuits(t *testing.T) {
	m := newTestModel(t, nil)
	m.buf = "echo hi"
	m.cursor = len(m.buf)

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "echo hi", m.committed)
}

func TestDoubleCtrlCExitsWithinWindowSinglePressClearsLine(t *testing.T) {
	m := newTestModel(t, nil)
	m.buf = "some in-progress text"
	m.cursor = len(m.buf)

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.Equal(t, "", m.buf, "first Ctrl+C clears the line rather than exiting")
	assert.False(t, m.exit)

	_, cmd = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.exit, "a second Ctrl+C within the window exits the shell")
}

func TestCtrlCOutsideWindowDoesNotExit(t *testing.T) {
	m := newTestModel(t, nil)
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	m.lastCtrlC = time.Now().Add(-2 * DoubleInterruptWindow)

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.False(t, m.exit)
}

func TestCtrlDExitsOnlyWhenBufferAndPriorLinesEmpty(t *testing.T) {
	m := newTestModel(t, nil)
	m.buf = "x"
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Nil(t, cmd)
	assert.False(t, m.exit)

	m.buf = ""
	_, cmd = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	require.NotNil(t, cmd)
	assert.True(t, m.exit)
}

func TestGhostSuggestionFromHistoryPrefix(t *testing.T) {
	h := openTestHistory(t)
	h.Record(history.Entry{Command: "git status"})

	m := newTestModel(t, h)
	m.buf = "git st"
	m.cursor = len(m.buf)
	m.invalidate()

	assert.Equal(t, "atus", m.ghost)
}

func TestGhostSuggestionOnlyAtEndOfLine(t *testing.T) {
	h := openTestHistory(t)
	h.Record(history.Entry{Command: "git status"})

	m := newTestModel(t, h)
	m.buf = "git st"
	m.cursor = 3 // not at end-of-line
	m.invalidate()

	assert.Equal(t, "", m.ghost)
}

func TestAcceptGhostWithRightArrow(t *testing.T) {
	h := openTestHistory(t)
	h.Record(history.Entry{Command: "git status"})

	m := newTestModel(t, h)
	m.buf = "git st"
	m.cursor = len(m.buf)
	m.invalidate()
	require.Equal(t, "atus", m.ghost)

	m.handleKey(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "git status", m.buf)
	assert.Equal(t, len("git status"), m.cursor)
}

func TestScrollHistoryBoundToPrefix(t *testing.T) {
	h := openTestHistory(t)
	h.Record(history.Entry{Command: "ls -la"})
	h.Record(history.Entry{Command: "git status"})
	h.Record(history.Entry{Command: "git log"})

	m := newTestModel(t, h)
	m.buf = "git"
	m.cursor = len(m.buf)

	m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "git log", m.buf)

	m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "git status", m.buf)

	m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "git status", m.buf, "ls -la doesn't match the search base prefix so the buffer holds")
}
