// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package editor implements dsh's raw-mode interactive line editor
// (spec.md §4.F): a bubbletea model generalizing the teacher's single-
// purpose siModel into a full command-line editor with cursor movement,
// per-keystroke syntax highlighting, ghost suggestions, multi-line
// continuation, bracket-paste handling, and Tab/Ctrl+R completion
// dispatch to the inline grid and fuzzy-finder UIs.
package editor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/dsh/internal/completion"
	"github.com/staranto/dsh/internal/completion/ui"
	"github.com/staranto/dsh/internal/history"
	"github.com/staranto/dsh/internal/parser"
)

// ErrExit is returned by ReadLine when the user asked to leave the shell
// (Ctrl+D on an empty line, or a double Ctrl+C within DoubleInterruptWindow).
var ErrExit = errors.New("editor: exit requested")

// DoubleInterruptWindow is how long two Ctrl+C presses have to land in to
// count as the "exit the shell" gesture rather than two separate
// "abort this line" gestures.
const DoubleInterruptWindow = 750 * time.Millisecond

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#623CE4")).Bold(true)

// Editor reads one logical command line (which may span several
// continuation lines) from the terminal in raw mode.
type Editor struct {
	Prompt             string
	ContinuationPrompt string
	History            *history.Store
	Completion         *completion.Engine
	Grid               ui.Selector
	Fuzzy              ui.Selector
	CwdFunc            func() string
	ContextFunc        func() string
}

// New builds an Editor with sane default prompts. History and Completion
// may be nil, in which case the corresponding features (ghost suggestion,
// history scroll and Ctrl+R search; Tab completion) are silently inert. A
// nil Grid or Fuzzy falls back to a default ui.NewGrid/ui.NewFuzzy picker.
func New() *Editor {
	return &Editor{
		Prompt:             "dsh> ",
		ContinuationPrompt: "...> ",
	}
}

// ReadLine runs the interactive editor until the user commits a complete
// logical line (possibly spanning several continuation lines, joined by
// "\n"; an empty commit is the empty string with a nil error) or asks to
// exit the shell (ErrExit). A single Ctrl+C or Esc clears the line and
// keeps editing rather than returning.
func (e *Editor) ReadLine(ctx context.Context) (string, error) {
	m := &model{
		editor: e,
		ctx:    ctx,
		cur:    cursor.New(),
	}
	m.cur.SetMode(cursor.CursorBlink)
	m.cur.Focus()

	p := tea.NewProgram(m)
	m.program = p

	final, err := p.Run()
	if err != nil {
		return "", err
	}
	fm := final.(*model)
	if fm.exit {
		return "", ErrExit
	}
	return fm.committed, nil
}

// model is the bubbletea state backing one ReadLine call. A pointer
// receiver (atypical for bubbletea, which usually favors value models) is
// used deliberately: Tab/Ctrl+R need to call ReleaseTerminal/
// RestoreTerminal on the owning *tea.Program to hand the terminal to a
// nested picker program, which requires the model to hold a stable
// reference to it.
type model struct {
	editor  *Editor
	ctx     context.Context
	program *tea.Program
	cur     cursor.Model

	buf    string // current line, byte-indexed to match parser.Word spans
	cursor int    // byte offset into buf

	priorLines []string // committed continuation lines, joined on commit

	ghost string

	historySearch     bool
	historySearchBase string
	historyScrollIdx  int

	lastCtrlC time.Time

	committed string
	exit      bool
}

func (m *model) Init() tea.Cmd {
	return cursor.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case cursor.BlinkMsg:
		var cmd tea.Cmd
		m.cur, cmd = m.cur.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	for i, line := range m.priorLines {
		if i == 0 {
			b.WriteString(promptStyle.Render(m.editor.prompt()))
		} else {
			b.WriteString(promptStyle.Render(m.editor.continuationPrompt()))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	prompt := m.editor.prompt()
	if len(m.priorLines) > 0 {
		prompt = m.editor.continuationPrompt()
	}
	b.WriteString(promptStyle.Render(prompt))
	b.WriteString(m.renderLine())
	return b.String()
}

func (e *Editor) prompt() string {
	if e.Prompt != "" {
		return e.Prompt
	}
	return "dsh> "
}

func (e *Editor) continuationPrompt() string {
	if e.ContinuationPrompt != "" {
		return e.ContinuationPrompt
	}
	return "...> "
}

// fullLine returns every committed continuation line plus the in-progress
// buffer, joined by newlines — the text that will be handed to
// parser.IsIncompleteInput/Orchestrator.Eval once committed.
func (m *model) fullLine() string {
	if len(m.priorLines) == 0 {
		return m.buf
	}
	return strings.Join(m.priorLines, "\n") + "\n" + m.buf
}

func (m *model) cwd() string {
	if m.editor.CwdFunc != nil {
		return m.editor.CwdFunc()
	}
	return "."
}

func (m *model) contextTag() string {
	if m.editor.ContextFunc != nil {
		return m.editor.ContextFunc()
	}
	return ""
}

// words returns parser.GetWords over the full multi-line buffer's last
// physical line (the only one editable), cursor-relative — the shared
// tokenization primitive both highlighting and completion consult.
func (m *model) words() []parser.Word {
	return parser.GetWords(m.buf, m.cursor)
}

func (m *model) invalidate() {
	m.ghost = m.computeGhost()
}
