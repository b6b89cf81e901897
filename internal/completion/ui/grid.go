// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/dsh/internal/completion"
)

var (
	gridSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#623CE4"))
	gridPlainStyle    = lipgloss.NewStyle()
	gridColumnWidth   = 24
)

// Grid is the inline completion picker: a fixed-width grid of candidates
// drawn directly under the prompt. Tab/Shift+Tab cycle, arrow keys move
// within the grid, Enter accepts, Esc cancels, and any other printable
// key cancels the picker and is carried back to the editor to insert.
type Grid struct {
	Columns int
}

// NewGrid returns a Grid laid out with the given column count. A
// non-positive columns falls back to 4.
func NewGrid(columns int) *Grid {
	if columns <= 0 {
		columns = 4
	}
	return &Grid{Columns: columns}
}

// Select implements Selector.
func (g *Grid) Select(candidates []completion.Candidate) Result {
	if len(candidates) == 0 {
		return Result{Cancelled: true}
	}
	if len(candidates) == 1 {
		return Result{Accepted: true, Value: candidates[0].Value}
	}

	m := gridModel{candidates: candidates, cols: g.Columns}
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return Result{Cancelled: true}
	}
	return final.(gridModel).result
}

type gridModel struct {
	candidates []completion.Candidate
	cols       int
	cursor     int
	result     Result
}

func (m gridModel) Init() tea.Cmd { return nil }

func (m gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyTab:
		m.cursor = (m.cursor + 1) % len(m.candidates)
		return m, nil
	case tea.KeyShiftTab:
		m.cursor = (m.cursor - 1 + len(m.candidates)) % len(m.candidates)
		return m, nil
	case tea.KeyRight:
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyLeft:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if next := m.cursor + m.cols; next < len(m.candidates) {
			m.cursor = next
		}
		return m, nil
	case tea.KeyUp:
		if next := m.cursor - m.cols; next >= 0 {
			m.cursor = next
		}
		return m, nil
	case tea.KeyEnter:
		m.result = Result{Accepted: true, Value: m.candidates[m.cursor].Value}
		return m, tea.Quit
	case tea.KeyEsc:
		m.result = Result{Cancelled: true}
		return m, tea.Quit
	case tea.KeyRunes:
		if len(key.Runes) == 1 {
			m.result = Result{Cancelled: true, Carried: key.Runes[0], HasCarried: true}
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyCtrlC:
		m.result = Result{Cancelled: true}
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m gridModel) View() string {
	var rows []string
	var row strings.Builder
	for i, c := range m.candidates {
		cell := fmt.Sprintf("%-*s", gridColumnWidth, truncate(c.Value, gridColumnWidth-1))
		if i == m.cursor {
			row.WriteString(gridSelectedStyle.Render(cell))
		} else {
			row.WriteString(gridPlainStyle.Render(cell))
		}
		if (i+1)%m.cols == 0 || i == len(m.candidates)-1 {
			rows = append(rows, row.String())
			row.Reset()
		}
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
