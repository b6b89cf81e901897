// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/dsh/internal/completion"
)

// Fuzzy is the full-screen fuzzy-match completion/history picker (Ctrl+R
// in the editor, spec.md §4.E/§4.F). It wraps bubbles/list, which already
// implements incremental fuzzy filtering as the user types; Fuzzy adds
// the accept/cancel/select-1 key contract Selector requires.
type Fuzzy struct {
	Width, Height int
}

// NewFuzzy returns a Fuzzy sized for a full-screen picker. Zero width or
// height falls back to a reasonable default; the real terminal size is
// applied on the first tea.WindowSizeMsg.
func NewFuzzy(width, height int) *Fuzzy {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 20
	}
	return &Fuzzy{Width: width, Height: height}
}

type fuzzyItem struct {
	candidate completion.Candidate
}

func (i fuzzyItem) Title() string       { return i.candidate.Value }
func (i fuzzyItem) Description() string { return i.candidate.Description }
func (i fuzzyItem) FilterValue() string { return i.candidate.Value }

// Select implements Selector.
func (f *Fuzzy) Select(candidates []completion.Candidate) Result {
	if len(candidates) == 0 {
		return Result{Cancelled: true}
	}

	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = fuzzyItem{candidate: c}
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, f.Width, f.Height)
	l.Title = "completions"
	l.SetShowStatusBar(false)

	m := fuzzyModel{list: l}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{Cancelled: true}
	}
	return final.(fuzzyModel).result
}

type fuzzyModel struct {
	list   list.Model
	result Result
}

func (m fuzzyModel) Init() tea.Cmd { return nil }

func (m fuzzyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// While the filter text input is focused, let the list own every
		// keystroke (it needs letters to extend the filter) except the
		// terminal ones below.
		filtering := m.list.FilterState() == list.Filtering

		switch msg.Type {
		case tea.KeyEsc:
			if filtering {
				break
			}
			m.result = Result{Cancelled: true}
			return m, tea.Quit
		case tea.KeyCtrlC:
			m.result = Result{Cancelled: true}
			return m, tea.Quit
		case tea.KeyEnter:
			if filtering {
				break
			}
			if it, ok := m.list.SelectedItem().(fuzzyItem); ok {
				m.result = Result{Accepted: true, Value: it.candidate.Value}
			} else {
				m.result = Result{Cancelled: true}
			}
			return m, tea.Quit
		case tea.KeyTab:
			// Select-1 shortcut: a single filtered match accepts
			// immediately without requiring Enter.
			if !filtering && len(m.list.VisibleItems()) == 1 {
				it := m.list.VisibleItems()[0].(fuzzyItem)
				m.result = Result{Accepted: true, Value: it.candidate.Value}
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m fuzzyModel) View() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(m.list.View())
}
