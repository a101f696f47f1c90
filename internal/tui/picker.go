// Package tui implements the interactive conflict picker shown when multiple
// template files have local modifications.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// pickerModel is the bubbletea model for selecting files to overwrite.
type pickerModel struct {
	files    []string
	selected map[int]bool
	cursor   int
	keys     keyMap
	done     bool
	canceled bool
}

func newPickerModel(files []string) pickerModel {
	return pickerModel{
		files:    files,
		selected: make(map[int]bool),
		keys:     defaultKeyMap(),
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, m.keys.All):
		for i := range m.files {
			m.selected[i] = true
		}
	case key.Matches(keyMsg, m.keys.None):
		m.selected = make(map[int]bool)
	case key.Matches(keyMsg, m.keys.Confirm):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.canceled = true
		return m, tea.Quit
	}

	return m, nil
}

func (m pickerModel) View() string {
	if m.done || m.canceled {
		return ""
	}

	s := titleStyle.Render("These files were modified locally. Select which to overwrite:") + "\n"

	for i, file := range m.files {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("▸ ")
		}

		checkbox := unselectedStyle.Render("[ ] " + file)
		if m.selected[i] {
			checkbox = selectedStyle.Render("[x] " + file)
		}

		s += fmt.Sprintf("%s%s\n", cursor, checkbox)
	}

	s += helpStyle.Render("space toggle • a all • n none • enter confirm • q cancel")
	return s
}

// PickConflicts shows the interactive picker and returns the selected files.
// Canceling returns an empty selection.
func PickConflicts(files []string) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	program := tea.NewProgram(newPickerModel(files))
	result, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running conflict picker: %w", err)
	}

	final, ok := result.(pickerModel)
	if !ok || final.canceled {
		return nil, nil
	}

	var chosen []string
	for i, file := range final.files {
		if final.selected[i] {
			chosen = append(chosen, file)
		}
	}
	return chosen, nil
}
