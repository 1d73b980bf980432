package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "tab":
		return m.moveFocus(1)
	case "shift+tab":
		return m.moveFocus(-1)
	case "ctrl+r":
		return m.fetchTasks()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	case "enter":
		return m.submitFocused()
	}

	switch m.focus {
	case fieldFilterStatus:
		switch msg.String() {
		case "left", "right", " ":
			m.cycleFilterStatus()
		}
		return m, nil
	case fieldTasks:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case "t", " ":
			return m.ToggleTask()
		case "d", "x":
			return m.DeleteTask()
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) submitFocused() (tea.Model, tea.Cmd) {
	switch m.focus {
	case fieldUser:
		return m.Connect()
	case fieldChat:
		return m.SendChat()
	case fieldTitle, fieldDescription, fieldCategory:
		return m.SubmitTask()
	case fieldFilterStatus, fieldFilterCategory:
		return m.fetchTasks()
	case fieldTasks:
		return m.ToggleTask()
	}
	return m, nil
}

// updateFocused forwards typing and cursor blinks to the focused text input.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	input := m.input(m.focus)
	if input == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return m, cmd
}

func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	if input := m.input(m.focus); input != nil {
		input.Blur()
	}
	m.focus = field((int(m.focus) + delta + int(fieldCount)) % int(fieldCount))

	if input := m.input(m.focus); input != nil {
		return m, input.Focus()
	}
	return m, nil
}

func (m *Model) input(f field) *textinput.Model {
	switch f {
	case fieldUser:
		return &m.userInput
	case fieldChat:
		return &m.chatInput
	case fieldTitle:
		return &m.titleInput
	case fieldDescription:
		return &m.descInput
	case fieldCategory:
		return &m.categoryInput
	case fieldFilterCategory:
		return &m.filterInput
	}
	return nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.fetchCancel != nil {
		m.fetchCancel()
	}
	if m.chat == nil {
		return m, tea.Quit
	}
	conn := m.chat
	m.chat = nil
	return m, func() tea.Msg {
		_ = conn.Close()
		return tea.QuitMsg{}
	}
}
