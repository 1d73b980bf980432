package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/ui/view"
)

const helpText = "tab: next field  enter: act  ctrl+r: refresh tasks  t: toggle  d: delete  pgup/pgdn: scroll chat  ctrl+c: quit"

// View draws the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	screen := m.Screen()
	leftWidth, rightWidth := m.columns()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("taskchat"),
		m.label("User", fieldUser),
		m.userInput.View(),
		"  ",
		buttonStyle.Render(screen.ConnectLabel),
	)

	chatPane := m.pane(fieldChat, leftWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.chatView.View(),
		"",
		m.label("Message", fieldChat)+m.chatInput.View(),
	))

	taskPane := m.pane(fieldTasks, rightWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.label("Title", fieldTitle)+m.titleInput.View(),
		m.label("Details", fieldDescription)+m.descInput.View(),
		m.label("Category", fieldCategory)+m.categoryInput.View(),
		"",
		m.label("Status", fieldFilterStatus)+m.filterStatusLabel(),
		m.label("Filter", fieldFilterCategory)+m.filterInput.View(),
		"",
		m.renderCards(screen.Tasks, rightWidth-4),
	))

	body := lipgloss.JoinHorizontal(lipgloss.Top, chatPane, taskPane)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, helpStyle.Render(helpText))
}

func (m Model) columns() (int, int) {
	left := m.width * 55 / 100
	return left, m.width - left
}

func (m *Model) resize() {
	left, _ := m.columns()
	m.chatView.Width = max(10, left-4)
	m.chatView.Height = max(3, m.height-9)
	m.refreshChatView()
}

// refreshChatView redraws the chat viewport; the newest message sits at the top.
// A reader scrolled down into older messages keeps their position.
func (m *Model) refreshChatView() {
	follow := m.chatView.AtTop()

	screen := view.Render(view.State{Messages: m.messages, Location: m.opts.Location})

	var b strings.Builder
	for i, bubble := range screen.Chat {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(bubbleStyle.Render(metaStyle.Render(bubble.Meta) + "\n" + bubble.Content))
	}
	m.chatView.SetContent(b.String())
	if follow {
		m.chatView.GotoTop()
	}
}

func (m Model) renderCards(cards []view.Card, width int) string {
	if len(cards) == 0 {
		if !m.session.Valid() {
			return metaStyle.Render("Connect to load tasks")
		}
		return metaStyle.Render("No tasks")
	}

	rendered := make([]string, 0, len(cards))
	for _, card := range cards {
		style := cardStyle
		if card.Selected && m.focus == fieldTasks {
			style = selectedCardStyle
		}

		tag := pendingTag
		if card.Status == string(core.TaskStatusActioned) {
			tag = actionedTag
		}

		rendered = append(rendered, style.Width(max(10, width)).Render(fmt.Sprintf("%s  %s\n%s\n%s\n%s",
			lipgloss.NewStyle().Bold(true).Render(card.Title),
			tag.Render(card.Status),
			metaStyle.Render(card.Meta),
			card.Body,
			helpStyle.Render("[t] "+card.ToggleLabel+"  [d] "+card.DeleteLabel),
		)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (m Model) filterStatusLabel() string {
	if m.filterStatus == nil {
		return "All"
	}
	return string(*m.filterStatus)
}

func (m Model) label(text string, f field) string {
	if m.focus == f {
		return focusedLabelStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (m Model) pane(f field, width int) lipgloss.Style {
	style := paneStyle
	if m.focus == f {
		style = focusedPaneStyle
	}
	return style.Width(max(10, width-2))
}
