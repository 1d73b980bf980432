// Package view turns UI state into a plain view tree that can be inspected without a terminal.
package view

import (
	"time"

	"github.com/vovakirdan/taskchat/internal/core"
)

const (
	// DefaultConnectLabel is shown when no transient status is active.
	DefaultConnectLabel = "Connect"

	metaTimeLayout = "15:04:05"
)

// State is everything Render needs.
type State struct {
	Status   string
	Messages []core.Message // newest first
	Tasks    []core.Task
	Cursor   int
	Location *time.Location
}

// Screen is the rendered view tree.
type Screen struct {
	ConnectLabel string
	Chat         []Bubble
	Tasks        []Card
}

// Bubble is one chat message.
type Bubble struct {
	ID      int64
	Meta    string
	Content string
}

// Card is one task with its actions.
type Card struct {
	ID          int64
	Title       string
	Status      string
	Meta        string
	Body        string
	ToggleLabel string
	DeleteLabel string
	Selected    bool
}

// Render builds the screen for s. It has no side effects.
func Render(s State) Screen {
	screen := Screen{
		ConnectLabel: s.Status,
		Chat:         make([]Bubble, 0, len(s.Messages)),
		Tasks:        make([]Card, 0, len(s.Tasks)),
	}
	if screen.ConnectLabel == "" {
		screen.ConnectLabel = DefaultConnectLabel
	}

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	for _, m := range s.Messages {
		screen.Chat = append(screen.Chat, BubbleFor(m, loc))
	}
	for i, t := range s.Tasks {
		card := CardFor(t)
		card.Selected = i == s.Cursor
		screen.Tasks = append(screen.Tasks, card)
	}
	return screen
}

// BubbleFor renders a message as "sender · hh:mm:ss" over its content.
func BubbleFor(m core.Message, loc *time.Location) Bubble {
	return Bubble{
		ID:      m.ID,
		Meta:    m.SenderID + " · " + m.CreatedAt.In(loc).Format(metaTimeLayout),
		Content: m.Content,
	}
}

// CardFor renders a task.
func CardFor(t core.Task) Card {
	card := Card{
		ID:          t.ID,
		Title:       t.Title,
		Status:      string(t.Status),
		Meta:        "No category",
		Body:        "No description",
		ToggleLabel: "Mark pending",
		DeleteLabel: "Delete",
	}
	if t.Category != nil && *t.Category != "" {
		card.Meta = "Category: " + *t.Category
	}
	if t.Description != nil && *t.Description != "" {
		card.Body = *t.Description
	}
	if t.Status == core.TaskStatusPending {
		card.ToggleLabel = "Mark actioned"
	}
	return card
}
