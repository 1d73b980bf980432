// Package ui is the terminal front end: a chat pane fed by the pub/sub channel and a task panel backed by the REST API.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/client/api"
	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
	"github.com/vovakirdan/taskchat/internal/ui/view"
)

// Status labels shown in place of the connect button.
const (
	StatusSetUserID        = "Set user ID"
	StatusConnected        = "Connected"
	StatusNotConnected     = "Not connected"
	StatusConnectionFailed = "Connection failed"
)

// focusable fields, in tab order
type field int

const (
	fieldUser field = iota
	fieldChat
	fieldTitle
	fieldDescription
	fieldCategory
	fieldFilterStatus
	fieldFilterCategory
	fieldTasks
	fieldCount
)

// Options tune the model. Zero values fall back to defaults.
type Options struct {
	UserID         string
	HistoryLimit   int
	StatusDelay    time.Duration
	RequestTimeout time.Duration
	Location       *time.Location
}

func (o Options) withDefaults() Options {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 50
	}
	if o.StatusDelay <= 0 {
		o.StatusDelay = 1200 * time.Millisecond
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Model is the bubbletea model. All state changes happen in Update.
type Model struct {
	tasksAPI    TaskAPI
	messagesAPI MessageAPI
	dial        Dialer
	opts        Options
	log         *zerolog.Logger

	session api.Session

	status    string
	statusSeq int

	chat    ChatConn
	chatGen int

	messages []core.Message
	seen     map[int64]struct{}

	tasks       []core.Task
	cursor      int
	fetchGen    uint64
	fetchCancel context.CancelFunc

	focus         field
	userInput     textinput.Model
	chatInput     textinput.Model
	titleInput    textinput.Model
	descInput     textinput.Model
	categoryInput textinput.Model
	filterInput   textinput.Model
	filterStatus  *core.TaskStatus
	chatView      viewport.Model
	width, height int
	quitting      bool
}

// New builds a model wired to its collaborators.
func New(tasks TaskAPI, messages MessageAPI, dial Dialer, opts Options, logger *zerolog.Logger) Model {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	opts = opts.withDefaults()

	m := Model{
		tasksAPI:      tasks,
		messagesAPI:   messages,
		dial:          dial,
		opts:          opts,
		log:           logger,
		seen:          make(map[int64]struct{}),
		userInput:     newInput("user id", 255),
		chatInput:     newInput("say something...", 4000),
		titleInput:    newInput("title", 255),
		descInput:     newInput("description (optional)", 4000),
		categoryInput: newInput("category (optional)", 255),
		filterInput:   newInput("filter by category", 255),
		chatView:      viewport.New(60, 15),
		width:         120,
		height:        36,
	}
	m.userInput.SetValue(opts.UserID)
	m.userInput.Focus()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	return ti
}

// Init seeds the chat view from history.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		loadHistoryCmd(m.messagesAPI, m.opts.HistoryLimit, m.opts.RequestTimeout),
	)
}

// Session returns the session set by the last connect.
func (m Model) Session() api.Session {
	return m.session
}

// Screen renders the current state into a view tree.
func (m Model) Screen() view.Screen {
	return view.Render(view.State{
		Status:   m.status,
		Messages: m.messages,
		Tasks:    m.tasks,
		Cursor:   m.cursor,
		Location: m.opts.Location,
	})
}

// Update handles input and collaborator responses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to load recent messages")
			return m, nil
		}
		m.seedHistory(msg.messages)
		return m, nil

	case connectedMsg:
		return m.handleConnected(msg)

	case chatReceivedMsg:
		if msg.gen != m.chatGen || m.chat == nil {
			return m, nil
		}
		m.prependMessage(msg.msg)
		m.refreshChatView()
		return m, waitForChatCmd(m.chat, m.chatGen)

	case chatClosedMsg:
		if msg.gen != m.chatGen {
			return m, nil
		}
		m.log.Warn().Err(msg.err).Msg("chat connection closed")
		m.chat = nil
		return m, nil

	case chatSentMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to send chat message")
		}
		return m, nil

	case tasksLoadedMsg:
		if msg.gen != m.fetchGen {
			m.log.Debug().Uint64("gen", msg.gen).Uint64("latest", m.fetchGen).Msg("discarding stale task list")
			return m, nil
		}
		m.fetchCancel = nil
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to fetch tasks")
			return m, nil
		}
		m.tasks = msg.tasks
		m.clampCursor()
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to create task")
			return m, nil
		}
		m.titleInput.Reset()
		m.descInput.Reset()
		m.categoryInput.Reset()
		return m.fetchTasks()

	case taskMutatedMsg:
		switch {
		case api.IsNotFound(msg.err):
			m.log.Debug().Str("op", msg.op).Int64("task_id", msg.id).Msg("task already gone")
		case msg.err != nil:
			m.log.Warn().Err(msg.err).Str("op", msg.op).Int64("task_id", msg.id).Msg("task mutation failed")
		}
		return m.fetchTasks()

	case statusResetMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// Connect sets the session from the user field and dials the chat channel.
func (m Model) Connect() (Model, tea.Cmd) {
	m.session = api.Session{UserID: strings.TrimSpace(m.userInput.Value())}

	// the previous connection belongs to the previous user
	var cmds []tea.Cmd
	if m.chat != nil {
		cmds = append(cmds, closeChatCmd(m.chat))
		m.chat = nil
	}
	m.chatGen++

	if !m.session.Valid() {
		var status tea.Cmd
		m, status = m.setStatus(StatusSetUserID)
		return m, tea.Batch(append(cmds, status)...)
	}

	cmds = append(cmds, dialCmd(m.dial, m.session, m.chatGen, m.opts.RequestTimeout))

	m, fetch := m.fetchTasks()
	cmds = append(cmds, fetch)
	return m, tea.Batch(cmds...)
}

func (m Model) handleConnected(msg connectedMsg) (Model, tea.Cmd) {
	if msg.gen != m.chatGen {
		if msg.conn != nil {
			return m, closeChatCmd(msg.conn)
		}
		return m, nil
	}
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Str("user_id", m.session.UserID).Msg("chat connect failed")
		return m.setStatus(StatusConnectionFailed)
	}

	m.chat = msg.conn
	m.log.Info().Str("user_id", m.session.UserID).Msg("chat connected")
	m, status := m.setStatus(StatusConnected)
	return m, tea.Batch(status, waitForChatCmd(m.chat, m.chatGen))
}

// SendChat publishes the chat input as the session user.
func (m Model) SendChat() (Model, tea.Cmd) {
	if m.chat == nil || !m.chat.Connected() {
		return m.setStatus(StatusNotConnected)
	}
	if !m.session.Valid() {
		return m.setStatus(StatusSetUserID)
	}
	content := strings.TrimSpace(m.chatInput.Value())
	if content == "" {
		return m, nil
	}
	m.chatInput.Reset()
	return m, sendChatCmd(m.chat, m.session.UserID, content, m.opts.RequestTimeout)
}

// SubmitTask creates a task from the form fields.
func (m Model) SubmitTask() (Model, tea.Cmd) {
	if !m.session.Valid() {
		return m.setStatus(StatusSetUserID)
	}

	req := proto.TaskCreateRequest{
		Title:       strings.TrimSpace(m.titleInput.Value()),
		Description: optional(m.descInput.Value()),
		Category:    optional(m.categoryInput.Value()),
	}
	return m, createTaskCmd(m.tasksAPI, m.session, req, m.opts.RequestTimeout)
}

// FetchTasks reloads the task list with the current filters.
func (m Model) FetchTasks() (Model, tea.Cmd) {
	return m.fetchTasks()
}

// fetchTasks supersedes any in-flight fetch: its context is cancelled and its result ignored.
func (m Model) fetchTasks() (Model, tea.Cmd) {
	if !m.session.Valid() {
		return m, nil
	}
	if m.fetchCancel != nil {
		m.fetchCancel()
	}

	m.fetchGen++
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.RequestTimeout)
	m.fetchCancel = cancel

	filter := api.TaskFilter{
		Status:   m.filterStatus,
		Category: strings.TrimSpace(m.filterInput.Value()),
	}
	return m, listTasksCmd(ctx, cancel, m.tasksAPI, m.session, filter, m.fetchGen)
}

// ToggleTask flips the selected task between PENDING and ACTIONED.
func (m Model) ToggleTask() (Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	if !m.session.Valid() {
		return m.setStatus(StatusSetUserID)
	}
	return m, updateTaskCmd(m.tasksAPI, m.session, task.ID, task.Status.Toggle(), m.opts.RequestTimeout)
}

// DeleteTask removes the selected task.
func (m Model) DeleteTask() (Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	if !m.session.Valid() {
		return m.setStatus(StatusSetUserID)
	}
	return m, deleteTaskCmd(m.tasksAPI, m.session, task.ID, m.opts.RequestTimeout)
}

// setStatus shows a transient label. Only the latest label's timer resets it.
func (m Model) setStatus(text string) (Model, tea.Cmd) {
	m.status = text
	m.statusSeq++
	return m, statusResetCmd(m.opts.StatusDelay, m.statusSeq)
}

// seedHistory replaces the chat view with newest-first history, keeping live messages that raced ahead of it.
func (m *Model) seedHistory(history []core.Message) {
	if len(history) > m.opts.HistoryLimit {
		history = history[:m.opts.HistoryLimit]
	}

	live := m.messages
	m.messages = nil
	m.seen = make(map[int64]struct{}, len(history)+len(live))

	for i := len(history) - 1; i >= 0; i-- {
		m.prependMessage(history[i])
	}
	for i := len(live) - 1; i >= 0; i-- {
		m.prependMessage(live[i])
	}
	m.refreshChatView()
}

// prependMessage puts msg on top unless a message with the same id is already shown.
func (m *Model) prependMessage(msg core.Message) {
	if msg.ID != 0 {
		if _, dup := m.seen[msg.ID]; dup {
			return
		}
		m.seen[msg.ID] = struct{}{}
	}
	m.messages = append([]core.Message{msg}, m.messages...)
}

func (m Model) selectedTask() (core.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return core.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.tasks) {
		m.cursor = max(0, len(m.tasks)-1)
	}
}

func (m *Model) cycleFilterStatus() {
	switch {
	case m.filterStatus == nil:
		s := core.TaskStatusPending
		m.filterStatus = &s
	case *m.filterStatus == core.TaskStatusPending:
		s := core.TaskStatusActioned
		m.filterStatus = &s
	default:
		m.filterStatus = nil
	}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
