// Package tui is the terminal chat interface.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/models"
)

// Conversation is the part of agent.Agent the chat needs.
type Conversation interface {
	Greeting() string
	Handle(ctx context.Context, sess *models.Session, text string) agent.Reply
}

const (
	inputHeight   = 3
	reservedLines = inputHeight + 6 // header, input border, status, help
)

type line struct {
	role models.Role
	text string
	at   time.Time
}

type Model struct {
	ctx      context.Context
	conv     Conversation
	sess     *models.Session
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	waiting  bool
	status   string

	lines []line
}

// New builds the chat model for sess. A session without history starts with
// the greeting, which is shown but not stored.
func New(ctx context.Context, conv Conversation, sess *models.Session) Model {
	ta := textarea.New()
	ta.Placeholder = "Tell me about the roles you need..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = assistantStyle

	m := Model{
		ctx:     ctx,
		conv:    conv,
		sess:    sess,
		input:   ta,
		spinner: sp,
	}
	for _, t := range sess.History {
		m.lines = append(m.lines, line{role: t.Role, text: t.Content, at: t.Timestamp.Time})
	}
	if len(m.lines) == 0 {
		m.lines = append(m.lines, line{role: models.RoleAssistant, text: conv.Greeting()})
	}
	return m
}

// SessionID returns the id of the session being edited.
func (m Model) SessionID() string { return m.sess.ID }

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			return m.submit()

		case "ctrl+y":
			if text := m.lastReply(); text != "" {
				return m, copyToClipboard(text)
			}
			return m, nil

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case replyMsg:
		m.waiting = false
		m.lines = append(m.lines, line{role: models.RoleAssistant, text: msg.reply.Text, at: time.Now()})
		m.status = ""
		switch {
		case msg.reply.Err != nil:
			m.status = warningStyle.Render("Some changes were not saved: " + msg.reply.Err.Error())
		case msg.reply.Degraded:
			m.status = warningStyle.Render("The assistant is unavailable; showing a fallback reply.")
		}
		m.refresh()
		return m, m.input.Focus()

	case copiedMsg:
		if msg.err != nil {
			m.status = warningStyle.Render("Clipboard unavailable: " + msg.err.Error())
		} else {
			m.status = helpStyle.Render("Last reply copied to clipboard.")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if m.waiting || text == "" {
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.waiting = true
	m.status = ""
	m.lines = append(m.lines, line{role: models.RoleUser, text: text, at: time.Now()})
	m.refresh()
	return m, tea.Batch(sendMessage(m.ctx, m.conv, m.sess, text), m.spinner.Tick)
}

func (m Model) lastReply() string {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if m.lines[i].role == models.RoleAssistant {
			return m.lines[i].text
		}
	}
	return ""
}

func (m *Model) resize() {
	height := m.height - reservedLines
	if height < 3 {
		height = 3
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, height)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = height
	}
	m.input.SetWidth(m.width - 4)
	m.refresh()
}

// refresh re-renders the conversation and scrolls to the newest line.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderConversation(m.lines, m.width))
	m.viewport.GotoBottom()
}
