package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/models"
)

type replyMsg struct {
	reply   agent.Reply
	elapsed time.Duration
}

type copiedMsg struct {
	err error
}

// sendMessage runs one turn off the UI goroutine. The session is only
// touched here while a turn is in flight.
func sendMessage(ctx context.Context, conv Conversation, sess *models.Session, text string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		reply := conv.Handle(ctx, sess, text)
		return replyMsg{reply: reply, elapsed: time.Since(start)}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}
