package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/models"
)

type fakeConversation struct {
	got []string
}

func (f *fakeConversation) Greeting() string { return "Hello, planner." }

func (f *fakeConversation) Handle(ctx context.Context, sess *models.Session, text string) agent.Reply {
	f.got = append(f.got, text)
	return agent.Reply{Text: "reply to " + text}
}

func newTestModel(t *testing.T, sess *models.Session) (Model, *fakeConversation) {
	t.Helper()
	conv := &fakeConversation{}
	m := New(context.Background(), conv, sess)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(Model), conv
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

// run executes cmd and any batched commands, returning the first replyMsg.
func run(t *testing.T, cmd tea.Cmd) (replyMsg, bool) {
	t.Helper()
	if cmd == nil {
		return replyMsg{}, false
	}
	switch msg := cmd().(type) {
	case replyMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if r, ok := c().(replyMsg); ok {
				return r, true
			}
		}
	}
	return replyMsg{}, false
}

func TestNew_GreetingForEmptySession(t *testing.T) {
	m, _ := newTestModel(t, models.NewSession("s1", models.At(time.Now())))
	if len(m.lines) != 1 || m.lines[0].text != "Hello, planner." {
		t.Fatalf("lines = %+v", m.lines)
	}
	if !strings.Contains(m.View(), "Hello, planner.") {
		t.Error("View() should show the greeting")
	}
}

func TestNew_ExistingHistory(t *testing.T) {
	sess := models.NewSession("s2", models.At(time.Now()))
	sess.History = []models.Turn{
		{Role: models.RoleUser, Content: "hi", Timestamp: models.At(time.Now())},
		{Role: models.RoleAssistant, Content: "hello", Timestamp: models.At(time.Now())},
	}
	m, _ := newTestModel(t, sess)
	if len(m.lines) != 2 {
		t.Errorf("lines = %+v, want history without greeting", m.lines)
	}
}

func TestSubmit(t *testing.T) {
	m, conv := newTestModel(t, models.NewSession("s3", models.At(time.Now())))
	m = typeText(m, "we need an engineer")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if !m.waiting {
		t.Fatal("model should wait for the reply")
	}
	if m.input.Value() != "" {
		t.Errorf("input not reset: %q", m.input.Value())
	}

	// A second enter while waiting is ignored.
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("enter while waiting should not send")
	}

	reply, ok := run(t, cmd)
	if !ok {
		t.Fatal("submit should produce a reply")
	}
	if len(conv.got) != 1 || conv.got[0] != "we need an engineer" {
		t.Errorf("conversation got %v", conv.got)
	}

	updated, _ = m.Update(reply)
	m = updated.(Model)
	if m.waiting {
		t.Error("model still waiting after reply")
	}
	if got := m.lastReply(); got != "reply to we need an engineer" {
		t.Errorf("lastReply() = %q", got)
	}
	if !strings.Contains(m.viewport.View(), "reply to we need an engineer") {
		t.Error("reply not rendered in the viewport")
	}
}

func TestSubmit_EmptyInput(t *testing.T) {
	m, _ := newTestModel(t, models.NewSession("s4", models.At(time.Now())))
	m = typeText(m, "   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || updated.(Model).waiting {
		t.Error("blank input should not be sent")
	}
}

func TestReply_Degraded(t *testing.T) {
	m, _ := newTestModel(t, models.NewSession("s5", models.At(time.Now())))
	updated, _ := m.Update(replyMsg{reply: agent.Reply{Text: agent.UpstreamFailureReply, Degraded: true}})
	if !strings.Contains(updated.(Model).status, "unavailable") {
		t.Errorf("status = %q", updated.(Model).status)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, models.NewSession("s6", models.At(time.Now())))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should return tea.Quit")
	}
}
