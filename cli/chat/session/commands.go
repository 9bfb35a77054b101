package session

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malonaz/carscout/internal/conversation"
)

// startedMsg carries the reply of a session start.
type startedMsg struct {
	reply *conversation.Reply
}

// repliedMsg carries the reply of a completed exchange.
type repliedMsg struct {
	reply *conversation.Reply
}

// deferredMsg fires when a deferred action is due.
type deferredMsg struct {
	deferred conversation.Deferred
}

func (m *Model) startConversation() tea.Cmd {
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		return startedMsg{reply: controller.Start(ctx)}
	}
}

func (m *Model) newChat() tea.Cmd {
	m.results = nil
	m.navigationTurnIndex = -1
	m.err = nil
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		return startedMsg{reply: controller.NewChat(ctx)}
	}
}

// sendMessage echoes the message locally and completes the exchange in the background.
func (m *Model) sendMessage(message string) tea.Cmd {
	exchange, err := m.controller.Begin(message)
	if err != nil {
		log.Info("message not sent", "error", err)
		return nil
	}

	m.history.Add(message)
	m.historyNavigating = false
	m.textarea.Reset()
	m.navigationTurnIndex = -1
	m.recalculateLayout()
	m.viewport.GotoBottom()

	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		return repliedMsg{reply: controller.Complete(ctx, exchange)}
	}
}

// sendQuickAction sends the preset message at index if quick actions are visible.
func (m *Model) sendQuickAction(index int) tea.Cmd {
	actions := m.quickActions()
	if index >= len(actions) || !m.controller.QuickActionsVisible() {
		return nil
	}
	return m.sendMessage(actions[index])
}

// scheduleDeferred returns a tick per deferred action.
func scheduleDeferred(deferred []conversation.Deferred) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(deferred))
	for _, d := range deferred {
		d := d
		cmds = append(cmds, tea.Tick(d.After, func(time.Time) tea.Msg {
			return deferredMsg{deferred: d}
		}))
	}
	return tea.Batch(cmds...)
}
