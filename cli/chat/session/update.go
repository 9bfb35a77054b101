package session

import (
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/malonaz/carscout/cli/chat/listings"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message
	outAlert, alertCmd := m.alertClipboardWrite.Update(msg)
	m.alertClipboardWrite = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	// Log for non-tick messages only
	defer func() {
		switch msg.(type) {
		case spinner.TickMsg, cursor.BlinkMsg, tea.MouseMsg:
		default:
			log.Info("update completed", "msg_type", fmt.Sprintf("%T", msg), "state", m.controller.State())
		}
	}()

	switch msg := msg.(type) {
	case listings.ExitMsg:
		m.listingsMode = false
		m.listingsModel = nil
		m.textarea.Focus()
		m.viewport.GotoBottom()
		return m, tea.Batch(textarea.Blink, tea.EnableMouseCellMotion)

	case listings.CopyMsg:
		return m, tea.Batch(append(cmds, m.copyToClipboard(msg.URL))...)

	case startedMsg:
		if msg.reply.Stale {
			return m, nil
		}
		m.err = msg.reply.Err
		m.refreshTranscript(true)
		return m, nil

	case repliedMsg:
		reply := msg.reply
		m.recalculateLayout()
		if reply.Stale {
			return m, nil
		}
		m.refreshTranscript(true)
		cmds = append(cmds, scheduleDeferred(reply.Deferred))
		if reply.Results != nil {
			m.results = reply.Results
			cmd := m.openListings()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case deferredMsg:
		if m.controller.Deliver(msg.deferred) {
			m.refreshTranscript(m.viewport.AtBottom())
			m.recalculateLayout()
		}
		return m, nil

	case tea.FocusMsg:
		m.windowFocused = true
		m.textarea.Focus()
		cmds = append(cmds, textarea.Blink)
		return m, tea.Batch(cmds...)

	case tea.BlurMsg:
		m.windowFocused = false
		m.textarea.Blur()
		return m, nil

	case tea.KeyMsg:
		if m.listingsMode {
			var cmd tea.Cmd
			m.listingsModel, cmd = m.listingsModel.Update(msg)
			return m, cmd
		}
		busy := m.controller.Busy()

		switch msg.String() {
		case "alt+{":
			if m.navigationTurnIndex == -1 {
				m.navigationTurnIndex = len(m.controller.Transcript())
			}
			if m.navigationTurnIndex > 0 {
				m.navigationTurnIndex--
				m.viewport.SetContent(m.renderTurns())
				m.scrollToNavigatedTurn()
			}
			return m, nil

		case "alt+}":
			if m.navigationTurnIndex != -1 {
				m.navigationTurnIndex++
				if m.navigationTurnIndex >= len(m.controller.Transcript()) {
					m.navigationTurnIndex = -1
					m.viewport.GotoBottom()
				}
				m.viewport.SetContent(m.renderTurns())
				if m.navigationTurnIndex != -1 {
					m.scrollToNavigatedTurn()
				}
			}
			return m, nil

		case "alt+w":
			transcript := m.controller.Transcript()
			if m.navigationTurnIndex != -1 && m.navigationTurnIndex < len(transcript) {
				return m, tea.Batch(append(cmds, m.copyToClipboard(transcript[m.navigationTurnIndex].Content))...)
			}

		case "alt+l":
			if m.results != nil {
				return m, m.openListings()
			}
			return m, nil

		case "ctrl+n":
			return m, m.newChat()

		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9":
			if busy {
				return m, nil
			}
			index := int(msg.Runes[0] - '1')
			return m, m.sendQuickAction(index)

		case "alt+p":
			if !busy {
				if entry, ok := m.history.Previous(m.textarea.Value()); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
				}
			}
			return m, nil

		case "alt+n":
			if !busy {
				if entry, ok := m.history.Next(); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
				}
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyCtrlJ, tea.KeyEnter:
			if msg.Alt {
				break
			}
			if !busy {
				return m, m.sendMessage(m.textarea.Value())
			}
			return m, nil
		}

		if !busy && m.historyNavigating {
			switch msg.Type {
			case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete:
				m.history.Reset()
				m.historyNavigating = false
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listingsMode && m.listingsModel != nil {
			m.listingsModel, _ = m.listingsModel.Update(msg)
		}
		m.recalculateLayout()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.controller.Busy() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.controller.Busy() {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			switch msg.String() {
			case "j", "k", "g", "G", "u", "d", "b", "ctrl+u", "ctrl+d", "f", " ":
				// Don't pass vim navigation keys to viewport while typing
			default:
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// openListings switches to the overlay for the latest results.
func (m *Model) openListings() tea.Cmd {
	m.listingsMode = true
	m.listingsModel = listings.New(m.results, m.renderer, m.width, m.height)
	return m.listingsModel.Init()
}

// refreshTranscript re-renders the transcript, optionally scrolling to the end.
func (m *Model) refreshTranscript(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTurns())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) copyToClipboard(content string) tea.Cmd {
	if !m.clipboardReady {
		return m.alertClipboardWrite.NewAlertCmd(bubbleup.InfoKey, "Clipboard unavailable")
	}
	clipboard.Write(clipboard.FmtText, []byte(content))
	return m.alertClipboardWrite.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!")
}
