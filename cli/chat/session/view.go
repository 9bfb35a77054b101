package session

import (
	"fmt"
	"strings"

	"github.com/malonaz/carscout/cli/chat/styles"
	"github.com/malonaz/carscout/internal/view"
)

const typingText = "Assistant is typing..."

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Initializing..."
	}

	if m.listingsMode && m.listingsModel != nil {
		return m.alertClipboardWrite.Render(m.listingsModel.View())
	}

	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	b.WriteString(styles.ViewportStyle.Render(m.viewport.View()))
	b.WriteString("\n")

	if m.controller.Typing() {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), typingText))
	} else {
		b.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
		b.WriteString("\n")
	}

	if m.controller.QuickActionsVisible() {
		if line := m.renderQuickActions(); line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderHelp())

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return m.alertClipboardWrite.Render(b.String())
}

func (m *Model) renderTitle() string {
	sessionID := m.controller.SessionID()
	if sessionID == "" {
		sessionID = "connecting"
	}
	title := fmt.Sprintf(" 🚗 carscout │ 💬 %s │ 🔗 %s ", sessionID, m.config.ServiceURL)
	return styles.TitleStyle.Width(m.width).Render(title)
}

func (m *Model) renderQuickActions() string {
	actions := m.quickActions()
	parts := make([]string, 0, len(actions))
	for i, action := range actions {
		parts = append(parts, styles.QuickActionKeyStyle.Render(fmt.Sprintf("Alt+%d", i+1))+" "+
			styles.QuickActionStyle.Render(styles.Truncate(action, styles.TruncateLength)))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderHelp() string {
	help := "Enter send │ Alt+Enter newline │ Ctrl+N new chat │ Alt+P/N history │ Alt+{/} select │ Alt+W copy"
	if m.results != nil {
		help += " │ Alt+L listings"
	}
	return styles.HelpStyle.Render(help)
}

// renderTurns renders the transcript and records where each turn starts.
func (m *Model) renderTurns() string {
	var b strings.Builder
	lines := 0
	write := func(s string) {
		b.WriteString(s)
		lines += strings.Count(s, "\n")
	}

	transcript := m.controller.Transcript()
	m.turnViewportOffsets = m.turnViewportOffsets[:0]
	for i, turn := range transcript {
		if i > 0 {
			write("\n\n")
		}
		m.turnViewportOffsets = append(m.turnViewportOffsets, lines)
		write(m.renderTurn(turn, i == m.navigationTurnIndex))
	}
	if m.results != nil && len(transcript) > 0 {
		write("\n")
		write(styles.ResultsHintStyle.Render(fmt.Sprintf("%s (Alt+L to view)", m.results.Count)))
	}
	return b.String()
}

func (m *Model) renderTurn(turn view.Turn, selected bool) string {
	header := fmt.Sprintf("%s  %s", turn.Role.Avatar(),
		styles.TimestampStyle.Render(view.FormatTimestamp(turn.Timestamp, m.config.Chat.TimeFormat)))
	content := strings.Join(turn.Lines(), "\n")

	labelStyle, turnStyle := styles.AssistantLabelStyle, styles.AssistantTurnStyle
	if turn.Role == view.RoleUser {
		labelStyle, turnStyle = styles.UserLabelStyle, styles.UserTurnStyle
	}
	if selected {
		turnStyle = turnStyle.BorderForeground(styles.SelectedColor)
	}

	// Width covers the padding but not the margins or the border.
	if width := m.viewport.Width - turnStyle.GetHorizontalMargins() - turnStyle.GetHorizontalBorderSize(); width > 0 {
		turnStyle = turnStyle.Width(width)
	}
	return labelStyle.Render(header) + "\n" + turnStyle.Render(content)
}
