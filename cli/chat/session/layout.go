package session

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/malonaz/carscout/cli/chat/styles"
)

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	content := m.textarea.Value()
	lineCount := strings.Count(content, "\n") + 1

	newHeight := lineCount
	if newHeight < styles.MinTextareaHeight {
		newHeight = styles.MinTextareaHeight
	}
	if newHeight > styles.MaxTextareaHeight {
		newHeight = styles.MaxTextareaHeight
	}

	oldHeight := m.textarea.Height()
	if oldHeight != newHeight {
		m.textarea.SetHeight(newHeight)

		heightDiff := newHeight - oldHeight

		m.recalculateLayout()

		if heightDiff != 0 && m.ready {
			m.viewport.LineDown(heightDiff)
		}
	}
}

// scrollToNavigatedTurn scrolls the viewport to show the currently navigated turn.
func (m *Model) scrollToNavigatedTurn() {
	if m.navigationTurnIndex < 0 || m.navigationTurnIndex >= len(m.turnViewportOffsets) {
		return
	}
	m.viewport.SetYOffset(m.turnViewportOffsets[m.navigationTurnIndex])
}

// recalculateLayout adjusts viewport and textarea dimensions based on current state.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	viewportHeight := m.height - styles.HeaderHeight - styles.StatusHeight
	viewportWidth := m.width

	if m.controller.Typing() {
		viewportHeight -= 1
	} else {
		viewportHeight -= m.textarea.Height() + styles.InputBorderHeight
	}
	if m.controller.QuickActionsVisible() && len(m.quickActions()) > 0 {
		viewportHeight -= 1
	}
	if m.err != nil {
		viewportHeight -= 1
	}

	if viewportHeight < styles.MinViewportHeight {
		viewportHeight = styles.MinViewportHeight
	}
	m.renderer.SetWidth(viewportWidth - styles.TurnHorizontalFrameSize())

	if !m.ready {
		m.viewport = viewport.New(viewportWidth, viewportHeight)
		m.ready = true
		m.viewport.SetContent(m.renderTurns())
		m.viewport.GotoBottom()
	} else {
		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
		m.viewport.SetContent(m.renderTurns())
	}

	m.textarea.SetWidth(viewportWidth - styles.TextAreaStyle.GetHorizontalPadding() - styles.TextAreaStyle.GetHorizontalBorderSize())
}
