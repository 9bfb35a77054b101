package session

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/malonaz/carscout/cli/chat/listings"
	"github.com/malonaz/carscout/cli/chat/styles"
	"github.com/malonaz/carscout/internal/configuration"
	"github.com/malonaz/carscout/internal/conversation"
	"github.com/malonaz/carscout/internal/debug"
	"github.com/malonaz/carscout/internal/history"
	"github.com/malonaz/carscout/internal/markdown"
	"github.com/malonaz/carscout/internal/view"
)

const maxQuickActions = 9

var log = debug.GetLogger()

// Model represents the Bubble Tea model for the chat session.
type Model struct {
	// Core dependencies
	ctx        context.Context
	config     *configuration.Config
	controller *conversation.Controller

	// Turn offsets track the first line of each turn in the viewport.
	turnViewportOffsets []int

	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer

	// UI state
	width         int
	height        int
	ready         bool
	quitting      bool
	windowFocused bool
	// err is the last session start failure, shown under the input.
	err error

	// Alert notifications.
	alertClipboardWrite bubbleup.AlertModel
	clipboardReady      bool

	// Input history
	history           *history.History
	historyNavigating bool

	// Tracks the index of the turn we're currently navigating. (-1 if none is selected).
	navigationTurnIndex int

	// Latest result set, reopened with Alt+L.
	results *view.ResultsOverlay

	// Sub-views
	listingsMode  bool
	listingsModel *listings.Model
}

// New creates a new chat session model. clipboardReady reports whether the clipboard was initialized.
func New(
	ctx context.Context,
	config *configuration.Config,
	controller *conversation.Controller,
	history *history.History,
	clipboardReady bool,
) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Ask about cars... (Enter to send, Alt+Enter for newline, Ctrl+N new chat, Ctrl+C to quit)"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	alertClipboardWrite := bubbleup.NewAlertModel(25, true, 1)

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}

	return &Model{
		ctx:                 ctx,
		config:              config,
		controller:          controller,
		windowFocused:       true,
		textarea:            ta,
		spinner:             sp,
		history:             history,
		renderer:            renderer,
		alertClipboardWrite: *alertClipboardWrite,
		clipboardReady:      clipboardReady,
		navigationTurnIndex: -1,
	}, nil
}

// Init starts the first session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.alertClipboardWrite.Init(),
		m.startConversation(),
	)
}

// quickActions returns the quick actions that have a shortcut.
func (m *Model) quickActions() []string {
	actions := m.config.Chat.QuickActions
	if len(actions) > maxQuickActions {
		actions = actions[:maxQuickActions]
	}
	return actions
}
