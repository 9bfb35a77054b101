package listings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/malonaz/carscout/cli/chat/styles"
	"github.com/malonaz/carscout/internal/markdown"
	"github.com/malonaz/carscout/internal/view"
)

var (
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// ExitMsg is sent when closing the overlay.
type ExitMsg struct{}

// CopyMsg asks the parent to copy a listing url to the clipboard.
type CopyMsg struct {
	URL string
}

// Model is the full-screen listings overlay.
type Model struct {
	overlay  *view.ResultsOverlay
	selected int
	// cardOffsets tracks the first line of each card in the viewport.
	cardOffsets []int
	viewport    viewport.Model
	renderer    *markdown.Renderer
	width       int
	height      int
}

// New creates a new overlay with the first card selected.
func New(overlay *view.ResultsOverlay, renderer *markdown.Renderer, width, height int) *Model {
	m := &Model{
		overlay:  overlay,
		renderer: renderer,
		width:    width,
		height:   height,
	}

	// Reserve 2 lines for the footer.
	viewportHeight := height - 2
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport = viewport.New(width, viewportHeight)
	m.viewport.MouseWheelEnabled = false
	m.updateContent()
	return m
}

// Init initializes the overlay.
func (m *Model) Init() tea.Cmd {
	return tea.DisableMouse
}

// Selected returns the selected card.
func (m *Model) Selected() view.ListingCard {
	return m.overlay.Cards[m.selected]
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return ExitMsg{} }

		case "j", "down":
			if m.selected < len(m.overlay.Cards)-1 {
				m.selected++
				m.updateContent()
				m.scrollToSelected()
			}
			return m, nil

		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.updateContent()
				m.scrollToSelected()
			}
			return m, nil

		case "y":
			card := m.Selected()
			if !card.Linked {
				return m, nil
			}
			return m, func() tea.Msg { return CopyMsg{URL: card.URL} }

		case "g":
			m.viewport.GotoTop()
			return m, nil

		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - 2
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
		m.renderer.SetWidth(msg.Width)
		m.updateContent()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the overlay.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	footer := fmt.Sprintf(" %d/%d │ j/k select │ y copy link │ g/G top/bottom │ q close",
		m.selected+1, len(m.overlay.Cards))
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

func (m *Model) scrollToSelected() {
	if m.selected >= len(m.cardOffsets) {
		return
	}
	offset := m.cardOffsets[m.selected]
	if offset < m.viewport.YOffset || offset >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(offset)
	}
}

// updateContent renders the count, the cards and the analysis into the viewport.
func (m *Model) updateContent() {
	var b strings.Builder
	lines := 0
	write := func(s string) {
		b.WriteString(s)
		lines += strings.Count(s, "\n")
	}

	write(styles.CountStyle.Render(m.overlay.Count))
	write("\n\n")

	m.cardOffsets = m.cardOffsets[:0]
	for i, card := range m.overlay.Cards {
		m.cardOffsets = append(m.cardOffsets, lines)
		style := styles.CardStyle
		if i == m.selected {
			style = styles.SelectedCardStyle
		}
		write(style.Render(renderCard(card)))
		write("\n\n")
	}

	if paragraphs := view.Paragraphs(m.overlay.Analysis); len(paragraphs) > 0 {
		write(m.renderer.Analysis(paragraphs))
	}
	m.viewport.SetContent(b.String())
}

func renderCard(card view.ListingCard) string {
	var b strings.Builder
	b.WriteString(styles.CardTitleStyle.Render(fmt.Sprintf("%d. %s", card.Index, card.Title)))
	b.WriteString("\n")
	b.WriteString(styles.CardDetailStyle.Render(fmt.Sprintf("%s │ %s", card.Price, card.Mileage)))
	b.WriteString("\n")
	b.WriteString(styles.CardDetailStyle.Render(fmt.Sprintf("%s │ %s", card.Location, card.Source)))
	if card.Linked {
		b.WriteString("\n")
		b.WriteString(styles.LinkStyle.Render(card.URL))
	}
	return b.String()
}
