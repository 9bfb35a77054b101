package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	// Textarea
	MinTextareaHeight    = 2
	MaxTextareaHeight    = 10
	DefaultTextareaWidth = 80
	TextAreaPaddingLeft  = 1

	// Viewport
	MinViewportHeight = 1

	// Layout
	InputBorderHeight  = 2
	HeaderHeight       = 2
	StatusHeight       = 1
	MessagePaddingLeft = 2

	// Truncation
	TruncateLength       = 40
	TruncateSuffix       = "..."
	TruncateSuffixLength = 3
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7C3AED") // Purple
	SecondaryColor = lipgloss.Color("#06B6D4") // Cyan
	AccentColor    = lipgloss.Color("#F59E0B") // Amber
	SuccessColor   = lipgloss.Color("#10B981") // Green
	ErrorColor     = lipgloss.Color("#EF4444") // Red
	MutedColor     = lipgloss.Color("#6B7280") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light gray
	DimTextColor   = lipgloss.Color("#9CA3AF") // Dim gray
	LinkColor      = lipgloss.Color("#60A5FA") // Blue
	DividerColor   = lipgloss.Color("#374151")
	SelectedColor  = lipgloss.Color("#10B981")
)

// Title bar
var (
	TitleStyle = lipgloss.NewStyle().
		Background(PrimaryColor).
		Foreground(TextColor).
		Bold(true)
)

// Turns.
var (
	turnStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	UserTurnStyle = lipgloss.NewStyle().
			Inherit(turnStyle).
			BorderForeground(PrimaryColor).
			MarginLeft(10)

	AssistantTurnStyle = lipgloss.NewStyle().
				Inherit(turnStyle).
				BorderForeground(SecondaryColor).
				MarginRight(10)

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true).
			MarginLeft(10)

	AssistantLabelStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(DimTextColor)
)

// Listings
var (
	CountStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(DividerColor)

	SelectedCardStyle = lipgloss.NewStyle().
				Inherit(CardStyle).
				BorderForeground(SelectedColor)

	CardTitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	CardDetailStyle = lipgloss.NewStyle().
			Foreground(DimTextColor)

	LinkStyle = lipgloss.NewStyle().
			Foreground(LinkColor).
			Underline(true)

	ResultsHintStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Italic(true)
)

// Quick actions
var (
	QuickActionKeyStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true)

	QuickActionStyle = lipgloss.NewStyle().
				Foreground(DimTextColor)
)

// Error
var (
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
)

// Input area
var (
	TextAreaStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		PaddingLeft(TextAreaPaddingLeft)
)

// Spinner
var (
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)
)

// Help text
var (
	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)
)

// Viewport
var (
	ViewportStyle = lipgloss.NewStyle().Margin(0).Padding(0)
)

// Divider
var (
	DividerStyle = lipgloss.NewStyle().
		Foreground(DividerColor)
)

// TurnHorizontalFrameSize returns the horizontal frame size of assistant turns.
func TurnHorizontalFrameSize() int {
	return AssistantTurnStyle.GetHorizontalFrameSize()
}

// Truncate truncates a string to the specified length with a suffix.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-TruncateSuffixLength]) + TruncateSuffix
}
