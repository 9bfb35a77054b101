package view

import (
	"time"

	"github.com/malonaz/carscout/internal/agent"
)

// DefaultTimeFormat renders turn timestamps as a 2-digit hour and minute.
const DefaultTimeFormat = "03:04 PM"

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Avatar returns the marker shown next to turns of this role.
func (r Role) Avatar() string {
	if r == RoleUser {
		return "U"
	}
	return "🤖"
}

// Turn is one message of a conversation transcript.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Lines returns the turn content split on line breaks.
func (t Turn) Lines() []string {
	return Lines(t.Content)
}

// FormatTimestamp formats a turn timestamp; an empty layout uses DefaultTimeFormat.
func FormatTimestamp(timestamp time.Time, layout string) string {
	if layout == "" {
		layout = DefaultTimeFormat
	}
	return timestamp.Local().Format(layout)
}

// ResultsOverlay is the result set a chat reply carries, shown over the transcript.
type ResultsOverlay struct {
	Count    string
	Cards    []ListingCard
	Analysis string
}

// NewResultsOverlay builds the overlay for a chat reply's listings.
// It returns nil when there is nothing to show.
func NewResultsOverlay(response *agent.ChatResponse) *ResultsOverlay {
	cards := Cards(response.Listings)
	if len(cards) == 0 {
		return nil
	}
	total := response.TotalFound
	if total == 0 {
		total = len(cards)
	}
	return &ResultsOverlay{
		Count:    CountLabel(total),
		Cards:    cards,
		Analysis: response.Analysis,
	}
}
