package view

import "github.com/malonaz/carscout/internal/agent"

// ErrorKind classifies what went wrong with a search.
type ErrorKind int

const (
	ErrorKindValidation ErrorKind = iota
	ErrorKindService
	ErrorKindConnectivity
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindValidation:
		return "validation"
	case ErrorKindService:
		return "service"
	case ErrorKindConnectivity:
		return "connectivity"
	}
	return "unknown"
}

// SearchPanel is the one panel shown after a search settles: a *ResultPanel or an *ErrorPanel.
type SearchPanel interface {
	searchPanel()
}

// ResultPanel shows a successful search.
type ResultPanel struct {
	// EnhancedQuery is the service's reading of the query, shown in quotes.
	EnhancedQuery string
	Count         string
	Cards         []ListingCard
	Analysis      []Paragraph
}

func (*ResultPanel) searchPanel() {}

// QuotedQuery returns the enhanced query wrapped in double quotes.
func (p *ResultPanel) QuotedQuery() string {
	return `"` + p.EnhancedQuery + `"`
}

// Empty returns true if the placeholder replaces the card list.
func (p *ResultPanel) Empty() bool {
	return len(p.Cards) == 0
}

// ErrorPanel shows a failed search.
type ErrorPanel struct {
	Kind    ErrorKind
	Message string
}

func (*ErrorPanel) searchPanel() {}

// NewResultPanel builds the result panel for a successful search response.
func NewResultPanel(response *agent.SearchResponse) *ResultPanel {
	return &ResultPanel{
		EnhancedQuery: response.EnhancedQuery,
		Count:         CountLabel(response.TotalFound),
		Cards:         Cards(response.Listings),
		Analysis:      Paragraphs(response.Analysis),
	}
}

// SearchState is what a search surface displays. Panel is nil while Busy and before the first search.
type SearchState struct {
	Busy  bool
	Panel SearchPanel
}
