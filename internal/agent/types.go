package agent

import "strings"

// NoURL is the url the service sends for listings it could not link.
const NoURL = "N/A"

// ResponseType discriminates chat replies.
type ResponseType string

const (
	ResponseTypeSearchRequest ResponseType = "search_request"
	ResponseTypeConversation  ResponseType = "conversation"
)

// Listing is a single car listing. Every field is already formatted for display.
type Listing struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Mileage  string `json:"mileage"`
	Location string `json:"location"`
	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
}

// HasLink returns true if the listing carries a url that can be followed.
func (l *Listing) HasLink() bool {
	url := strings.TrimSpace(l.URL)
	return url != "" && url != NoURL
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Success       bool       `json:"success"`
	Query         string     `json:"query,omitempty"`
	EnhancedQuery string     `json:"enhanced_query,omitempty"`
	TotalFound    int        `json:"total_found,omitempty"`
	Listings      []*Listing `json:"listings,omitempty"`
	Analysis      string     `json:"analysis,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// StartConversationRequest is the body of POST /start-conversation.
type StartConversationRequest struct {
	UserID string `json:"user_id"`
}

// StartConversationResponse is the body returned by POST /start-conversation.
type StartConversationResponse struct {
	Success        bool   `json:"success"`
	WelcomeMessage string `json:"welcome_message,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Success     bool         `json:"success"`
	Type        ResponseType `json:"type,omitempty"`
	Response    string       `json:"response,omitempty"`
	SearchQuery string       `json:"search_query,omitempty"`
	// Listings is nil when the reply carries no result set, and non-nil (possibly empty) when it does.
	Listings    []*Listing `json:"listings,omitempty"`
	Analysis    string     `json:"analysis,omitempty"`
	TotalFound  int        `json:"total_found,omitempty"`
	FollowUp    string     `json:"follow_up,omitempty"`
	SearchError string     `json:"search_error,omitempty"`
	// Timestamp is an optional RFC 3339 time for the reply.
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status               string `json:"status"`
	ScraperAvailable     bool   `json:"scraper_available"`
	AIProcessorAvailable bool   `json:"ai_processor_available"`
}

// Healthy returns true if the service reports itself healthy.
func (r *HealthResponse) Healthy() bool {
	return r.Status == "healthy"
}
