package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/debug"
	"github.com/malonaz/carscout/internal/view"
)

// DefaultFollowUpDelay separates a search reply from its follow-up message.
const DefaultFollowUpDelay = time.Second

const (
	fallbackGreeting    = "Hi! I'm your car buying assistant. How can I help you find your perfect car?"
	serviceApology      = "I'm sorry, I encountered an error. Please try again."
	connectivityApology = "I'm having trouble connecting. Please check your internet connection and try again."
)

var (
	log = debug.GetLogger()

	// ErrEmptyMessage is the validation failure for a blank message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned when a message is sent while another one is in flight.
	ErrBusy = errors.New("a message is already being sent")
	// ErrNotStarted is returned when a message is sent before the first session started.
	ErrNotStarted = errors.New("conversation not started")
	// ErrExchangeDone is returned when an exchange is completed twice.
	ErrExchangeDone = errors.New("exchange already completed")
	// ErrEmptyReply is reported when a successful reply carries nothing to show.
	ErrEmptyReply = errors.New("reply has no content")
)

// SessionInitError reports a failed session start. The fallback greeting was shown instead.
type SessionInitError struct {
	SessionID string
	Err       error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("starting conversation %s: %v", e.SessionID, e.Err)
}

func (e *SessionInitError) Unwrap() error { return e.Err }

// Client is the part of the service a conversation needs.
type Client interface {
	StartConversation(ctx context.Context, request *agent.StartConversationRequest) (*agent.StartConversationResponse, error)
	Chat(ctx context.Context, request *agent.ChatRequest) (*agent.ChatResponse, error)
}

// State of the controller. Sending is entered only from Idle.
type State int

const (
	StateIdle State = iota
	StateSending
	StateRenderingSuccess
	StateRenderingError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateRenderingSuccess:
		return "rendering_success"
	case StateRenderingError:
		return "rendering_error"
	}
	return "unknown"
}

// Exchange is a message whose local echo is in the transcript and whose reply is pending.
type Exchange struct {
	sessionID string
	message   string
	done      bool
	// Turn is the user turn that was appended.
	Turn view.Turn
}

// Deferred is an action a surface must apply with Deliver once After has elapsed.
type Deferred struct {
	After     time.Duration
	SessionID string
	// Turn, if set, is appended as an assistant turn.
	Turn *view.Turn
	// ShowQuickActions re-shows the quick action shortcuts.
	ShowQuickActions bool
}

// Reply is what a surface renders after a session start or a completed exchange.
type Reply struct {
	SessionID string
	// Turns were appended to the transcript, in order.
	Turns []view.Turn
	// Results is set when the reply carries listings to show over the transcript.
	Results  *view.ResultsOverlay
	Deferred []Deferred
	// Err is the failure that was turned into a user-visible turn, if any.
	Err error
	// Stale is true when the session was replaced while the request was in flight. Nothing was appended.
	Stale bool
}

// Controller owns one conversation surface: the session, its transcript and the busy flag.
type Controller struct {
	client        Client
	ids           *sessionIDs
	now           func() time.Time
	followUpDelay time.Duration
	generateID    func() string

	mu           sync.Mutex
	sessionID    string
	transcript   []view.Turn
	state        State
	typing       bool
	quickActions bool
	// starting is set until the welcome turn of the current session is appended.
	starting bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSessionIDGenerator sets the source of candidate session identifiers.
func WithSessionIDGenerator(generate func() string) Option {
	return func(c *Controller) { c.generateID = generate }
}

// WithFollowUpDelay sets the delay of deferred follow-up turns and quick actions.
func WithFollowUpDelay(delay time.Duration) Option {
	return func(c *Controller) { c.followUpDelay = delay }
}

// New instantiates a conversation controller. Call Start before sending.
func New(client Client, options ...Option) *Controller {
	c := &Controller{
		client:        client,
		now:           time.Now,
		followUpDelay: DefaultFollowUpDelay,
	}
	for _, option := range options {
		option(c)
	}
	c.ids = newSessionIDs(c.generateID)
	return c
}

// SessionID returns the current session identifier.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Transcript returns a copy of the current transcript.
func (c *Controller) Transcript() []view.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	transcript := make([]view.Turn, len(c.transcript))
	copy(transcript, c.transcript)
	return transcript
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy returns true while a message is in flight.
func (c *Controller) Busy() bool {
	return c.State() != StateIdle
}

// Typing returns true while the typing indicator should be shown.
func (c *Controller) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// QuickActionsVisible returns true while the quick action shortcuts should be shown.
func (c *Controller) QuickActionsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quickActions
}

// Start begins a fresh session: new identifier, empty transcript, welcome turn.
func (c *Controller) Start(ctx context.Context) *Reply {
	c.mu.Lock()
	sessionID := c.ids.next()
	c.sessionID = sessionID
	c.transcript = nil
	c.quickActions = true
	c.starting = true
	c.mu.Unlock()
	log.Info("starting conversation", "session_id", sessionID)

	content, err := c.welcome(ctx, sessionID)
	reply := &Reply{SessionID: sessionID, Err: err}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != sessionID {
		reply.Stale = true
		return reply
	}
	c.starting = false
	reply.Turns = append(reply.Turns, c.appendLocked(view.RoleAssistant, content, time.Time{}))
	return reply
}

// NewChat discards the current session and starts another one.
func (c *Controller) NewChat(ctx context.Context) *Reply {
	return c.Start(ctx)
}

func (c *Controller) welcome(ctx context.Context, sessionID string) (string, error) {
	response, err := c.client.StartConversation(ctx, &agent.StartConversationRequest{UserID: sessionID})
	if err != nil {
		log.Error("starting conversation", "session_id", sessionID, "error", err)
		return fallbackGreeting, &SessionInitError{SessionID: sessionID, Err: err}
	}
	if strings.TrimSpace(response.WelcomeMessage) == "" {
		return fallbackGreeting, &SessionInitError{SessionID: sessionID, Err: errors.New("empty welcome message")}
	}
	return response.WelcomeMessage, nil
}

// Begin appends the local echo of a message and enters Sending.
// It fails with ErrEmptyMessage or ErrBusy without touching the transcript.
// A session whose welcome turn is not yet appended is busy.
func (c *Controller) Begin(rawMessage string) (*Exchange, error) {
	message := strings.TrimSpace(rawMessage)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return nil, ErrBusy
	}
	if c.sessionID == "" {
		return nil, ErrNotStarted
	}
	if c.starting {
		return nil, ErrBusy
	}
	turn := c.appendLocked(view.RoleUser, message, time.Time{})
	c.state = StateSending
	c.typing = true
	c.quickActions = false
	return &Exchange{sessionID: c.sessionID, message: message, Turn: turn}, nil
}

// Complete sends the exchange's message and appends the reply.
// The typing indicator and busy flag are cleared whatever the outcome.
func (c *Controller) Complete(ctx context.Context, exchange *Exchange) *Reply {
	c.mu.Lock()
	if exchange.done {
		c.mu.Unlock()
		return &Reply{SessionID: exchange.sessionID, Err: ErrExchangeDone}
	}
	exchange.done = true
	c.mu.Unlock()
	defer c.release()

	request := &agent.ChatRequest{Message: exchange.message, UserID: exchange.sessionID}
	response, err := c.client.Chat(ctx, request)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing = false
	reply := &Reply{SessionID: exchange.sessionID}
	stale := c.sessionID != exchange.sessionID

	if err != nil {
		log.Error("sending message", "session_id", exchange.sessionID, "error", err)
		c.state = StateRenderingError
		reply.Err = err
		if stale {
			reply.Stale = true
			return reply
		}
		apology := connectivityApology
		if _, ok := agent.IsServiceError(err); ok {
			apology = serviceApology
		}
		reply.Turns = append(reply.Turns, c.appendLocked(view.RoleAssistant, apology, time.Time{}))
		return reply
	}

	c.state = StateRenderingSuccess
	log.Info("message answered", "session_id", exchange.sessionID, "type", response.Type)
	if stale {
		reply.Stale = true
		return reply
	}

	timestamp := parseTimestamp(response.Timestamp)
	if response.Response != "" {
		reply.Turns = append(reply.Turns, c.appendLocked(view.RoleAssistant, response.Response, timestamp))
	}

	if response.Type == agent.ResponseTypeSearchRequest && response.Listings != nil {
		reply.Results = view.NewResultsOverlay(response)
		if response.FollowUp != "" {
			reply.Deferred = append(reply.Deferred, Deferred{
				After:     c.followUpDelay,
				SessionID: exchange.sessionID,
				Turn:      &view.Turn{Role: view.RoleAssistant, Content: response.FollowUp},
			})
		}
	} else if response.SearchError != "" {
		reply.Turns = append(reply.Turns, c.appendLocked(view.RoleAssistant, response.SearchError, timestamp))
	}

	if len(reply.Turns) == 0 && reply.Results == nil && len(reply.Deferred) == 0 {
		log.Warn("reply has no content", "session_id", exchange.sessionID, "type", response.Type)
		c.state = StateRenderingError
		reply.Err = ErrEmptyReply
		reply.Turns = append(reply.Turns, c.appendLocked(view.RoleAssistant, serviceApology, time.Time{}))
		return reply
	}

	if response.Type == agent.ResponseTypeConversation {
		reply.Deferred = append(reply.Deferred, Deferred{
			After:            c.followUpDelay,
			SessionID:        exchange.sessionID,
			ShowQuickActions: true,
		})
	}
	return reply
}

// Send runs Begin and Complete in sequence.
func (c *Controller) Send(ctx context.Context, rawMessage string) (*Reply, error) {
	exchange, err := c.Begin(rawMessage)
	if err != nil {
		return nil, err
	}
	return c.Complete(ctx, exchange), nil
}

// Deliver applies a deferred action. It returns false if the session changed since it was scheduled.
func (c *Controller) Deliver(deferred Deferred) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if deferred.SessionID != c.sessionID {
		return false
	}
	if deferred.Turn != nil {
		c.appendLocked(deferred.Turn.Role, deferred.Turn.Content, deferred.Turn.Timestamp)
	}
	if deferred.ShowQuickActions && c.state == StateIdle {
		c.quickActions = true
	}
	return true
}

func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing = false
	c.state = StateIdle
}

// appendLocked appends a turn, stamping it with the clock when timestamp is zero.
func (c *Controller) appendLocked(role view.Role, content string, timestamp time.Time) view.Turn {
	if timestamp.IsZero() {
		timestamp = c.now()
	}
	turn := view.Turn{Role: role, Content: content, Timestamp: timestamp}
	c.transcript = append(c.transcript, turn)
	return turn
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	timestamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return timestamp
}
