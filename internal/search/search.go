package search

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/debug"
	"github.com/malonaz/carscout/internal/view"
)

const (
	emptyQueryMessage   = "Please enter a search query"
	serviceFallback     = "An error occurred while searching"
	connectivityMessage = "Network error. Please check your connection and try again."
)

var (
	log = debug.GetLogger()

	// ErrEmptyQuery is the validation failure for a blank query.
	ErrEmptyQuery = errors.New(emptyQueryMessage)
	// ErrSubmitInFlight is returned when a query is submitted while another one is running.
	ErrSubmitInFlight = errors.New("a search is already in flight")
)

// Client is the part of the service a search needs.
type Client interface {
	Search(ctx context.Context, request *agent.SearchRequest) (*agent.SearchResponse, error)
}

// Controller turns a query into exactly one visible panel.
type Controller struct {
	client Client
	onBusy func(busy bool)

	mu    sync.Mutex
	busy  bool
	panel view.SearchPanel
}

// Option configures a Controller.
type Option func(*Controller)

// WithBusyObserver registers a function called with true when a request starts and false when it ends.
func WithBusyObserver(fn func(busy bool)) Option {
	return func(c *Controller) { c.onBusy = fn }
}

// New instantiates a search controller.
func New(client Client, options ...Option) *Controller {
	c := &Controller{client: client}
	for _, option := range options {
		option(c)
	}
	return c
}

// State returns what the surface should display.
func (c *Controller) State() view.SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.SearchState{Busy: c.busy, Panel: c.panel}
}

// Submit runs one search and returns the panel to show.
// The only error is ErrSubmitInFlight, in which case the visible panel is unchanged.
func (c *Controller) Submit(ctx context.Context, rawQuery string) (view.SearchPanel, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		panel := &view.ErrorPanel{Kind: view.ErrorKindValidation, Message: ErrEmptyQuery.Error()}
		if err := c.show(panel); err != nil {
			return nil, err
		}
		return panel, nil
	}

	if err := c.acquire(); err != nil {
		return nil, err
	}
	var panel view.SearchPanel
	defer func() { c.release(panel) }()

	response, err := c.client.Search(ctx, &agent.SearchRequest{Query: query})
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		panel = errorPanel(err)
		return panel, nil
	}
	log.Info("search completed", "query", query, "total_found", response.TotalFound)
	panel = view.NewResultPanel(response)
	return panel, nil
}

// show replaces the visible panel without a request.
func (c *Controller) show(panel view.SearchPanel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrSubmitInFlight
	}
	c.panel = panel
	return nil
}

// acquire marks the controller busy and hides both panels.
func (c *Controller) acquire() error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.busy = true
	c.panel = nil
	c.mu.Unlock()

	if c.onBusy != nil {
		c.onBusy(true)
	}
	return nil
}

// release clears the busy flag and shows the settled panel.
// A nil panel (a panic unwinding through Submit) becomes a connectivity error panel.
func (c *Controller) release(panel view.SearchPanel) {
	if panel == nil {
		panel = &view.ErrorPanel{Kind: view.ErrorKindConnectivity, Message: connectivityMessage}
	}
	c.mu.Lock()
	c.busy = false
	c.panel = panel
	c.mu.Unlock()

	if c.onBusy != nil {
		c.onBusy(false)
	}
}

func errorPanel(err error) *view.ErrorPanel {
	if serviceErr, ok := agent.IsServiceError(err); ok {
		message := serviceErr.Message
		if message == "" {
			message = serviceFallback
		}
		return &view.ErrorPanel{Kind: view.ErrorKindService, Message: message}
	}
	return &view.ErrorPanel{Kind: view.ErrorKindConnectivity, Message: connectivityMessage}
}
