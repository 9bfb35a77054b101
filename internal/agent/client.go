package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/malonaz/carscout/internal/debug"
)

const (
	searchPath            = "/search"
	startConversationPath = "/start-conversation"
	chatPath              = "/chat"
	healthPath            = "/health"

	contentType = "application/json"
)

var log = debug.GetLogger()

// Client for the car search service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates a client for the service at baseURL.
// Accepted options are a *http.Client and a time.Duration request timeout (0 disables it).
func NewClient(baseURL string, options ...any) *Client {
	httpClient := &http.Client{}
	var timeout *time.Duration
	for _, option := range options {
		switch t := option.(type) {
		case *http.Client:
			httpClient = t
		case time.Duration:
			timeout = &t
		default:
			panic(fmt.Errorf("unknown option type %T", option))
		}
	}
	if timeout != nil {
		clone := *httpClient
		clone.Timeout = *timeout
		httpClient = &clone
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the service url this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Search runs a one-shot search.
func (c *Client) Search(ctx context.Context, request *SearchRequest) (*SearchResponse, error) {
	response := &SearchResponse{}
	statusCode, err := c.do(ctx, http.MethodPost, searchPath, request, response)
	if err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ServiceError{Message: response.Error, StatusCode: statusCode}
	}
	return response, nil
}

// StartConversation opens a conversation for the given user id.
func (c *Client) StartConversation(ctx context.Context, request *StartConversationRequest) (*StartConversationResponse, error) {
	response := &StartConversationResponse{}
	statusCode, err := c.do(ctx, http.MethodPost, startConversationPath, request, response)
	if err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ServiceError{Message: response.Error, StatusCode: statusCode}
	}
	return response, nil
}

// Chat sends one conversational message.
func (c *Client) Chat(ctx context.Context, request *ChatRequest) (*ChatResponse, error) {
	response := &ChatResponse{}
	statusCode, err := c.do(ctx, http.MethodPost, chatPath, request, response)
	if err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ServiceError{Message: response.Error, StatusCode: statusCode}
	}
	return response, nil
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	response := &HealthResponse{}
	statusCode, err := c.do(ctx, http.MethodGet, healthPath, nil, response)
	if err != nil {
		return nil, err
	}
	if statusCode != http.StatusOK {
		return nil, &ServiceError{Message: response.Status, StatusCode: statusCode}
	}
	return response, nil
}

// do sends a request and decodes the JSON body into response, whatever the status code:
// the service reports failures as JSON bodies on 4xx/5xx.
func (c *Client) do(ctx context.Context, method, path string, request, response any) (int, error) {
	op := method + " " + path
	var body bytes.Buffer
	if request != nil {
		if err := json.NewEncoder(&body).Encode(request); err != nil {
			return 0, errors.Wrap(err, "encoding request")
		}
	}

	httpRequest, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return 0, errors.Wrap(err, "creating request")
	}
	httpRequest.Header.Set("Content-Type", contentType)
	httpRequest.Header.Set("Accept", contentType)

	start := time.Now()
	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		log.Error("request failed", "op", op, "error", err)
		return 0, &ConnectivityError{Op: op, Err: err}
	}
	defer httpResponse.Body.Close()

	if err := json.NewDecoder(httpResponse.Body).Decode(response); err != nil {
		log.Error("decoding response", "op", op, "status", httpResponse.StatusCode, "error", err)
		return httpResponse.StatusCode, &ConnectivityError{Op: op, Err: errors.Wrap(err, "decoding response")}
	}
	log.Info("request completed", "op", op, "status", httpResponse.StatusCode, "duration", time.Since(start))
	return httpResponse.StatusCode, nil
}
