package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/configuration"
)

type fakeClient struct {
	mu        sync.Mutex
	search    *agent.SearchResponse
	searchErr error
	chat      *agent.ChatResponse
	chatErr   error
	health    *agent.HealthResponse
	started   int
	startErr  error
}

func (f *fakeClient) Search(ctx context.Context, request *agent.SearchRequest) (*agent.SearchResponse, error) {
	return f.search, f.searchErr
}

func (f *fakeClient) StartConversation(ctx context.Context, request *agent.StartConversationRequest) (*agent.StartConversationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &agent.StartConversationResponse{Success: true, WelcomeMessage: "Hello <driver>!\nHow can I help?"}, nil
}

func (f *fakeClient) Chat(ctx context.Context, request *agent.ChatRequest) (*agent.ChatResponse, error) {
	return f.chat, f.chatErr
}

func (f *fakeClient) Health(ctx context.Context) (*agent.HealthResponse, error) {
	return f.health, nil
}

func newTestServer(t *testing.T, client *fakeClient) (*Server, http.Handler) {
	t.Helper()
	config := configuration.Default()
	config.Web.MaxSessions = 2
	server, err := New(config, client)
	require.NoError(t, err)
	return server, server.Handler()
}

func post(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestSearchRendersResults(t *testing.T) {
	_, handler := newTestServer(t, &fakeClient{search: &agent.SearchResponse{
		Success:       true,
		EnhancedQuery: "Honda Civic, price < $20,000",
		TotalFound:    2,
		Listings: []*agent.Listing{
			{Title: "2019 Honda Civic LX", Price: "$18,500", URL: "https://example.com/1"},
			{Title: "2018 Honda Civic EX", Price: "$17,900", URL: "N/A"},
		},
		Analysis: "Solid options.\n\n1. Best pick: LX",
	}})

	resp := post(handler, "/search", url.Values{"query": {"civic under 20k"}})
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Found 2 car listings")
	assert.Contains(t, body, "&#34;Honda Civic, price &lt; $20,000&#34;")
	assert.Equal(t, 1, strings.Count(body, `target="_blank" rel="noopener noreferrer"`))
	assert.Contains(t, body, `href="https://example.com/1"`)
	assert.Contains(t, body, `<p class="emphasized">1. Best pick: LX</p>`)
}

func TestSearchErrors(t *testing.T) {
	_, handler := newTestServer(t, &fakeClient{searchErr: &agent.ServiceError{Message: "Scraper unavailable", StatusCode: 500}})

	resp := post(handler, "/search", url.Values{"query": {"   "}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Please enter a search query")

	resp = post(handler, "/search", url.Values{"query": {"civic"}})
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), "Scraper unavailable")
	assert.NotContains(t, resp.Body.String(), "Found")
}

func TestChatFlow(t *testing.T) {
	client := &fakeClient{chat: &agent.ChatResponse{
		Success:  true,
		Type:     agent.ResponseTypeSearchRequest,
		Response: "Here you go.",
		Listings: []*agent.Listing{{Title: "2020 Camry", URL: "https://example.com/camry"}},
		FollowUp: "Anything else?",
	}}
	server, handler := newTestServer(t, client)

	resp := get(handler, "/chat")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Hello &lt;driver&gt;!<br>How can I help?")
	assert.Contains(t, body, `value="Find me a Honda Civic under $20,000"`)
	require.Equal(t, 1, server.sessions.len())

	var sessionID string
	for id := range server.sessions.sessions {
		sessionID = id
	}
	resp = post(handler, "/chat/"+sessionID+"/messages", url.Values{"message": {"camry please"}})
	require.Equal(t, http.StatusOK, resp.Code)
	body = resp.Body.String()
	assert.Contains(t, body, "camry please")
	assert.Contains(t, body, "Here you go.")
	assert.Contains(t, body, "Found 1 car listing")
	assert.Contains(t, body, "Anything else?")
	assert.NotContains(t, body, `value="Find me a Honda Civic under $20,000"`)

	resp = post(handler, "/chat/"+sessionID+"/new", nil)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	location := resp.Header().Get("Location")
	assert.NotEqual(t, "/chat/"+sessionID, location)

	resp = get(handler, location)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "camry please")

	resp = get(handler, "/chat/"+sessionID)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
}

func TestChatFailureShowsApology(t *testing.T) {
	client := &fakeClient{chatErr: &agent.ConnectivityError{Op: "chat", Err: context.DeadlineExceeded}}
	server, handler := newTestServer(t, client)
	get(handler, "/chat")

	var sessionID string
	for id := range server.sessions.sessions {
		sessionID = id
	}
	resp := post(handler, "/chat/"+sessionID+"/messages", url.Values{"message": {"hi"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "I&#39;m having trouble connecting.")
}

func TestNewChatFailureRedirectsWithNotice(t *testing.T) {
	client := &fakeClient{}
	server, handler := newTestServer(t, client)
	get(handler, "/chat")

	var sessionID string
	for id := range server.sessions.sessions {
		sessionID = id
	}
	client.startErr = &agent.ConnectivityError{Op: "start", Err: context.DeadlineExceeded}

	resp := post(handler, "/chat/"+sessionID+"/new", nil)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	location := resp.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/chat/"))
	assert.True(t, strings.HasSuffix(location, "?"+noticeParam))
	assert.NotContains(t, location, sessionID)

	resp = get(handler, location)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "The assistant is unavailable right now")

	resp = get(handler, strings.TrimSuffix(location, "?"+noticeParam))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "The assistant is unavailable right now")
	assert.Equal(t, 2, client.started)
}

func TestSessionsAreBounded(t *testing.T) {
	client := &fakeClient{}
	server, handler := newTestServer(t, client)
	for i := 0; i < 5; i++ {
		get(handler, "/chat")
	}
	assert.Equal(t, 5, client.started)
	assert.Equal(t, 2, server.sessions.len())
}

func TestHealthz(t *testing.T) {
	client := &fakeClient{health: &agent.HealthResponse{Status: "healthy", ScraperAvailable: true, AIProcessorAvailable: true}}
	_, handler := newTestServer(t, client)

	resp := get(handler, "/healthz")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"healthy","scraper_available":true,"ai_processor_available":true}`, resp.Body.String())

	client.health = &agent.HealthResponse{Status: "degraded", ScraperAvailable: false, AIProcessorAvailable: true}
	resp = get(handler, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
