package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/view"
)

type fakeClient struct {
	mu       sync.Mutex
	requests []*agent.SearchRequest
	response *agent.SearchResponse
	err      error
	// block, when set, holds Search until it is closed.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeClient) Search(ctx context.Context, request *agent.SearchRequest) (*agent.SearchResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.response, f.err
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestSubmitBlankQueryNeverCallsService(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		client := &fakeClient{}
		controller := New(client)

		panel, err := controller.Submit(context.Background(), query)
		require.NoError(t, err)
		errorPanel, ok := panel.(*view.ErrorPanel)
		require.True(t, ok)
		assert.Equal(t, view.ErrorKindValidation, errorPanel.Kind)
		assert.Equal(t, "Please enter a search query", errorPanel.Message)
		assert.Zero(t, client.calls())
		assert.Equal(t, panel, controller.State().Panel)
	}
}

func TestSubmitExample(t *testing.T) {
	client := &fakeClient{response: &agent.SearchResponse{
		Success:       true,
		EnhancedQuery: "Honda Civic under $20,000",
		TotalFound:    2,
		Listings: []*agent.Listing{
			{Title: "2019 Honda Civic LX", URL: "https://www.cars.com/vehicledetail/1/"},
			{Title: "2017 Honda Civic EX", URL: "N/A"},
		},
		Analysis: "1. The LX is the best value.\n\n2. The EX has more features.",
	}}
	controller := New(client)

	panel, err := controller.Submit(context.Background(), "  Honda Civic under $20,000 ")
	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Equal(t, "Honda Civic under $20,000", client.requests[0].Query)

	resultPanel, ok := panel.(*view.ResultPanel)
	require.True(t, ok)
	assert.Equal(t, "Found 2 car listings", resultPanel.Count)
	require.Len(t, resultPanel.Cards, 2)
	assert.Equal(t, "2019 Honda Civic LX", resultPanel.Cards[0].Title)
	assert.True(t, resultPanel.Cards[0].Linked)
	assert.False(t, resultPanel.Cards[1].Linked)
	require.Len(t, resultPanel.Analysis, 2)
	assert.True(t, resultPanel.Analysis[0].Emphasized)
	assert.True(t, resultPanel.Analysis[1].Emphasized)

	state := controller.State()
	assert.False(t, state.Busy)
	assert.Equal(t, panel, state.Panel)
}

func TestSubmitEmptyListings(t *testing.T) {
	client := &fakeClient{response: &agent.SearchResponse{Success: true, EnhancedQuery: "unicorn", TotalFound: 0}}
	panel, err := New(client).Submit(context.Background(), "unicorn")
	require.NoError(t, err)
	resultPanel := panel.(*view.ResultPanel)
	assert.True(t, resultPanel.Empty())
	assert.Equal(t, "Found 0 car listings", resultPanel.Count)
}

func TestSubmitFailures(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		kind    view.ErrorKind
		message string
	}{
		{
			name:    "service error with message",
			err:     &agent.ServiceError{Message: "An error occurred: scraper down", StatusCode: 500},
			kind:    view.ErrorKindService,
			message: "An error occurred: scraper down",
		},
		{
			name:    "service error without message",
			err:     &agent.ServiceError{StatusCode: 500},
			kind:    view.ErrorKindService,
			message: "An error occurred while searching",
		},
		{
			name:    "connectivity",
			err:     &agent.ConnectivityError{Op: "POST /search", Err: errors.New("connection refused")},
			kind:    view.ErrorKindConnectivity,
			message: "Network error. Please check your connection and try again.",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			controller := New(&fakeClient{err: tc.err})
			panel, err := controller.Submit(context.Background(), "civic")
			require.NoError(t, err)
			errorPanel, ok := panel.(*view.ErrorPanel)
			require.True(t, ok)
			assert.Equal(t, tc.kind, errorPanel.Kind)
			assert.Equal(t, tc.message, errorPanel.Message)
			assert.False(t, controller.State().Busy)
		})
	}
}

func TestBusyIsReleasedOnEveryPath(t *testing.T) {
	for _, client := range []*fakeClient{
		{response: &agent.SearchResponse{Success: true}},
		{err: &agent.ServiceError{}},
		{err: &agent.ConnectivityError{Op: "POST /search", Err: errors.New("boom")}},
	} {
		var transitions []bool
		controller := New(client, WithBusyObserver(func(busy bool) { transitions = append(transitions, busy) }))
		_, err := controller.Submit(context.Background(), "civic")
		require.NoError(t, err)
		assert.Equal(t, []bool{true, false}, transitions)
		assert.False(t, controller.State().Busy)
	}
}

func TestSubmitWhileInFlight(t *testing.T) {
	client := &fakeClient{
		response: &agent.SearchResponse{Success: true},
		block:    make(chan struct{}),
		started:  make(chan struct{}),
	}
	controller := New(client)

	// Show an error panel first so we can see it is hidden while busy.
	_, err := controller.Submit(context.Background(), "")
	require.NoError(t, err)

	done := make(chan view.SearchPanel)
	go func() {
		panel, err := controller.Submit(context.Background(), "civic")
		assert.NoError(t, err)
		done <- panel
	}()
	<-client.started

	state := controller.State()
	assert.True(t, state.Busy)
	assert.Nil(t, state.Panel)

	_, err = controller.Submit(context.Background(), "camry")
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	_, err = controller.Submit(context.Background(), "")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(client.block)
	panel := <-done
	_, ok := panel.(*view.ResultPanel)
	assert.True(t, ok)
	assert.Equal(t, 1, client.calls())
}

func TestSubmitAgainstService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "error": "Agent not properly initialized"}`))
	}))
	defer server.Close()

	panel, err := New(agent.NewClient(server.URL)).Submit(context.Background(), "civic")
	require.NoError(t, err)
	assert.Equal(t, &view.ErrorPanel{Kind: view.ErrorKindService, Message: "Agent not properly initialized"}, panel)
}
