package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL + "/")
}

func TestSearchSendsQueryAndDecodesListings(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		request := &SearchRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(request))
		assert.Equal(t, "Honda Civic under $20,000", request.Query)

		w.Write([]byte(`{
			"success": true,
			"enhanced_query": "Honda Civic under 20000",
			"total_found": 2,
			"listings": [
				{"title": "2019 Honda Civic", "price": "$18,500", "mileage": "40,000 miles", "location": "Dallas, TX", "source": "cars.com", "url": "https://www.cars.com/1"},
				{"title": "2018 Honda Civic", "price": "$16,000", "mileage": "52,000 miles", "location": "Austin, TX", "source": "autotrader.com", "url": "N/A"}
			],
			"analysis": "1. Good\n\n2. Better"
		}`))
	})

	response, err := client.Search(context.Background(), &SearchRequest{Query: "Honda Civic under $20,000"})
	require.NoError(t, err)
	assert.Equal(t, "Honda Civic under 20000", response.EnhancedQuery)
	assert.Equal(t, 2, response.TotalFound)
	require.Len(t, response.Listings, 2)
	assert.True(t, response.Listings[0].HasLink())
	assert.False(t, response.Listings[1].HasLink())
}

func TestSearchFailureBodyOnServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "error": "An error occurred: boom"}`))
	})

	_, err := client.Search(context.Background(), &SearchRequest{Query: "civic"})
	require.Error(t, err)
	serviceErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "An error occurred: boom", serviceErr.Message)
	assert.Equal(t, http.StatusInternalServerError, serviceErr.StatusCode)
	assert.False(t, IsConnectivityError(err))
}

func TestSearchBadRequestWithoutSuccessField(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Query is required"}`))
	})

	_, err := client.Search(context.Background(), &SearchRequest{})
	serviceErr, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "Query is required", serviceErr.Message)
}

func TestMalformedBodyIsConnectivityError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := client.Chat(context.Background(), &ChatRequest{Message: "hi", UserID: "user_1"})
	require.Error(t, err)
	assert.True(t, IsConnectivityError(err))
}

func TestUnreachableServiceIsConnectivityError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.StartConversation(context.Background(), &StartConversationRequest{UserID: "user_1"})
	require.Error(t, err)
	assert.True(t, IsConnectivityError(err))
}

func TestTimeoutIsConnectivityError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, 50*time.Millisecond)
	_, err := client.Chat(context.Background(), &ChatRequest{Message: "hi", UserID: "user_1"})
	require.Error(t, err)
	assert.True(t, IsConnectivityError(err))
}

func TestChatDecodesSearchReply(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		request := &ChatRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(request))
		assert.Equal(t, "user_abc", request.UserID)
		w.Write([]byte(`{"success": true, "type": "search_request", "response": "Searching...", "listings": [], "follow_up": "Nothing yet"}`))
	})

	response, err := client.Chat(context.Background(), &ChatRequest{Message: "find a civic", UserID: "user_abc"})
	require.NoError(t, err)
	assert.Equal(t, ResponseTypeSearchRequest, response.Type)
	assert.NotNil(t, response.Listings)
	assert.Empty(t, response.Listings)
	assert.Equal(t, "Nothing yet", response.FollowUp)
}

func TestHealth(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status": "healthy", "scraper_available": true, "ai_processor_available": false}`))
	})

	response, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, response.Healthy())
	assert.True(t, response.ScraperAvailable)
	assert.False(t, response.AIProcessorAvailable)
}

func TestNewClientPanicsOnUnknownOption(t *testing.T) {
	assert.Panics(t, func() { NewClient("http://localhost", "nope") })
}
