package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/types"
)

func testEffective(baseURL string) config.Effective {
	return config.Effective{
		BaseURL: baseURL + "/",
		Actor:   config.Actor{Type: "agent", ID: "bot-1", Name: "Builder"},
	}
}

func TestDoSendsActorHeadersAndDecodesResponse(t *testing.T) {
	var received struct {
		method  string
		path    string
		query   string
		headers http.Header
		body    map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		received.method = request.Method
		received.path = request.URL.Path
		received.query = request.URL.RawQuery
		received.headers = request.Header.Clone()
		payload, _ := io.ReadAll(request.Body)
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &received.body)
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"id":"42","title":"Write docs","status":"open","priority":3}`))
	}))
	defer server.Close()

	client := New(testEffective(server.URL), WithRequestIDGenerator(func() string { return "req-1" }), WithUserAgent("ats/test"))

	var task types.Task
	doError := client.Do(context.Background(), http.MethodPost, "/orgs/acme/projects/web/tasks?x=1", map[string]any{"title": "Write docs"}, &task)
	require.NoError(t, doError)

	require.Equal(t, http.MethodPost, received.method)
	require.Equal(t, "/orgs/acme/projects/web/tasks", received.path)
	require.Equal(t, "x=1", received.query)
	require.Equal(t, "agent", received.headers.Get(ActorTypeHeader))
	require.Equal(t, "bot-1", received.headers.Get(ActorIDHeader))
	require.Equal(t, "Builder", received.headers.Get(ActorNameHeader))
	require.Equal(t, "req-1", received.headers.Get(RequestIDHeader))
	require.Equal(t, "ats/test", received.headers.Get("User-Agent"))
	require.Equal(t, "application/json", received.headers.Get("Content-Type"))
	require.Equal(t, "Write docs", received.body["title"])

	require.Equal(t, types.Task{ID: "42", Title: "Write docs", Status: "open", Priority: 3}, task)
}

func TestDoWithoutBodyOmitsContentType(t *testing.T) {
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		contentType = request.Header.Get("Content-Type")
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	task := types.Task{ID: "unchanged"}
	require.NoError(t, New(testEffective(server.URL)).Do(context.Background(), http.MethodDelete, "/tasks/1", nil, &task))
	require.Empty(t, contentType)
	require.Equal(t, "unchanged", task.ID)
}

func TestDoMapsErrorStatuses(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "error_envelope", status: http.StatusNotFound, body: `{"error":"task not found"}`, expected: "task not found"},
		{name: "message_envelope", status: http.StatusConflict, body: `{"message":"already claimed"}`, expected: "already claimed"},
		{name: "plain_text", status: http.StatusBadGateway, body: "upstream down\n", expected: "upstream down"},
		{name: "empty_body", status: http.StatusInternalServerError, body: "", expected: ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(testCase.status)
				_, _ = writer.Write([]byte(testCase.body))
			}))
			defer server.Close()

			doError := New(testEffective(server.URL)).Do(context.Background(), http.MethodGet, "/tasks/9", nil, nil)
			var statusError *StatusError
			require.True(t, errors.As(doError, &statusError), "expected StatusError, got %v", doError)
			require.Equal(t, testCase.status, statusError.StatusCode)
			require.Equal(t, testCase.expected, statusError.Message)
			require.Contains(t, doError.Error(), "/tasks/9")
		})
	}
}

func TestDoReportsDecodeFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte("not json"))
	}))
	defer server.Close()

	var task types.Task
	doError := New(testEffective(server.URL)).Do(context.Background(), http.MethodGet, "/tasks/1", nil, &task)
	require.Error(t, doError)
	require.Contains(t, doError.Error(), "decode response")
}

func TestWebSocketURL(t *testing.T) {
	testCases := []struct {
		baseURL  string
		expected string
	}{
		{baseURL: "http://localhost:3000", expected: "ws://localhost:3000/events"},
		{baseURL: "https://ats.example.com/api", expected: "wss://ats.example.com/api/events"},
		{baseURL: "wss://ats.example.com", expected: "wss://ats.example.com/events"},
	}
	for _, testCase := range testCases {
		client := New(config.Effective{BaseURL: testCase.baseURL})
		actual, urlError := client.WebSocketURL("/events")
		require.NoError(t, urlError)
		require.Equal(t, testCase.expected, actual)
	}

	_, unsupportedError := New(config.Effective{BaseURL: "ftp://example.com"}).WebSocketURL("/events")
	require.Error(t, unsupportedError)
}
