// Package client performs the HTTP and WebSocket calls the command handlers need.
// It adds the actor identity and a request id to every call and maps error statuses
// to StatusError. It never retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/ats/internal/config"
)

// Header names sent with every request.
const (
	ActorTypeHeader   = "X-Actor-Type"
	ActorIDHeader     = "X-Actor-Id"
	ActorNameHeader   = "X-Actor-Name"
	RequestIDHeader   = "X-Request-Id"
	contentTypeHeader = "Content-Type"
	acceptHeader      = "Accept"
	userAgentHeader   = "User-Agent"
	jsonContentType   = "application/json"
)

// DefaultTimeout bounds every HTTP call made through a Client.
const DefaultTimeout = 30 * time.Second

const (
	requestFailedFormat  = "%s %s: %w"
	encodeBodyFormat     = "encode request body: %w"
	decodeBodyFormat     = "decode response from %s: %w"
	readBodyFormat       = "read response from %s: %w"
	maximumMessageLength = 512
)

// StatusError is returned when the service answers with a status of 400 or above.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (statusError *StatusError) Error() string {
	if statusError.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", statusError.Method, statusError.Path, statusError.StatusCode, http.StatusText(statusError.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", statusError.Method, statusError.Path, statusError.StatusCode, statusError.Message)
}

// Requester is the narrow interface command handlers depend on.
type Requester interface {
	Do(ctx context.Context, method string, path string, body any, out any) error
}

// Client talks to one service base URL on behalf of one actor.
type Client struct {
	baseURL      string
	actor        config.Actor
	userAgent    string
	httpClient   *http.Client
	logger       *zap.Logger
	newRequestID func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithRequestIDGenerator replaces the uuid-based request id generator.
func WithRequestIDGenerator(generator func() string) Option {
	return func(client *Client) {
		client.newRequestID = generator
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(client *Client) {
		client.userAgent = userAgent
	}
}

// New builds a Client from the effective configuration.
func New(effective config.Effective, options ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(effective.BaseURL, "/"),
		actor:        effective.Actor,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		logger:       zap.NewNop(),
		newRequestID: uuid.NewString,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Do sends body as JSON to path and decodes the JSON response into out. A nil body sends
// no payload; a nil out, an empty response, or 204 leaves out untouched.
func (client *Client) Do(ctx context.Context, method string, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, encodeError := json.Marshal(body)
		if encodeError != nil {
			return fmt.Errorf(encodeBodyFormat, encodeError)
		}
		payload = bytes.NewReader(encoded)
	}

	request, requestError := http.NewRequestWithContext(ctx, method, client.baseURL+path, payload)
	if requestError != nil {
		return fmt.Errorf(requestFailedFormat, method, path, requestError)
	}
	requestID := client.newRequestID()
	client.applyHeaders(request.Header, requestID)
	if body != nil {
		request.Header.Set(contentTypeHeader, jsonContentType)
	}

	client.logger.Debug("sending request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return fmt.Errorf(requestFailedFormat, method, path, responseError)
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return fmt.Errorf(readBodyFormat, path, readError)
	}

	client.logger.Debug("received response",
		zap.String("request_id", requestID),
		zap.Int("status", response.StatusCode),
		zap.Int("bytes", len(responseBody)),
	)

	if response.StatusCode >= http.StatusBadRequest {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Message:    errorMessage(responseBody),
		}
	}

	if out == nil || response.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(responseBody)) == 0 {
		return nil
	}
	if decodeError := json.Unmarshal(responseBody, out); decodeError != nil {
		return fmt.Errorf(decodeBodyFormat, path, decodeError)
	}
	return nil
}

func (client *Client) applyHeaders(header http.Header, requestID string) {
	header.Set(acceptHeader, jsonContentType)
	header.Set(RequestIDHeader, requestID)
	if client.userAgent != "" {
		header.Set(userAgentHeader, client.userAgent)
	}
	if client.actor.Type != "" {
		header.Set(ActorTypeHeader, client.actor.Type)
	}
	if client.actor.ID != "" {
		header.Set(ActorIDHeader, client.actor.ID)
	}
	if client.actor.Name != "" {
		header.Set(ActorNameHeader, client.actor.Name)
	}
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error response and
// falls back to the trimmed body text.
func errorMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maximumMessageLength {
		text = text[:maximumMessageLength]
	}
	return text
}

var _ Requester = (*Client)(nil)
