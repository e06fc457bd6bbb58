package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ats/internal/types"
)

const (
	httpScheme      = "http"
	httpsScheme     = "https"
	webSocketScheme = "ws"
	secureScheme    = "wss"

	watchURLFormat     = "build watch url for %s: %w"
	watchDialFormat    = "connect to %s: %w"
	watchReceiveFormat = "receive event: %w"
)

// Watcher is the narrow interface the watch command depends on.
type Watcher interface {
	Watch(ctx context.Context, path string, handle func(types.Event) error) error
}

// WebSocketURL converts the base URL and path into a ws or wss URL.
func (client *Client) WebSocketURL(path string) (string, error) {
	parsed, parseError := url.Parse(client.baseURL + path)
	if parseError != nil {
		return "", parseError
	}
	switch parsed.Scheme {
	case httpScheme:
		parsed.Scheme = webSocketScheme
	case httpsScheme:
		parsed.Scheme = secureScheme
	case webSocketScheme, secureScheme:
	default:
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	return parsed.String(), nil
}

// Watch streams events from path until ctx is cancelled, the server closes the
// connection, or handle returns an error. A cancelled context ends the watch without error.
func (client *Client) Watch(ctx context.Context, path string, handle func(types.Event) error) error {
	webSocketURL, urlError := client.WebSocketURL(path)
	if urlError != nil {
		return fmt.Errorf(watchURLFormat, path, urlError)
	}

	webSocketConfig, configError := websocket.NewConfig(webSocketURL, client.origin())
	if configError != nil {
		return fmt.Errorf(watchURLFormat, path, configError)
	}
	webSocketConfig.Header = http.Header{}
	requestID := client.newRequestID()
	client.applyHeaders(webSocketConfig.Header, requestID)

	client.logger.Debug("opening watch stream", zap.String("url", webSocketURL), zap.String("request_id", requestID))
	connection, dialError := webSocketConfig.DialContext(ctx)
	if dialError != nil {
		return fmt.Errorf(watchDialFormat, webSocketURL, dialError)
	}

	group, streamContext := errgroup.WithContext(ctx)
	events := make(chan types.Event)

	group.Go(func() error {
		<-streamContext.Done()
		_ = connection.Close()
		return nil
	})

	group.Go(func() error {
		defer close(events)
		for {
			var event types.Event
			if receiveError := websocket.JSON.Receive(connection, &event); receiveError != nil {
				if streamContext.Err() != nil {
					return streamContext.Err()
				}
				if errors.Is(receiveError, io.EOF) || errors.Is(receiveError, io.ErrUnexpectedEOF) {
					return errStreamClosed
				}
				return fmt.Errorf(watchReceiveFormat, receiveError)
			}
			select {
			case events <- event:
			case <-streamContext.Done():
				return streamContext.Err()
			}
		}
	})

	group.Go(func() error {
		for {
			select {
			case <-streamContext.Done():
				return streamContext.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if handleError := handle(event); handleError != nil {
					return handleError
				}
			}
		}
	})

	waitError := group.Wait()
	if waitError == nil || errors.Is(waitError, errStreamClosed) || errors.Is(waitError, context.Canceled) {
		client.logger.Debug("watch stream closed", zap.String("request_id", requestID))
		return nil
	}
	return waitError
}

// errStreamClosed ends the errgroup when the server closes the connection normally.
var errStreamClosed = errors.New("stream closed")

func (client *Client) origin() string {
	parsed, parseError := url.Parse(client.baseURL)
	if parseError != nil || parsed.Host == "" {
		return client.baseURL
	}
	scheme := parsed.Scheme
	if strings.HasPrefix(scheme, webSocketScheme) {
		scheme = strings.Replace(scheme, webSocketScheme, httpScheme, 1)
	}
	return scheme + "://" + parsed.Host
}

var _ Watcher = (*Client)(nil)
