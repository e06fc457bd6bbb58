package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/output"
	"github.com/temirov/ats/internal/routes"
	"github.com/temirov/ats/internal/types"
)

const (
	messagesSegment     = "messages"
	messageListUsage    = "message list <task-id>"
	messageSendUsage    = "message send <task-id> <body...>"
	messageBodyOption   = "body"
	decodeMessagesError = "decode message list: %w"
)

type messageRequest struct {
	Body string `json:"body"`
}

func (commandHandlers *handlers) listMessages(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	taskID, argumentError := requireArgument(invocation, 0, "task id", messageListUsage)
	if argumentError != nil {
		return argumentError
	}
	path := routes.Build(effective, routes.Tasks, routes.Segments(taskID, messagesSegment))

	var raw json.RawMessage
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodGet, path, nil, &raw); requestError != nil {
		return requestError
	}
	var list types.MessageList
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "":
	case strings.HasPrefix(trimmed, "["):
		if decodeError := json.Unmarshal(raw, &list.Messages); decodeError != nil {
			return fmt.Errorf(decodeMessagesError, decodeError)
		}
	default:
		if decodeError := json.Unmarshal(raw, &list); decodeError != nil {
			return fmt.Errorf(decodeMessagesError, decodeError)
		}
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Messages(list)
	})
}

func (commandHandlers *handlers) sendMessage(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	taskID, argumentError := requireArgument(invocation, 0, "task id", messageSendUsage)
	if argumentError != nil {
		return argumentError
	}
	body, hasBody := invocation.Option(messageBodyOption)
	if !hasBody || strings.TrimSpace(body) == "" {
		body = strings.Join(invocation.Positional()[1:], " ")
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf(missingArgumentFormat, ErrMissingArgument, "message body", messageSendUsage)
	}

	var message types.Message
	path := routes.Build(effective, routes.Tasks, routes.Segments(taskID, messagesSegment))
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodPost, path, messageRequest{Body: body}, &message); requestError != nil {
		return requestError
	}
	if message.TaskID == "" {
		message.TaskID = taskID
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Message(message)
	})
}
