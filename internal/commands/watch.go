package commands

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/routes"
	"github.com/temirov/ats/internal/types"
)

const (
	watchUsage         = "watch [--events type,type]"
	eventsOption       = "events"
	eventsParameter    = "events"
	eventTypeSeparator = ","
)

func (commandHandlers *handlers) watch(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	wanted := eventTypes(invocation)
	query := url.Values{}
	if len(wanted) > 0 {
		query.Set(eventsParameter, strings.Join(sortedEventTypes(wanted), eventTypeSeparator))
	}
	path := routes.WithQuery(routes.Build(effective, routes.Events, ""), query)

	renderer, rendererError := commandHandlers.renderer(commandHandlers.dependencies.Output, effective.Format, commandHandlers.dependencies.Styled)
	if rendererError != nil {
		return rendererError
	}

	commandHandlers.dependencies.Logger.Info("watching events", zap.String("path", path))
	return commandHandlers.service(effective).Watch(ctx, path, func(event types.Event) error {
		if len(wanted) > 0 {
			if _, matches := wanted[event.Type]; !matches {
				return nil
			}
		}
		return renderer.Event(event)
	})
}

// eventTypes returns the set named by --events, or nil when every type is wanted.
func eventTypes(invocation arguments.Invocation) map[string]struct{} {
	value, present := invocation.Option(eventsOption)
	if !present {
		return nil
	}
	wanted := make(map[string]struct{})
	for _, eventType := range strings.Split(value, eventTypeSeparator) {
		if trimmed := strings.TrimSpace(eventType); trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	return wanted
}

func sortedEventTypes(wanted map[string]struct{}) []string {
	names := make([]string, 0, len(wanted))
	for name := range wanted {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
