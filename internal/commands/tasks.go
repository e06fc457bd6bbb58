package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/dispatch"
	"github.com/temirov/ats/internal/filters"
	"github.com/temirov/ats/internal/output"
	"github.com/temirov/ats/internal/routes"
	"github.com/temirov/ats/internal/types"
)

var (
	listOptionsUsage = "[--status S] [--assignee A] [--since T] [--until T] [--priority P] [--sort " +
		strings.Join(filters.SortFieldAliases(), "|") + "] [--order asc|desc] [--limit N]"
	listUsage = "list " + listOptionsUsage
)

const (
	showUsage        = "show <id>"
	createUsage      = "create <title...> [--description|-d TEXT] [--priority N] [--type T] [--assignee A]"
	updateUsage      = "update <id> [--title T] [--description TEXT] [--priority N] [--status S] [--assignee A]"
	deleteUsage      = "delete <id>"

	titleOption       = "title"
	descriptionOption = "description"
	descriptionShort  = "d"
	typeOption        = "type"
	statusOption      = "status"
	assigneeOption    = "assignee"
	priorityOption    = "priority"
	resultOption      = "result"
	reasonOption      = "reason"

	actionClaim    = "claim"
	actionRelease  = "release"
	actionComplete = "complete"
	actionFail     = "fail"
	actionCancel   = "cancel"

	deletedTaskFormat   = "Deleted task %s"
	exactPriorityDetail = "use a single value from 1 to 10"
)

// ErrNoChanges is returned by update when no field option was given.
var ErrNoChanges = errors.New("nothing to update")

type taskRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
}

type actionRequest struct {
	Result string `json:"result,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (commandHandlers *handlers) listTasks(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	query, queryError := filters.TaskQuery(invocation, commandHandlers.dependencies.Now())
	if queryError != nil {
		return queryError
	}
	path := routes.WithQuery(routes.Build(effective, routes.Tasks, ""), query)

	var raw json.RawMessage
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodGet, path, nil, &raw); requestError != nil {
		return requestError
	}
	list, decodeError := decodeTaskList(raw)
	if decodeError != nil {
		return decodeError
	}
	commandHandlers.dependencies.Logger.Debug("listed tasks", zap.Int("count", len(list.Tasks)), zap.Int("total", list.Total))
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Tasks(list)
	})
}

// decodeTaskList accepts both the {"tasks": [...]} envelope and a bare array.
func decodeTaskList(raw json.RawMessage) (types.TaskList, error) {
	var list types.TaskList
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return list, nil
	}
	if trimmed[0] == '[' {
		if decodeError := json.Unmarshal(trimmed, &list.Tasks); decodeError != nil {
			return list, fmt.Errorf("decode task list: %w", decodeError)
		}
		return list, nil
	}
	if decodeError := json.Unmarshal(trimmed, &list); decodeError != nil {
		return list, fmt.Errorf("decode task list: %w", decodeError)
	}
	return list, nil
}

func (commandHandlers *handlers) showTask(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	taskID, argumentError := requireArgument(invocation, 0, "task id", showUsage)
	if argumentError != nil {
		return argumentError
	}
	var task types.Task
	path := routes.Build(effective, routes.Tasks, routes.Segments(taskID))
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodGet, path, nil, &task); requestError != nil {
		return requestError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Task(task)
	})
}

func (commandHandlers *handlers) createTask(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	title, hasTitle := invocation.Option(titleOption)
	if !hasTitle || strings.TrimSpace(title) == "" {
		title = strings.Join(invocation.Positional(), " ")
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf(missingArgumentFormat, ErrMissingArgument, "title", createUsage)
	}

	request := taskRequest{Title: title}
	request.Description, _ = invocation.OptionValue(descriptionOption, descriptionShort)
	request.Type, _ = invocation.Option(typeOption)
	request.Assignee, _ = invocation.Option(assigneeOption)
	if priorityValue, present := invocation.Option(priorityOption); present {
		priority, priorityError := exactPriority(priorityValue)
		if priorityError != nil {
			return priorityError
		}
		request.Priority = priority
	}

	var task types.Task
	path := routes.Build(effective, routes.Tasks, "")
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodPost, path, request, &task); requestError != nil {
		return requestError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Task(task)
	})
}

func (commandHandlers *handlers) updateTask(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	taskID, argumentError := requireArgument(invocation, 0, "task id", updateUsage)
	if argumentError != nil {
		return argumentError
	}

	var request taskRequest
	request.Title, _ = invocation.Option(titleOption)
	request.Description, _ = invocation.OptionValue(descriptionOption, descriptionShort)
	request.Status, _ = invocation.Option(statusOption)
	request.Assignee, _ = invocation.Option(assigneeOption)
	request.Type, _ = invocation.Option(typeOption)
	if priorityValue, present := invocation.Option(priorityOption); present {
		priority, priorityError := exactPriority(priorityValue)
		if priorityError != nil {
			return priorityError
		}
		request.Priority = priority
	}
	if request == (taskRequest{}) {
		return fmt.Errorf("%w: pass at least one of --title, --description, --priority, --status, --assignee, --type", ErrNoChanges)
	}

	var task types.Task
	path := routes.Build(effective, routes.Tasks, routes.Segments(taskID))
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodPatch, path, request, &task); requestError != nil {
		return requestError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Task(task)
	})
}

func (commandHandlers *handlers) deleteTask(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	taskID, argumentError := requireArgument(invocation, 0, "task id", deleteUsage)
	if argumentError != nil {
		return argumentError
	}
	path := routes.Build(effective, routes.Tasks, routes.Segments(taskID))
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodDelete, path, nil, nil); requestError != nil {
		return requestError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		if renderer.Format() != types.FormatTable {
			return renderer.Value(map[string]string{"id": taskID, "status": "deleted"})
		}
		return renderer.Text(fmt.Sprintf(deletedTaskFormat, taskID))
	})
}

// lifecycle builds the handler for a state transition posted to tasks/<id>/<action>.
// noteOption names the optional free-text option sent with the transition.
func (commandHandlers *handlers) lifecycle(action string, noteOption string, summary string) dispatch.Single {
	usage := action + " <id>"
	if noteOption != "" {
		usage += " [--" + noteOption + " TEXT]"
	}
	handle := func(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
		taskID, argumentError := requireArgument(invocation, 0, "task id", usage)
		if argumentError != nil {
			return argumentError
		}
		var request actionRequest
		switch noteOption {
		case resultOption:
			request.Result, _ = invocation.Option(resultOption)
		case reasonOption:
			request.Reason, _ = invocation.Option(reasonOption)
		}

		var task types.Task
		path := routes.Build(effective, routes.Tasks, routes.Segments(taskID, action))
		if requestError := commandHandlers.service(effective).Do(ctx, http.MethodPost, path, request, &task); requestError != nil {
			return requestError
		}
		commandHandlers.dependencies.Logger.Debug("task transition", zap.String("action", action), zap.String("task", taskID))
		return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
			return renderer.Task(task)
		})
	}
	return dispatch.Single{Handler: dispatch.HandlerFunc(handle), Usage: usage, Summary: summary}
}

// exactPriority accepts only the single-value priority shape.
func exactPriority(input string) (int, error) {
	spec, parseError := filters.ParsePriority(input)
	if parseError != nil {
		return 0, parseError
	}
	if spec.Exact == 0 {
		return 0, &filters.FormatError{Kind: filters.ErrInvalidPriority, Input: input, Detail: exactPriorityDetail}
	}
	return spec.Exact, nil
}
