// Package commands implements the handlers behind every ats command and assembles them
// into the dispatch registry.
package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/client"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/dispatch"
	"github.com/temirov/ats/internal/output"
	"github.com/temirov/ats/internal/services/clipboard"
)

// ErrMissingArgument is returned when a required positional value is absent.
var ErrMissingArgument = errors.New("missing argument")

const (
	missingArgumentFormat = "%w: %s (usage: ats %s)"
	copyFlagName          = "copy"
	copyFailedFormat      = "copy output to clipboard: %w"
)

// Service is everything a handler may ask of the task-orchestration service.
type Service interface {
	client.Requester
	client.Watcher
}

// Dependencies are the collaborators shared by all handlers.
type Dependencies struct {
	NewService       func(config.Effective) Service
	Output           io.Writer
	Clipboard        clipboard.Copier
	Store            config.Store
	WorkingDirectory string
	Now              func() time.Time
	Logger           *zap.Logger
	// Styled forces styling on or off. Nil detects a terminal on Output.
	Styled *bool
}

type handlers struct {
	dependencies Dependencies
}

// NewRegistry returns the registry of every ats command.
func NewRegistry(dependencies Dependencies) dispatch.Registry {
	if dependencies.Now == nil {
		dependencies.Now = time.Now
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	commandHandlers := &handlers{dependencies: dependencies}

	list := dispatch.Single{Handler: dispatch.HandlerFunc(commandHandlers.listTasks), Usage: listUsage, Summary: "List tasks"}
	return dispatch.Registry{
		"list":     list,
		"ls":       dispatch.Single{Handler: list.Handler, Usage: "ls " + listOptionsUsage, Summary: "Alias for list"},
		"show":     dispatch.Single{Handler: dispatch.HandlerFunc(commandHandlers.showTask), Usage: showUsage, Summary: "Show one task"},
		"create":   dispatch.Single{Handler: dispatch.HandlerFunc(commandHandlers.createTask), Usage: createUsage, Summary: "Create a task"},
		"update":   dispatch.Single{Handler: dispatch.HandlerFunc(commandHandlers.updateTask), Usage: updateUsage, Summary: "Update task fields"},
		"delete":   dispatch.Single{Handler: dispatch.HandlerFunc(commandHandlers.deleteTask), Usage: deleteUsage, Summary: "Delete a task"},
		"claim":    commandHandlers.lifecycle(actionClaim, "", "Claim a task"),
		"release":  commandHandlers.lifecycle(actionRelease, "", "Release a claimed task"),
		"complete": commandHandlers.lifecycle(actionComplete, resultOption, "Mark a task completed"),
		"fail":     commandHandlers.lifecycle(actionFail, reasonOption, "Mark a task failed"),
		"cancel":   commandHandlers.lifecycle(actionCancel, "", "Cancel a task"),
		"message": dispatch.Group{
			Usage:   "message <list|send> <task-id> [body...]",
			Summary: "Read or post task messages",
			Handlers: map[string]dispatch.Handler{
				"list": dispatch.HandlerFunc(commandHandlers.listMessages),
				"send": dispatch.HandlerFunc(commandHandlers.sendMessage),
			},
		},
		"repo": dispatch.Group{
			Usage:   "repo <list|add|remove> [url|id] [--name NAME]",
			Summary: "Manage project repositories",
			Handlers: map[string]dispatch.Handler{
				"list":   dispatch.HandlerFunc(commandHandlers.listRepositories),
				"add":    dispatch.HandlerFunc(commandHandlers.addRepository),
				"remove": dispatch.HandlerFunc(commandHandlers.removeRepository),
			},
		},
		"watch": dispatch.Single{Handler: dispatch.HandlerFunc(commandHandlers.watch), Usage: watchUsage, Summary: "Stream task events until interrupted"},
		"config": dispatch.Group{
			Usage:   "config <show|set|init> [key value] [--global] [--force]",
			Summary: "Inspect or write configuration files",
			Handlers: map[string]dispatch.Handler{
				"show": dispatch.HandlerFunc(commandHandlers.showConfiguration),
				"set":  dispatch.HandlerFunc(commandHandlers.setConfiguration),
				"init": dispatch.HandlerFunc(commandHandlers.initConfiguration),
			},
		},
	}
}

// render draws through a renderer for the invocation's format. With --copy the output is
// buffered, written, and then copied to the clipboard without styling.
func (commandHandlers *handlers) render(invocation arguments.Invocation, effective config.Effective, draw func(*output.Renderer) error) error {
	copyRequested, switchError := invocation.Switch(copyFlagName)
	if switchError != nil {
		return switchError
	}

	if !copyRequested {
		renderer, rendererError := commandHandlers.renderer(commandHandlers.dependencies.Output, effective.Format, commandHandlers.dependencies.Styled)
		if rendererError != nil {
			return rendererError
		}
		return draw(renderer)
	}

	unstyled := false
	var buffer bytes.Buffer
	renderer, rendererError := commandHandlers.renderer(&buffer, effective.Format, &unstyled)
	if rendererError != nil {
		return rendererError
	}
	if drawError := draw(renderer); drawError != nil {
		return drawError
	}
	if _, writeError := commandHandlers.dependencies.Output.Write(buffer.Bytes()); writeError != nil {
		return writeError
	}
	if commandHandlers.dependencies.Clipboard == nil {
		return fmt.Errorf(copyFailedFormat, clipboard.ErrUnavailable)
	}
	if copyError := commandHandlers.dependencies.Clipboard.Copy(buffer.String()); copyError != nil {
		return fmt.Errorf(copyFailedFormat, copyError)
	}
	commandHandlers.dependencies.Logger.Debug("copied output to clipboard", zap.Int("bytes", buffer.Len()))
	return nil
}

func (commandHandlers *handlers) renderer(writer io.Writer, format string, styled *bool) (*output.Renderer, error) {
	var options []output.RendererOption
	if styled != nil {
		options = append(options, output.WithStyling(*styled))
	}
	return output.NewRenderer(writer, format, options...)
}

func (commandHandlers *handlers) service(effective config.Effective) Service {
	return commandHandlers.dependencies.NewService(effective)
}

// requireArgument returns the positional value at index or a usage error.
func requireArgument(invocation arguments.Invocation, index int, name string, usage string) (string, error) {
	value := invocation.Arg(index)
	if value == "" {
		return "", fmt.Errorf(missingArgumentFormat, ErrMissingArgument, name, usage)
	}
	return value, nil
}
