// Package dispatch maps a parsed invocation to the handler registered for it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/config"
)

// Sentinel errors identifying the kind of an Error.
var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrUnknownSubcommand  = errors.New("unknown subcommand")
	ErrSubcommandRequired = errors.New("subcommand required")
)

// Handler runs one command. It owns all output and any request it makes.
type Handler interface {
	Handle(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error

// Handle calls function.
func (function HandlerFunc) Handle(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	return function(ctx, invocation, effective)
}

// Entry is a registry entry: either a Single handler or a Group of subcommand handlers.
type Entry interface {
	entry()
}

// Single is a command without subcommands.
type Single struct {
	Handler Handler
	Usage   string
	Summary string
}

// Group is a command whose second word selects the handler.
type Group struct {
	Handlers map[string]Handler
	Usage    string
	Summary  string
}

func (Single) entry() {}

func (Group) entry() {}

// Subcommands returns the sorted subcommand names.
func (group Group) Subcommands() []string {
	names := make([]string, 0, len(group.Handlers))
	for name := range group.Handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry maps command names to entries.
type Registry map[string]Entry

// Commands returns the sorted command names.
func (registry Registry) Commands() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Error reports a dispatch failure together with the valid alternatives.
type Error struct {
	Kind         error
	Command      string
	Name         string
	Alternatives []string
}

func (dispatchError *Error) Error() string {
	var message strings.Builder
	message.WriteString(dispatchError.Kind.Error())
	if dispatchError.Name != "" {
		fmt.Fprintf(&message, ": %s", dispatchError.Name)
	} else if dispatchError.Command != "" {
		fmt.Fprintf(&message, " for %s", dispatchError.Command)
	}
	if len(dispatchError.Alternatives) > 0 {
		fmt.Fprintf(&message, " (available: %s)", strings.Join(dispatchError.Alternatives, ", "))
	}
	return message.String()
}

// Unwrap exposes the kind so callers can use errors.Is.
func (dispatchError *Error) Unwrap() error {
	return dispatchError.Kind
}

// Dispatch resolves the handler for invocation and runs it.
func Dispatch(ctx context.Context, invocation arguments.Invocation, effective config.Effective, registry Registry) error {
	handler, resolved, resolveError := Resolve(invocation, registry)
	if resolveError != nil {
		return resolveError
	}
	return handler.Handle(ctx, resolved, effective)
}

// Resolve finds the handler for invocation. For a Single entry any subcommand is folded
// into the positional values of the returned invocation.
func Resolve(invocation arguments.Invocation, registry Registry) (Handler, arguments.Invocation, error) {
	commandName := invocation.Command()
	entry, known := registry[commandName]
	if !known {
		return nil, invocation, &Error{Kind: ErrUnknownCommand, Name: commandName, Alternatives: registry.Commands()}
	}

	switch typed := entry.(type) {
	case Single:
		return typed.Handler, invocation.WithSubcommandAsPositional(), nil
	case Group:
		subcommandName := invocation.Subcommand()
		if subcommandName == "" {
			return nil, invocation, &Error{Kind: ErrSubcommandRequired, Command: commandName, Alternatives: typed.Subcommands()}
		}
		handler, found := typed.Handlers[subcommandName]
		if !found {
			return nil, invocation, &Error{Kind: ErrUnknownSubcommand, Command: commandName, Name: subcommandName, Alternatives: typed.Subcommands()}
		}
		return handler, invocation, nil
	default:
		panic(fmt.Sprintf("dispatch: unsupported registry entry %T", entry))
	}
}
