package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/config"
)

type recordingHandler struct {
	calls       int
	invocation  arguments.Invocation
	effective   config.Effective
	returnError error
}

func (handler *recordingHandler) Handle(_ context.Context, invocation arguments.Invocation, effective config.Effective) error {
	handler.calls++
	handler.invocation = invocation
	handler.effective = effective
	return handler.returnError
}

func newRegistry(create, list, send *recordingHandler) Registry {
	return Registry{
		"create": Single{Handler: create},
		"message": Group{Handlers: map[string]Handler{
			"list": list,
			"send": send,
		}},
	}
}

func TestDispatchFlatCommandFoldsSubcommandIntoPositional(t *testing.T) {
	create := &recordingHandler{}
	registry := newRegistry(create, &recordingHandler{}, &recordingHandler{})
	effective := config.Effective{Organization: "acme"}

	dispatchError := Dispatch(context.Background(), arguments.Tokenize([]string{"create", "write", "docs"}), effective, registry)
	require.NoError(t, dispatchError)
	require.Equal(t, 1, create.calls)
	require.Equal(t, "", create.invocation.Subcommand())
	require.Equal(t, []string{"write", "docs"}, create.invocation.Positional())
	require.Equal(t, "acme", create.effective.Organization)
}

func TestDispatchGroupRoutesBySubcommand(t *testing.T) {
	list := &recordingHandler{}
	send := &recordingHandler{}
	registry := newRegistry(&recordingHandler{}, list, send)

	require.NoError(t, Dispatch(context.Background(), arguments.Tokenize([]string{"message", "send", "task-1", "hi"}), config.Effective{}, registry))
	require.Equal(t, 0, list.calls)
	require.Equal(t, 1, send.calls)
	require.Equal(t, "send", send.invocation.Subcommand())
	require.Equal(t, []string{"task-1", "hi"}, send.invocation.Positional())
}

func TestDispatchErrors(t *testing.T) {
	registry := newRegistry(&recordingHandler{}, &recordingHandler{}, &recordingHandler{})

	testCases := []struct {
		name         string
		tokens       []string
		expected     error
		alternatives []string
		mentions     string
	}{
		{
			name:         "unknown_command",
			tokens:       []string{"deploy"},
			expected:     ErrUnknownCommand,
			alternatives: []string{"create", "message"},
			mentions:     "deploy",
		},
		{
			name:         "unknown_subcommand",
			tokens:       []string{"message", "delete"},
			expected:     ErrUnknownSubcommand,
			alternatives: []string{"list", "send"},
			mentions:     "delete",
		},
		{
			name:         "missing_subcommand",
			tokens:       []string{"message", "--json"},
			expected:     ErrSubcommandRequired,
			alternatives: []string{"list", "send"},
			mentions:     "message",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			dispatchError := Dispatch(context.Background(), arguments.Tokenize(testCase.tokens), config.Effective{}, registry)
			require.ErrorIs(t, dispatchError, testCase.expected)

			var typed *Error
			require.True(t, errors.As(dispatchError, &typed))
			require.Equal(t, testCase.alternatives, typed.Alternatives)
			require.Contains(t, dispatchError.Error(), testCase.mentions)
			for _, alternative := range testCase.alternatives {
				require.Contains(t, dispatchError.Error(), alternative)
			}
		})
	}
}

func TestDispatchMissingAndUnknownSubcommandMessagesDiffer(t *testing.T) {
	registry := newRegistry(&recordingHandler{}, &recordingHandler{}, &recordingHandler{})
	missing := Dispatch(context.Background(), arguments.Tokenize([]string{"message"}), config.Effective{}, registry)
	unknown := Dispatch(context.Background(), arguments.Tokenize([]string{"message", "nope"}), config.Effective{}, registry)
	require.NotEqual(t, missing.Error(), unknown.Error())
	require.True(t, strings.HasPrefix(missing.Error(), "subcommand required"))
	require.True(t, strings.HasPrefix(unknown.Error(), "unknown subcommand"))
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	handlerError := errors.New("boom")
	create := &recordingHandler{returnError: handlerError}
	registry := newRegistry(create, &recordingHandler{}, &recordingHandler{})
	require.ErrorIs(t, Dispatch(context.Background(), arguments.Tokenize([]string{"create"}), config.Effective{}, registry), handlerError)
}

func TestHandlerFuncAdapter(t *testing.T) {
	called := false
	registry := Registry{"version": Single{Handler: HandlerFunc(func(context.Context, arguments.Invocation, config.Effective) error {
		called = true
		return nil
	})}}
	require.NoError(t, Dispatch(context.Background(), arguments.Tokenize([]string{"version"}), config.Effective{}, registry))
	require.True(t, called)
}
