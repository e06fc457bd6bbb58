// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/client"
	"github.com/temirov/ats/internal/commands"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/dispatch"
	"github.com/temirov/ats/internal/services/clipboard"
	"github.com/temirov/ats/internal/utils"
)

const (
	rootUse              = utils.ApplicationName + " <command> [arguments] [options]"
	rootShortDescription = "ats command line interface"
	versionCommandName   = "version"
	versionFlagName      = "version"
	helpCommandName      = "help"
	helpFlagName         = "help"
	helpShortFlagName    = "h"
	versionTemplate      = "ats version: %s\n"
	userAgentFormat      = "ats/%s"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	usageHeader                 = "Usage: ats <command> [arguments] [options]\n\nCommands:\n"
	commandHelpFormat           = "Usage: ats %s\n\n%s\n"
	usageOptions                = `
Options:
  --url URL               service base URL (ATS_URL)
  --org ORG               organization scope (ATS_ORG)
  --project PROJECT       project scope (ATS_PROJECT)
  --actor-type TYPE       actor type sent with requests (ATS_ACTOR_TYPE)
  --actor-id ID           actor id (ATS_ACTOR_ID)
  --actor-name NAME       actor display name (ATS_ACTOR_NAME)
  --format FORMAT         table, json, or yaml
  --json                  shorthand for --format json
  --copy                  also copy the output to the clipboard
  --verbose               log requests to stderr
  --version               print the version

Options take the next word as their value unless it starts with "-".
Pass negative numbers as --name=value.
`
)

// Application runs one ats invocation against injected process state.
type Application struct {
	Output           io.Writer
	Environment      config.Environment
	Files            config.FileReader
	HomeDirectory    string
	WorkingDirectory string
	Logger           *zap.Logger
	Level            zap.AtomicLevel
	Clipboard        clipboard.Copier
	NewService       func(config.Effective) commands.Service
	Version          func() string
}

// NewApplication captures the process environment: stdout, the environment variables,
// the home and working directories, and the system clipboard.
func NewApplication(logger *zap.Logger, level zap.AtomicLevel) (*Application, error) {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return nil, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	homeDirectory, homeDirectoryError := os.UserHomeDir()
	if homeDirectoryError != nil {
		logger.Debug("home directory unavailable, skipping global configuration", zap.Error(homeDirectoryError))
		homeDirectory = utils.EmptyString
	}
	userAgent := fmt.Sprintf(userAgentFormat, utils.GetApplicationVersion())
	return &Application{
		Output:           os.Stdout,
		Environment:      config.EnvironmentFromPairs(os.Environ()),
		Files:            config.OSFileReader{},
		HomeDirectory:    homeDirectory,
		WorkingDirectory: workingDirectory,
		Logger:           logger,
		Level:            level,
		Clipboard:        clipboard.NewSystem(),
		NewService: func(effective config.Effective) commands.Service {
			return client.New(effective, client.WithLogger(logger), client.WithUserAgent(userAgent))
		},
		Version: utils.GetApplicationVersion,
	}, nil
}

// Run tokenizes rawArguments, resolves configuration, and dispatches the command.
func (application *Application) Run(ctx context.Context, rawArguments []string) error {
	invocation := arguments.Tokenize(rawArguments)
	registry := application.registry()

	if wantsVersion(invocation) {
		_, writeError := fmt.Fprintf(application.Output, versionTemplate, application.Version())
		return writeError
	}
	if wantsHelp(invocation) {
		topic := invocation.Command()
		if topic == helpCommandName {
			topic = invocation.Subcommand()
		}
		return writeUsage(application.Output, registry, topic)
	}

	if switchError := config.ValidateSwitches(invocation); switchError != nil {
		return switchError
	}
	resolver := config.Resolver{
		Files:            application.Files,
		Environment:      application.Environment,
		HomeDirectory:    application.HomeDirectory,
		WorkingDirectory: application.WorkingDirectory,
	}
	effective := resolver.Resolve(invocation)
	if effective.Verbose {
		application.Level.SetLevel(zap.DebugLevel)
	}
	application.Logger.Debug("parsed arguments",
		zap.String("command", invocation.Command()),
		zap.String("subcommand", invocation.Subcommand()),
		zap.Strings("flags", invocation.Flags()),
		zap.Any("options", invocation.Options()),
	)
	application.Logger.Debug("resolved configuration",
		zap.String("url", effective.BaseURL),
		zap.String("organization", effective.Organization),
		zap.String("project", effective.Project),
		zap.Bool("scoped", effective.UseProjectScope),
		zap.String("actor", effective.Actor.Type+":"+effective.Actor.ID),
		zap.String("global_config", effective.GlobalConfigPath),
		zap.String("project_config", effective.ProjectConfigPath),
	)

	return dispatch.Dispatch(ctx, invocation, effective, registry)
}

func (application *Application) registry() dispatch.Registry {
	return commands.NewRegistry(commands.Dependencies{
		NewService:       application.NewService,
		Output:           application.Output,
		Clipboard:        application.Clipboard,
		Store:            config.Store{HomeDirectory: application.HomeDirectory},
		WorkingDirectory: application.WorkingDirectory,
		Logger:           application.Logger,
	})
}

func wantsVersion(invocation arguments.Invocation) bool {
	if invocation.Command() == versionCommandName || invocation.Flag(versionFlagName) {
		return true
	}
	_, present := invocation.Option(versionFlagName)
	return present
}

// wantsHelp treats an empty command line, the help command, and -h or --help as requests
// for usage. The flag forms may have consumed a following word as their value.
func wantsHelp(invocation arguments.Invocation) bool {
	if invocation.Command() == utils.EmptyString || invocation.Command() == helpCommandName {
		return true
	}
	for _, name := range []string{helpFlagName, helpShortFlagName} {
		if invocation.Flag(name) {
			return true
		}
		if _, present := invocation.Option(name); present {
			return true
		}
	}
	return false
}

// writeUsage prints the command list, or the usage of topic when it names a command.
func writeUsage(writer io.Writer, registry dispatch.Registry, topic string) error {
	if entry, known := registry[topic]; known {
		usage, summary := describe(entry)
		_, writeError := fmt.Fprintf(writer, commandHelpFormat, usage, summary)
		return writeError
	}

	var builder strings.Builder
	builder.WriteString(usageHeader)
	table := tabwriter.NewWriter(&builder, 0, 4, 2, ' ', 0)
	for _, name := range registry.Commands() {
		usage, summary := describe(registry[name])
		fmt.Fprintf(table, "  %s\t%s\n", usage, summary)
	}
	fmt.Fprintf(table, "  %s\t%s\n", versionCommandName, "Print the version")
	fmt.Fprintf(table, "  %s\t%s\n", helpCommandName+" [command]", "Show usage")
	if flushError := table.Flush(); flushError != nil {
		return flushError
	}
	builder.WriteString(usageOptions)
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func describe(entry dispatch.Entry) (string, string) {
	switch typed := entry.(type) {
	case dispatch.Single:
		return typed.Usage, typed.Summary
	case dispatch.Group:
		return typed.Usage, typed.Summary
	default:
		return utils.EmptyString, utils.EmptyString
	}
}

// Execute runs ats with the process arguments. SIGINT and SIGTERM cancel the command
// context, which ends a watch cleanly.
func Execute(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) error {
	application, applicationError := NewApplication(logger, level)
	if applicationError != nil {
		return applicationError
	}
	rootCommand := createRootCommand(application)

	signalContext, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCommand.ExecuteContext(signalContext)
}

// createRootCommand builds the root Cobra command. Flag parsing is disabled so that the
// raw tokens reach the ats tokenizer unchanged.
func createRootCommand(application *Application) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:                rootUse,
		Short:              rootShortDescription,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, rawArguments []string) error {
			return application.Run(command.Context(), rawArguments)
		},
	}
	rootCommand.CompletionOptions.DisableDefaultCmd = true
	rootCommand.SetHelpFunc(func(command *cobra.Command, _ []string) {
		_ = writeUsage(command.OutOrStdout(), application.registry(), utils.EmptyString)
	})
	return rootCommand
}

// IsUsageError reports whether executionError came from command selection, missing
// arguments, or a malformed switch rather than from the service.
func IsUsageError(executionError error) bool {
	return errors.Is(executionError, dispatch.ErrUnknownCommand) ||
		errors.Is(executionError, dispatch.ErrUnknownSubcommand) ||
		errors.Is(executionError, dispatch.ErrSubcommandRequired) ||
		errors.Is(executionError, commands.ErrMissingArgument) ||
		errors.Is(executionError, arguments.ErrInvalidSwitch)
}
