package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/ats/internal/cli"
	"github.com/temirov/ats/internal/utils"
)

const (
	loggerInitializationFailedMessageFormat = "logger initialization failed: %w"
	usageHint                               = "run 'ats help' for usage"
)

// main is the entry point for the ats command.
func main() {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(level)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(loggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	if applicationExecutionError := cli.Execute(context.Background(), loggerInstance, level); applicationExecutionError != nil {
		if cli.IsUsageError(applicationExecutionError) {
			loggerInstance.Fatal(fmt.Sprintf(utils.ErrorLogFormat, applicationExecutionError), zap.String("hint", usageHint))
		}
		loggerInstance.Fatal(fmt.Sprintf(utils.ErrorLogFormat, applicationExecutionError))
	}
}
