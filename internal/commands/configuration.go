package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/output"
	"github.com/temirov/ats/internal/types"
)

const (
	configSetUsage  = "config set <key> <value> [--global]"
	globalSwitch    = "global"
	forceSwitch     = "force"
	setValueFormat  = "Set %s = %s in %s"
	initWroteFormat = "Wrote configuration to %s"
)

// ErrUnknownConfigKey is returned by config set for keys outside configKeys.
var ErrUnknownConfigKey = errors.New("unknown configuration key")

// configKeys maps the keys accepted by config set onto the layer field they write.
var configKeys = map[string]func(*config.Layer, string){
	"url":        func(layer *config.Layer, value string) { layer.URL = value },
	"org":        func(layer *config.Layer, value string) { layer.Organization = value },
	"project":    func(layer *config.Layer, value string) { layer.Project = value },
	"actor.type": func(layer *config.Layer, value string) { layer.Actor.Type = value },
	"actor.id":   func(layer *config.Layer, value string) { layer.Actor.ID = value },
	"actor.name": func(layer *config.Layer, value string) { layer.Actor.Name = value },
}

// ConfigKeys returns the sorted keys accepted by config set.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for key := range configKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (commandHandlers *handlers) showConfiguration(_ context.Context, invocation arguments.Invocation, effective config.Effective) error {
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Value(effective)
	})
}

func (commandHandlers *handlers) setConfiguration(_ context.Context, invocation arguments.Invocation, effective config.Effective) error {
	key, keyError := requireArgument(invocation, 0, "key", configSetUsage)
	if keyError != nil {
		return keyError
	}
	value, valueError := requireArgument(invocation, 1, "value", configSetUsage)
	if valueError != nil {
		return valueError
	}
	assign, known := configKeys[strings.ToLower(key)]
	if !known {
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownConfigKey, key, strings.Join(ConfigKeys(), ", "))
	}
	global, switchError := invocation.Switch(globalSwitch)
	if switchError != nil {
		return switchError
	}

	store := commandHandlers.dependencies.Store
	var (
		savedPath string
		saveError error
	)
	if global {
		layer := store.LoadGlobal()
		assign(&layer, value)
		savedPath, saveError = store.SaveGlobal(layer)
	} else {
		directory := commandHandlers.projectDirectory(effective)
		layer := store.LoadProject(directory)
		assign(&layer, value)
		savedPath, saveError = store.SaveProject(layer, directory)
	}
	if saveError != nil {
		return saveError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		if renderer.Format() != types.FormatTable {
			return renderer.Value(map[string]string{"key": key, "value": value, "path": savedPath})
		}
		return renderer.Text(fmt.Sprintf(setValueFormat, key, value, savedPath))
	})
}

func (commandHandlers *handlers) initConfiguration(_ context.Context, invocation arguments.Invocation, effective config.Effective) error {
	global, globalError := invocation.Switch(globalSwitch)
	if globalError != nil {
		return globalError
	}
	force, forceError := invocation.Switch(forceSwitch)
	if forceError != nil {
		return forceError
	}
	target := config.InitTargetProject
	if global {
		target = config.InitTargetGlobal
	}

	// Only supplied values are written. A defaulted org or project in the file would count
	// as explicit and move later requests onto the scoped routes.
	layer := effective.Supplied
	layer.URL = effective.BaseURL
	writtenPath, initError := commandHandlers.dependencies.Store.Initialize(layer, config.InitOptions{
		Target:           target,
		Force:            force,
		WorkingDirectory: commandHandlers.dependencies.WorkingDirectory,
	})
	if initError != nil {
		return initError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		if renderer.Format() != types.FormatTable {
			return renderer.Value(map[string]string{"path": writtenPath})
		}
		return renderer.Text(fmt.Sprintf(initWroteFormat, writtenPath))
	})
}

// projectDirectory is the directory of the nearest project file, or the working directory
// when none was found.
func (commandHandlers *handlers) projectDirectory(effective config.Effective) string {
	if effective.ProjectConfigPath != "" {
		return filepath.Dir(effective.ProjectConfigPath)
	}
	return commandHandlers.dependencies.WorkingDirectory
}
