package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/temirov/ats/internal/utils"
)

// InitTarget identifies where configuration should be written.
type InitTarget string

const (
	// InitTargetProject writes configuration into a project directory.
	InitTargetProject InitTarget = "project"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	configurationDirectoryPermissions = 0o755
	configurationIndent               = "  "
)

// ErrConfigurationExists is returned by Initialize when the target file exists and Force is unset.
var ErrConfigurationExists = errors.New("configuration file already exists")

// Store persists configuration layers. It is not used during resolution.
type Store struct {
	HomeDirectory string
}

type persistedLayer struct {
	Organization *string              `json:"organization,omitempty"`
	Project      *string              `json:"project,omitempty"`
	URL          *string              `json:"url,omitempty"`
	Actor        *persistedActorLayer `json:"actor,omitempty"`
}

type persistedActorLayer struct {
	Type *string `json:"type,omitempty"`
	ID   *string `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

func nonEmptyPointer(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// EncodeLayer renders a layer as indented JSON, omitting empty fields.
func EncodeLayer(layer Layer) ([]byte, error) {
	persisted := persistedLayer{
		Organization: nonEmptyPointer(layer.Organization),
		Project:      nonEmptyPointer(layer.Project),
		URL:          nonEmptyPointer(layer.URL),
	}
	actorType := nonEmptyPointer(layer.Actor.Type)
	actorID := nonEmptyPointer(layer.Actor.ID)
	actorName := nonEmptyPointer(layer.Actor.Name)
	if actorType != nil || actorID != nil || actorName != nil {
		persisted.Actor = &persistedActorLayer{Type: actorType, ID: actorID, Name: actorName}
	}
	encoded, encodeError := json.MarshalIndent(persisted, "", configurationIndent)
	if encodeError != nil {
		return nil, fmt.Errorf("encode configuration: %w", encodeError)
	}
	return append(encoded, '\n'), nil
}

// GlobalPath returns where SaveGlobal writes.
func (store Store) GlobalPath() (string, error) {
	globalPath := GlobalConfigPath(store.HomeDirectory)
	if globalPath == "" {
		return "", fmt.Errorf("resolve home directory for configuration: home directory is unknown")
	}
	return globalPath, nil
}

// ProjectPath returns where SaveProject writes for directory.
func ProjectPath(directory string) string {
	return filepath.Join(directory, utils.ProjectConfigFileName)
}

// SaveGlobal replaces the global file with layer, creating its directory when needed.
func (store Store) SaveGlobal(layer Layer) (string, error) {
	globalPath, pathError := store.GlobalPath()
	if pathError != nil {
		return "", pathError
	}
	configurationDirectory := filepath.Dir(globalPath)
	if mkdirError := os.MkdirAll(configurationDirectory, configurationDirectoryPermissions); mkdirError != nil {
		return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, mkdirError)
	}
	return globalPath, writeLayer(globalPath, layer)
}

// SaveProject replaces the project file in directory with layer.
func (store Store) SaveProject(layer Layer, directory string) (string, error) {
	if strings.TrimSpace(directory) == "" {
		return "", fmt.Errorf("project directory is required")
	}
	projectPath := ProjectPath(directory)
	return projectPath, writeLayer(projectPath, layer)
}

// LoadGlobal reads the global file. Missing or malformed files yield an empty layer.
func (store Store) LoadGlobal() Layer {
	globalPath := GlobalConfigPath(store.HomeDirectory)
	if globalPath == "" {
		return Layer{}
	}
	return loadLayerFile(globalPath)
}

// LoadProject reads the project file in directory. Missing or malformed files yield an empty layer.
func (store Store) LoadProject(directory string) Layer {
	return loadLayerFile(ProjectPath(directory))
}

// InitOptions controls Initialize.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// Initialize writes layer to the requested target, refusing to overwrite unless Force is set.
func (store Store) Initialize(layer Layer, options InitOptions) (string, error) {
	var destinationPath string
	switch options.Target {
	case InitTargetGlobal:
		globalPath, pathError := store.GlobalPath()
		if pathError != nil {
			return "", pathError
		}
		destinationPath = globalPath
	case InitTargetProject, "":
		destinationPath = ProjectPath(options.WorkingDirectory)
	default:
		return "", fmt.Errorf("unsupported init target %q", options.Target)
	}

	if _, statError := os.Stat(destinationPath); statError == nil {
		if !options.Force {
			return "", fmt.Errorf("%w at %s", ErrConfigurationExists, destinationPath)
		}
	} else if !errors.Is(statError, fs.ErrNotExist) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, statError)
	}

	if options.Target == InitTargetGlobal {
		return store.SaveGlobal(layer)
	}
	return store.SaveProject(layer, options.WorkingDirectory)
}

func writeLayer(path string, layer Layer) error {
	encoded, encodeError := EncodeLayer(layer)
	if encodeError != nil {
		return encodeError
	}
	if writeError := atomic.WriteFile(path, bytes.NewReader(encoded)); writeError != nil {
		return fmt.Errorf("write configuration to %s: %w", path, writeError)
	}
	return nil
}

func loadLayerFile(path string) Layer {
	content, readError := OSFileReader{}.ReadFile(path)
	if readError != nil {
		return Layer{}
	}
	layer, _ := DecodeLayer(content)
	return layer
}
