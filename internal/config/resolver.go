package config

import (
	"path/filepath"

	"github.com/temirov/ats/internal/utils"
)

// Environment variable names read during resolution.
const (
	URLEnvironmentVariable       = "ATS_URL"
	OrgEnvironmentVariable       = "ATS_ORG"
	ProjectEnvironmentVariable   = "ATS_PROJECT"
	ActorTypeEnvironmentVariable = "ATS_ACTOR_TYPE"
	ActorIDEnvironmentVariable   = "ATS_ACTOR_ID"
	ActorNameEnvironmentVariable = "ATS_ACTOR_NAME"
	userEnvironmentVariable      = "USER"
)

// Command line option and flag names read during resolution.
const (
	URLOption       = "url"
	OrgOption       = "org"
	ProjectOption   = "project"
	ActorTypeOption = "actor-type"
	ActorIDOption   = "actor-id"
	ActorNameOption = "actor-name"
	FormatOption    = "format"
	JSONFlag        = "json"
	VerboseFlag     = "verbose"
)

// Built-in defaults, the lowest-precedence layer.
const (
	DefaultURL          = "http://localhost:3000"
	DefaultOrganization = "default"
	DefaultProject      = "main"
	DefaultActorType    = "human"
	DefaultActorID      = "anonymous"
	DefaultFormat       = "table"
	jsonFormat          = "json"
)

// Actor identifies who requests are made on behalf of.
type Actor struct {
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Effective is the configuration one invocation runs with. It is derived, never persisted.
type Effective struct {
	BaseURL         string `json:"url" yaml:"url"`
	Organization    string `json:"organization" yaml:"organization"`
	Project         string `json:"project" yaml:"project"`
	UseProjectScope bool   `json:"useProjectScope" yaml:"useProjectScope"`
	Actor           Actor  `json:"actor" yaml:"actor"`
	Format          string `json:"format" yaml:"format"`
	Verbose         bool   `json:"verbose" yaml:"verbose"`
	// GlobalConfigPath is the global file that contributed a layer, if any.
	GlobalConfigPath string `json:"globalConfigPath,omitempty" yaml:"globalConfigPath,omitempty"`
	// ProjectConfigPath is the project file that contributed a layer, if any.
	ProjectConfigPath string `json:"projectConfigPath,omitempty" yaml:"projectConfigPath,omitempty"`
	// Supplied holds only the values a file, the environment, or an option provided.
	// Built-in defaults never appear in it.
	Supplied Layer `json:"-" yaml:"-"`
}

// Resolver combines the configuration sources of one invocation. Every input is injected,
// so Resolve is a pure function of the resolver fields and the options passed to it.
type Resolver struct {
	Files            FileReader
	Environment      Environment
	HomeDirectory    string
	WorkingDirectory string
}

// GlobalConfigPath returns the fixed location of the global file, or "" without a home directory.
func GlobalConfigPath(homeDirectory string) string {
	if homeDirectory == "" {
		return ""
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

// Resolve builds the effective configuration.
func (resolver Resolver) Resolve(options OptionSource) Effective {
	globalLayer, globalPath := resolver.loadGlobalLayer()
	projectLayer, projectPath := resolver.FindProjectLayer()
	fileLayer := globalLayer.Merge(projectLayer)

	effective := Effective{
		BaseURL:           DefaultURL,
		Organization:      DefaultOrganization,
		Project:           DefaultProject,
		Actor:             resolver.defaultActor(),
		Format:            DefaultFormat,
		GlobalConfigPath:  globalPath,
		ProjectConfigPath: projectPath,
	}

	supplied := fileLayer.Merge(resolver.environmentLayer()).Merge(optionLayer(options))
	effective.applyLayer(supplied)
	effective.Supplied = supplied
	effective.UseProjectScope = supplied.Organization != "" || supplied.Project != ""

	// Malformed switch values are rejected by ValidateSwitches before resolution.
	if format, present := options.Option(FormatOption); present && format != "" {
		effective.Format = format
	} else if jsonOutput, _ := options.Switch(JSONFlag); jsonOutput {
		effective.Format = jsonFormat
	}
	effective.Verbose, _ = options.Switch(VerboseFlag)

	return effective
}

// ValidateSwitches checks the values given to the boolean switches read during resolution.
func ValidateSwitches(options OptionSource) error {
	for _, name := range []string{JSONFlag, VerboseFlag} {
		if _, switchError := options.Switch(name); switchError != nil {
			return switchError
		}
	}
	return nil
}

func (effective *Effective) applyLayer(layer Layer) {
	if layer.URL != "" {
		effective.BaseURL = layer.URL
	}
	if layer.Organization != "" {
		effective.Organization = layer.Organization
	}
	if layer.Project != "" {
		effective.Project = layer.Project
	}
	if layer.Actor.Type != "" {
		effective.Actor.Type = layer.Actor.Type
	}
	if layer.Actor.ID != "" {
		effective.Actor.ID = layer.Actor.ID
	}
	if layer.Actor.Name != "" {
		effective.Actor.Name = layer.Actor.Name
	}
}

func (resolver Resolver) defaultActor() Actor {
	identity := DefaultActorID
	if user, present := resolver.Environment.Lookup(userEnvironmentVariable); present {
		identity = user
	}
	return Actor{Type: DefaultActorType, ID: identity, Name: identity}
}

func (resolver Resolver) environmentLayer() Layer {
	read := func(name string) string {
		value, _ := resolver.Environment.Lookup(name)
		return value
	}
	return Layer{
		URL:          read(URLEnvironmentVariable),
		Organization: read(OrgEnvironmentVariable),
		Project:      read(ProjectEnvironmentVariable),
		Actor: ActorLayer{
			Type: read(ActorTypeEnvironmentVariable),
			ID:   read(ActorIDEnvironmentVariable),
			Name: read(ActorNameEnvironmentVariable),
		},
	}
}

func optionLayer(options OptionSource) Layer {
	read := func(name string) string {
		value, _ := options.Option(name)
		return value
	}
	return Layer{
		URL:          read(URLOption),
		Organization: read(OrgOption),
		Project:      read(ProjectOption),
		Actor: ActorLayer{
			Type: read(ActorTypeOption),
			ID:   read(ActorIDOption),
			Name: read(ActorNameOption),
		},
	}
}

func (resolver Resolver) loadGlobalLayer() (Layer, string) {
	globalPath := GlobalConfigPath(resolver.HomeDirectory)
	if globalPath == "" || resolver.Files == nil {
		return Layer{}, ""
	}
	return resolver.readLayer(globalPath)
}

// FindProjectLayer walks from the working directory towards the filesystem root and
// returns the first project file found. The walk stops there even when that file is
// malformed; a malformed file contributes an empty layer and no path.
func (resolver Resolver) FindProjectLayer() (Layer, string) {
	if resolver.WorkingDirectory == "" || resolver.Files == nil {
		return Layer{}, ""
	}
	directory := filepath.Clean(resolver.WorkingDirectory)
	for {
		candidate := filepath.Join(directory, utils.ProjectConfigFileName)
		if content, readError := resolver.Files.ReadFile(candidate); readError == nil {
			layer, decoded := DecodeLayer(content)
			if !decoded {
				return Layer{}, ""
			}
			return layer, candidate
		}
		parentDirectory := filepath.Dir(directory)
		if parentDirectory == directory {
			return Layer{}, ""
		}
		directory = parentDirectory
	}
}

func (resolver Resolver) readLayer(path string) (Layer, string) {
	content, readError := resolver.Files.ReadFile(path)
	if readError != nil {
		return Layer{}, ""
	}
	layer, decoded := DecodeLayer(content)
	if !decoded {
		return Layer{}, ""
	}
	return layer, path
}
