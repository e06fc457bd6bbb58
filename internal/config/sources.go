package config

import (
	"os"
	"strings"
)

// FileReader reads configuration files. The resolver never touches the filesystem directly.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads from the real filesystem.
type OSFileReader struct{}

// ReadFile implements FileReader with os.ReadFile.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	// #nosec G304
	return os.ReadFile(path)
}

// Environment is an immutable snapshot of the process environment.
type Environment map[string]string

// EnvironmentFromPairs builds a snapshot from KEY=VALUE pairs such as os.Environ.
func EnvironmentFromPairs(pairs []string) Environment {
	environment := make(Environment, len(pairs))
	for _, pair := range pairs {
		if key, value, found := strings.Cut(pair, "="); found {
			environment[key] = value
		}
	}
	return environment
}

// Lookup returns the value of name when it is set to a non-empty string.
func (environment Environment) Lookup(name string) (string, bool) {
	value, present := environment[name]
	if !present || value == "" {
		return "", false
	}
	return value, true
}

// OptionSource exposes the command line options and boolean switches of one invocation.
type OptionSource interface {
	Option(name string) (string, bool)
	Switch(name string) (bool, error)
}
