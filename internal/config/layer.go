// Package config resolves the effective ats configuration from built-in defaults, the
// global configuration file, the closest project configuration file, the environment,
// and command line options, in increasing order of precedence.
package config

import (
	"bytes"

	"github.com/spf13/viper"
	"github.com/tailscale/hujson"
)

const configurationType = "json"

// Layer is the schema shared by the global and project configuration files.
// Empty fields fall through to lower-precedence sources.
type Layer struct {
	Organization string     `mapstructure:"organization" json:"organization,omitempty"`
	Project      string     `mapstructure:"project" json:"project,omitempty"`
	URL          string     `mapstructure:"url" json:"url,omitempty"`
	Actor        ActorLayer `mapstructure:"actor" json:"actor"`
}

// ActorLayer holds the optional identity fields of a layer.
type ActorLayer struct {
	Type string `mapstructure:"type" json:"type,omitempty"`
	ID   string `mapstructure:"id" json:"id,omitempty"`
	Name string `mapstructure:"name" json:"name,omitempty"`
}

// Merge overlays override onto the receiver. Every non-empty field of override wins;
// actor fields are merged one by one rather than replaced as a whole.
func (layer Layer) Merge(override Layer) Layer {
	result := layer
	if override.Organization != "" {
		result.Organization = override.Organization
	}
	if override.Project != "" {
		result.Project = override.Project
	}
	if override.URL != "" {
		result.URL = override.URL
	}
	result.Actor = result.Actor.merge(override.Actor)
	return result
}

func (actor ActorLayer) merge(override ActorLayer) ActorLayer {
	result := actor
	if override.Type != "" {
		result.Type = override.Type
	}
	if override.ID != "" {
		result.ID = override.ID
	}
	if override.Name != "" {
		result.Name = override.Name
	}
	return result
}

// DecodeLayer parses configuration file content. JSON with comments and trailing commas
// is accepted. Any syntax or type problem yields an empty layer and ok == false; callers
// treat such files as if they were absent.
func DecodeLayer(content []byte) (Layer, bool) {
	standardized, standardizeError := hujson.Standardize(content)
	if standardizeError != nil {
		return Layer{}, false
	}

	reader := viper.New()
	reader.SetConfigType(configurationType)
	if readError := reader.ReadConfig(bytes.NewReader(standardized)); readError != nil {
		return Layer{}, false
	}

	var layer Layer
	if decodeError := reader.Unmarshal(&layer); decodeError != nil {
		return Layer{}, false
	}
	return layer, true
}
