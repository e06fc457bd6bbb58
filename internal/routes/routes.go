// Package routes builds service paths, choosing between the global namespace and the
// organization/project namespace.
package routes

import (
	"net/url"
	"strings"

	"github.com/temirov/ats/internal/config"
)

// Resource kinds exposed by the service.
const (
	Tasks        = "tasks"
	Repositories = "repos"
	Events       = "events"
)

const (
	organizationsSegment = "/orgs/"
	projectsSegment      = "/projects/"
	pathSeparator        = "/"
	querySeparator       = "?"
)

// Build returns the path of resource followed by subpath. The scoped form is used only
// when the configuration asks for project scope and both identifiers are non-empty.
func Build(effective config.Effective, resource string, subpath string) string {
	if effective.UseProjectScope && effective.Organization != "" && effective.Project != "" {
		return organizationsSegment + url.PathEscape(effective.Organization) +
			projectsSegment + url.PathEscape(effective.Project) +
			pathSeparator + resource + subpath
	}
	return pathSeparator + resource + subpath
}

// Segments joins escaped path segments into a subpath with a leading slash.
func Segments(segments ...string) string {
	if len(segments) == 0 {
		return ""
	}
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return pathSeparator + strings.Join(escaped, pathSeparator)
}

// WithQuery appends encoded values to path when there are any.
func WithQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + querySeparator + values.Encode()
}
