package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/output"
	"github.com/temirov/ats/internal/routes"
	"github.com/temirov/ats/internal/types"
)

const (
	repositoryAddUsage    = "repo add <url> [--name NAME]"
	repositoryRemoveUsage = "repo remove <id>"
	nameOption            = "name"
	removedRepoFormat     = "Removed repository %s"
)

type repositoryRequest struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

func (commandHandlers *handlers) listRepositories(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	var raw json.RawMessage
	path := routes.Build(effective, routes.Repositories, "")
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodGet, path, nil, &raw); requestError != nil {
		return requestError
	}
	var list types.RepositoryList
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" {
		target := any(&list)
		if strings.HasPrefix(trimmed, "[") {
			target = &list.Repositories
		}
		if decodeError := json.Unmarshal(raw, target); decodeError != nil {
			return fmt.Errorf("decode repository list: %w", decodeError)
		}
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Repositories(list)
	})
}

func (commandHandlers *handlers) addRepository(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	repositoryURL, argumentError := requireArgument(invocation, 0, "repository url", repositoryAddUsage)
	if argumentError != nil {
		return argumentError
	}
	request := repositoryRequest{URL: repositoryURL}
	request.Name, _ = invocation.Option(nameOption)

	var repository types.Repository
	path := routes.Build(effective, routes.Repositories, "")
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodPost, path, request, &repository); requestError != nil {
		return requestError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		return renderer.Repository(repository)
	})
}

func (commandHandlers *handlers) removeRepository(ctx context.Context, invocation arguments.Invocation, effective config.Effective) error {
	repositoryID, argumentError := requireArgument(invocation, 0, "repository id", repositoryRemoveUsage)
	if argumentError != nil {
		return argumentError
	}
	path := routes.Build(effective, routes.Repositories, routes.Segments(repositoryID))
	if requestError := commandHandlers.service(effective).Do(ctx, http.MethodDelete, path, nil, nil); requestError != nil {
		return requestError
	}
	return commandHandlers.render(invocation, effective, func(renderer *output.Renderer) error {
		if renderer.Format() != types.FormatTable {
			return renderer.Value(map[string]string{"id": repositoryID, "status": "removed"})
		}
		return renderer.Text(fmt.Sprintf(removedRepoFormat, repositoryID))
	})
}
