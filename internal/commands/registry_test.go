package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ats/internal/arguments"
	"github.com/temirov/ats/internal/commands"
	"github.com/temirov/ats/internal/config"
	"github.com/temirov/ats/internal/dispatch"
	"github.com/temirov/ats/internal/filters"
	"github.com/temirov/ats/internal/services/clipboard"
	"github.com/temirov/ats/internal/types"
)

type recordedCall struct {
	method string
	path   string
	body   map[string]any
}

type fakeService struct {
	responses map[string]string
	events    []types.Event
	calls     []recordedCall
}

func (service *fakeService) Do(_ context.Context, method string, path string, body any, out any) error {
	call := recordedCall{method: method, path: path}
	if body != nil {
		encoded, _ := json.Marshal(body)
		_ = json.Unmarshal(encoded, &call.body)
	}
	service.calls = append(service.calls, call)
	response, found := service.responses[method+" "+strings.SplitN(path, "?", 2)[0]]
	if !found || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(response), out)
}

func (service *fakeService) Watch(_ context.Context, path string, handle func(types.Event) error) error {
	service.calls = append(service.calls, recordedCall{method: "WATCH", path: path})
	for _, event := range service.events {
		if handleError := handle(event); handleError != nil {
			return handleError
		}
	}
	return nil
}

func (service *fakeService) lastCall(t *testing.T) recordedCall {
	t.Helper()
	require.NotEmpty(t, service.calls, "no request was made")
	return service.calls[len(service.calls)-1]
}

type harness struct {
	service          *fakeService
	output           *bytes.Buffer
	clipboard        *clipboard.Memory
	registry         dispatch.Registry
	homeDirectory    string
	workingDirectory string
}

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	testHarness := &harness{
		service:          &fakeService{responses: map[string]string{}},
		output:           &bytes.Buffer{},
		clipboard:        &clipboard.Memory{},
		homeDirectory:    t.TempDir(),
		workingDirectory: t.TempDir(),
	}
	styled := false
	testHarness.registry = commands.NewRegistry(commands.Dependencies{
		NewService:       func(config.Effective) commands.Service { return testHarness.service },
		Output:           testHarness.output,
		Clipboard:        testHarness.clipboard,
		Store:            config.Store{HomeDirectory: testHarness.homeDirectory},
		WorkingDirectory: testHarness.workingDirectory,
		Now:              func() time.Time { return fixedNow },
		Styled:           &styled,
	})
	return testHarness
}

func scopedEffective(format string) config.Effective {
	return config.Effective{
		BaseURL:         "http://localhost:3000",
		Organization:    "acme",
		Project:         "web",
		UseProjectScope: true,
		Actor:           config.Actor{Type: "human", ID: "alice", Name: "alice"},
		Format:          format,
		Supplied: config.Layer{
			Organization: "acme",
			Project:      "web",
			Actor:        config.ActorLayer{ID: "alice"},
		},
	}
}

func (testHarness *harness) run(effective config.Effective, tokens ...string) error {
	return dispatch.Dispatch(context.Background(), arguments.Tokenize(tokens), effective, testHarness.registry)
}

func TestListBuildsScopedFilteredRequest(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["GET /orgs/acme/projects/web/tasks"] = `{"tasks":[{"id":"t-1","title":"Write docs","status":"open"}],"total":1}`

	runError := testHarness.run(scopedEffective(types.FormatTable),
		"list", "--status", "open", "--priority", "3+", "--sort", "created", "--order", "desc", "--limit", "5", "--since", "2d")
	require.NoError(t, runError)

	call := testHarness.service.lastCall(t)
	require.Equal(t, "GET", call.method)
	parsed, parseError := url.Parse(call.path)
	require.NoError(t, parseError)
	require.Equal(t, "/orgs/acme/projects/web/tasks", parsed.Path)
	require.Equal(t, url.Values{
		"status":        {"open"},
		"min_priority":  {"3"},
		"sort":          {"created_at"},
		"order":         {"desc"},
		"limit":         {"5"},
		"created_after": {"2025-03-08T12:00:00.000Z"},
	}, parsed.Query())
	require.Contains(t, testHarness.output.String(), "Write docs")
}

func TestListAcceptsBareArrayAndAlias(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["GET /tasks"] = `[{"id":"t-7","title":"Bare","status":"claimed"}]`

	require.NoError(t, testHarness.run(config.Effective{Format: types.FormatJSON}, "ls"))
	var decoded types.TaskList
	require.NoError(t, json.Unmarshal(testHarness.output.Bytes(), &decoded))
	require.Len(t, decoded.Tasks, 1)
	require.Equal(t, "t-7", decoded.Tasks[0].ID)
}

func TestListRejectsMalformedFiltersBeforeRequesting(t *testing.T) {
	testCases := []struct {
		name     string
		tokens   []string
		expected error
	}{
		{name: "priority", tokens: []string{"list", "--priority", "11"}, expected: filters.ErrInvalidPriority},
		{name: "inverted", tokens: []string{"list", "--priority", "7-2"}, expected: filters.ErrPriorityInverted},
		{name: "time", tokens: []string{"list", "--since", "soon"}, expected: filters.ErrInvalidTime},
		{name: "sort", tokens: []string{"list", "--sort", "size"}, expected: filters.ErrInvalidSort},
		{name: "limit", tokens: []string{"list", "--limit=0"}, expected: filters.ErrInvalidLimit},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testHarness := newHarness(t)
			runError := testHarness.run(scopedEffective(types.FormatTable), testCase.tokens...)
			require.ErrorIs(t, runError, testCase.expected)
			require.Empty(t, testHarness.service.calls)
		})
	}
}

func TestShowRequiresTaskID(t *testing.T) {
	testHarness := newHarness(t)
	runError := testHarness.run(scopedEffective(types.FormatTable), "show")
	require.ErrorIs(t, runError, commands.ErrMissingArgument)
	require.Contains(t, runError.Error(), "show <id>")
}

func TestShowEscapesTaskID(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["GET /tasks/a%2Fb"] = `{"id":"a/b","title":"Slashed","status":"open"}`

	require.NoError(t, testHarness.run(config.Effective{Format: types.FormatTable}, "show", "a/b"))
	require.Equal(t, "/tasks/a%2Fb", testHarness.service.lastCall(t).path)
	require.Contains(t, testHarness.output.String(), "Slashed")
}

func TestCreateJoinsTitleWords(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["POST /orgs/acme/projects/web/tasks"] = `{"id":"t-2","title":"Write the docs","status":"open","priority":4}`

	runError := testHarness.run(scopedEffective(types.FormatTable), "create", "Write", "the", "docs", "-d", "All of them", "--priority", "4")
	require.NoError(t, runError)

	call := testHarness.service.lastCall(t)
	require.Equal(t, "POST", call.method)
	require.Equal(t, map[string]any{"title": "Write the docs", "description": "All of them", "priority": float64(4)}, call.body)
	require.Contains(t, testHarness.output.String(), "t-2")
}

func TestCreateValidation(t *testing.T) {
	testHarness := newHarness(t)
	require.ErrorIs(t, testHarness.run(scopedEffective(types.FormatTable), "create"), commands.ErrMissingArgument)
	require.ErrorIs(t, testHarness.run(scopedEffective(types.FormatTable), "create", "Title", "--priority", "3+"), filters.ErrInvalidPriority)
	require.Empty(t, testHarness.service.calls)
}

func TestUpdateRequiresAField(t *testing.T) {
	testHarness := newHarness(t)
	require.ErrorIs(t, testHarness.run(scopedEffective(types.FormatTable), "update", "t-1"), commands.ErrNoChanges)
	require.Empty(t, testHarness.service.calls)

	require.NoError(t, testHarness.run(scopedEffective(types.FormatTable), "update", "t-1", "--status", "in_progress"))
	call := testHarness.service.lastCall(t)
	require.Equal(t, "PATCH", call.method)
	require.Equal(t, "/orgs/acme/projects/web/tasks/t-1", call.path)
	require.Equal(t, map[string]any{"status": "in_progress"}, call.body)
}

func TestLifecycleActions(t *testing.T) {
	testCases := []struct {
		tokens       []string
		expectedPath string
		expectedBody map[string]any
	}{
		{tokens: []string{"claim", "42"}, expectedPath: "/tasks/42/claim", expectedBody: map[string]any{}},
		{tokens: []string{"release", "42"}, expectedPath: "/tasks/42/release", expectedBody: map[string]any{}},
		{tokens: []string{"complete", "42", "--result", "merged"}, expectedPath: "/tasks/42/complete", expectedBody: map[string]any{"result": "merged"}},
		{tokens: []string{"fail", "42", "--reason", "flaky"}, expectedPath: "/tasks/42/fail", expectedBody: map[string]any{"reason": "flaky"}},
		{tokens: []string{"cancel", "42"}, expectedPath: "/tasks/42/cancel", expectedBody: map[string]any{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.tokens[0], func(t *testing.T) {
			testHarness := newHarness(t)
			require.NoError(t, testHarness.run(config.Effective{Format: types.FormatTable}, testCase.tokens...))
			call := testHarness.service.lastCall(t)
			require.Equal(t, "POST", call.method)
			require.Equal(t, testCase.expectedPath, call.path)
			require.Equal(t, testCase.expectedBody, call.body)
		})
	}
}

func TestDeleteRendersStructuredConfirmation(t *testing.T) {
	testHarness := newHarness(t)
	require.NoError(t, testHarness.run(config.Effective{Format: types.FormatJSON}, "delete", "t-3"))
	require.Equal(t, "DELETE", testHarness.service.lastCall(t).method)
	require.JSONEq(t, `{"id":"t-3","status":"deleted"}`, testHarness.output.String())
}

func TestMessageGroup(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["GET /tasks/42/messages"] = `[{"id":"m-1","body":"hello there","author":{"name":"Bob"}}]`
	testHarness.service.responses["POST /tasks/42/messages"] = `{"id":"m-2","body":"on it"}`

	require.NoError(t, testHarness.run(config.Effective{Format: types.FormatTable}, "message", "list", "42"))
	require.Contains(t, testHarness.output.String(), "hello there")

	testHarness.output.Reset()
	require.NoError(t, testHarness.run(config.Effective{Format: types.FormatTable}, "message", "send", "42", "on", "it"))
	require.Equal(t, map[string]any{"body": "on it"}, testHarness.service.lastCall(t).body)
	require.Equal(t, "Message m-2 added to task 42\n", testHarness.output.String())

	runError := testHarness.run(config.Effective{Format: types.FormatTable}, "message")
	require.ErrorIs(t, runError, dispatch.ErrSubcommandRequired)
}

func TestRepositoryGroup(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["POST /orgs/acme/projects/web/repos"] = `{"id":"r-1","name":"web","url":"https://example.com/web.git"}`

	require.NoError(t, testHarness.run(scopedEffective(types.FormatTable), "repo", "add", "https://example.com/web.git", "--name", "web"))
	call := testHarness.service.lastCall(t)
	require.Equal(t, map[string]any{"url": "https://example.com/web.git", "name": "web"}, call.body)
	require.Contains(t, testHarness.output.String(), "r-1")

	testHarness.output.Reset()
	require.NoError(t, testHarness.run(scopedEffective(types.FormatTable), "repo", "remove", "r-1"))
	require.Equal(t, "/orgs/acme/projects/web/repos/r-1", testHarness.service.lastCall(t).path)
	require.Equal(t, "Removed repository r-1\n", testHarness.output.String())

	runError := testHarness.run(scopedEffective(types.FormatTable), "repo", "sync")
	require.ErrorIs(t, runError, dispatch.ErrUnknownSubcommand)
}

func TestCopySendsRenderedOutputToClipboard(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["GET /tasks/t-1"] = `{"id":"t-1","title":"Copy me","status":"open"}`

	require.NoError(t, testHarness.run(config.Effective{Format: types.FormatJSON}, "show", "t-1", "--copy"))
	require.Equal(t, testHarness.output.String(), testHarness.clipboard.Last())
	require.Contains(t, testHarness.clipboard.Last(), "Copy me")

	runError := testHarness.run(config.Effective{Format: types.FormatJSON}, "show", "t-1", "--copy=maybe")
	require.Error(t, runError)
	require.Contains(t, runError.Error(), "accepted values")
}

func TestUnsupportedFormatFails(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.responses["GET /tasks/t-1"] = `{"id":"t-1"}`
	runError := testHarness.run(config.Effective{Format: "xml"}, "show", "t-1")
	require.Error(t, runError)
	require.Contains(t, runError.Error(), "unsupported output format")
}

func TestWatchFiltersEventTypes(t *testing.T) {
	testHarness := newHarness(t)
	testHarness.service.events = []types.Event{
		{Type: "task.created", TaskID: "1"},
		{Type: "task.updated", TaskID: "1"},
		{Type: "task.completed", TaskID: "1"},
	}

	require.NoError(t, testHarness.run(scopedEffective(types.FormatJSON), "watch", "--events", "task.completed,task.created"))
	call := testHarness.service.lastCall(t)
	require.Equal(t, "WATCH", call.method)
	require.Equal(t, "/orgs/acme/projects/web/events?events=task.completed%2Ctask.created", call.path)

	lines := strings.Split(strings.TrimSpace(testHarness.output.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "task.created")
	require.Contains(t, lines[1], "task.completed")
}

func TestConfigSetWritesProjectAndGlobalFiles(t *testing.T) {
	testHarness := newHarness(t)
	effective := config.Effective{Format: types.FormatTable}

	require.NoError(t, testHarness.run(effective, "config", "set", "org", "acme"))
	require.NoError(t, testHarness.run(effective, "config", "set", "actor.name", "Alice"))
	projectLayer := config.Store{}.LoadProject(testHarness.workingDirectory)
	require.Equal(t, "acme", projectLayer.Organization)
	require.Equal(t, "Alice", projectLayer.Actor.Name)

	require.NoError(t, testHarness.run(effective, "config", "set", "url", "https://ats.example.com", "--global"))
	globalLayer := config.Store{HomeDirectory: testHarness.homeDirectory}.LoadGlobal()
	require.Equal(t, "https://ats.example.com", globalLayer.URL)

	runError := testHarness.run(effective, "config", "set", "color", "blue")
	require.ErrorIs(t, runError, commands.ErrUnknownConfigKey)
}

func TestConfigSetUpdatesNearestProjectFile(t *testing.T) {
	testHarness := newHarness(t)
	projectRoot := t.TempDir()
	projectFile := filepath.Join(projectRoot, ".ats.json")
	require.NoError(t, os.WriteFile(projectFile, []byte(`{"project": "web"}`), 0o644))

	effective := config.Effective{Format: types.FormatTable, ProjectConfigPath: projectFile}
	require.NoError(t, testHarness.run(effective, "config", "set", "org", "acme"))

	layer := config.Store{}.LoadProject(projectRoot)
	require.Equal(t, "acme", layer.Organization)
	require.Equal(t, "web", layer.Project)
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	testHarness := newHarness(t)
	effective := scopedEffective(types.FormatTable)

	require.NoError(t, testHarness.run(effective, "config", "init"))
	layer := config.Store{}.LoadProject(testHarness.workingDirectory)
	require.Equal(t, "acme", layer.Organization)
	require.Equal(t, "alice", layer.Actor.ID)
	require.Empty(t, layer.Actor.Type)
	require.Equal(t, "http://localhost:3000", layer.URL)

	runError := testHarness.run(effective, "config", "init")
	require.True(t, errors.Is(runError, config.ErrConfigurationExists))

	require.NoError(t, testHarness.run(effective, "config", "init", "--force"))
}

func TestConfigInitLeavesDefaultsOut(t *testing.T) {
	testHarness := newHarness(t)
	effective := config.Effective{
		BaseURL:      "http://localhost:3000",
		Organization: "default",
		Project:      "main",
		Actor:        config.Actor{Type: "human", ID: "sam", Name: "sam"},
		Format:       types.FormatTable,
	}

	require.NoError(t, testHarness.run(effective, "config", "init"))
	layer := config.Store{}.LoadProject(testHarness.workingDirectory)
	require.Equal(t, config.Layer{URL: "http://localhost:3000"}, layer)
}

func TestConfigShowRendersEffectiveValues(t *testing.T) {
	testHarness := newHarness(t)
	require.NoError(t, testHarness.run(scopedEffective(types.FormatJSON), "config", "show"))

	var shown map[string]any
	require.NoError(t, json.Unmarshal(testHarness.output.Bytes(), &shown))
	require.Equal(t, "acme", shown["organization"])
	require.Equal(t, true, shown["useProjectScope"])
}
