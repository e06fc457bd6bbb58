// Package output renders service responses as tables, JSON, or YAML.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/temirov/ats/internal/types"
	"github.com/temirov/ats/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	noTasksMessage        = "No tasks found."
	noMessagesMessage     = "No messages."
	noRepositoriesMessage = "No repositories."
	totalFooterFormat     = "%d of %d tasks\n"
	emptyCell             = "-"
)

// ErrUnsupportedFormat is returned for output formats other than table, json, and yaml.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Renderer writes values to one writer in one format.
type Renderer struct {
	writer   io.Writer
	format   string
	styled   bool
	markdown func(string) (string, error)
}

// RendererOption customizes a Renderer.
type RendererOption func(*Renderer)

// WithStyling enables or disables colored table output and markdown rendering.
func WithStyling(styled bool) RendererOption {
	return func(renderer *Renderer) {
		renderer.styled = styled
	}
}

// WithMarkdownRenderer replaces the glamour-based markdown renderer.
func WithMarkdownRenderer(render func(string) (string, error)) RendererOption {
	return func(renderer *Renderer) {
		renderer.markdown = render
	}
}

// NewRenderer validates format and builds a Renderer. Styling defaults to on when
// writer is a terminal.
func NewRenderer(writer io.Writer, format string, options ...RendererOption) (*Renderer, error) {
	switch format {
	case types.FormatTable, types.FormatJSON, types.FormatYAML:
	default:
		return nil, fmt.Errorf("%w: %q (valid: table, json, yaml)", ErrUnsupportedFormat, format)
	}
	renderer := &Renderer{
		writer:   writer,
		format:   format,
		styled:   IsTerminal(writer),
		markdown: RenderMarkdown,
	}
	for _, option := range options {
		option(renderer)
	}
	return renderer, nil
}

// IsTerminal reports whether writer is a terminal file descriptor.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// Format returns the output format of the renderer.
func (renderer *Renderer) Format() string {
	return renderer.format
}

// Tasks renders a task list.
func (renderer *Renderer) Tasks(list types.TaskList) error {
	if renderer.format != types.FormatTable {
		return renderer.structured(list)
	}
	if len(list.Tasks) == 0 {
		return renderer.line(noTasksMessage)
	}
	rows := make([][]string, 0, len(list.Tasks))
	for _, task := range list.Tasks {
		rows = append(rows, []string{
			task.ID,
			task.Status,
			priorityCell(task.Priority),
			orEmpty(task.Assignee),
			task.Title,
			orEmpty(utils.FormatTimestampString(task.UpdatedAt)),
		})
	}
	if tableError := renderer.table(taskColumns, rows, taskCellColor); tableError != nil {
		return tableError
	}
	if list.Total > len(list.Tasks) {
		_, writeError := fmt.Fprintf(renderer.writer, totalFooterFormat, len(list.Tasks), list.Total)
		return writeError
	}
	return nil
}

// Task renders one task with its description.
func (renderer *Renderer) Task(task types.Task) error {
	if renderer.format != types.FormatTable {
		return renderer.structured(task)
	}
	fields := [][2]string{
		{"ID", task.ID},
		{"Title", task.Title},
		{"Status", task.Status},
		{"Priority", priorityCell(task.Priority)},
		{"Type", orEmpty(task.Type)},
		{"Assignee", orEmpty(task.Assignee)},
		{"Claimed by", orEmpty(task.ClaimedBy.Label())},
		{"Created by", orEmpty(task.CreatedBy.Label())},
		{"Created", orEmpty(utils.FormatTimestampString(task.CreatedAt))},
		{"Updated", orEmpty(utils.FormatTimestampString(task.UpdatedAt))},
	}
	if task.Result != "" {
		fields = append(fields, [2]string{"Result", task.Result})
	}
	if detailsError := renderer.details(fields); detailsError != nil {
		return detailsError
	}
	if task.Description == "" {
		return nil
	}
	return renderer.description(task.Description)
}

// Messages renders the messages of a task.
func (renderer *Renderer) Messages(list types.MessageList) error {
	if renderer.format != types.FormatTable {
		return renderer.structured(list)
	}
	if len(list.Messages) == 0 {
		return renderer.line(noMessagesMessage)
	}
	rows := make([][]string, 0, len(list.Messages))
	for _, message := range list.Messages {
		rows = append(rows, []string{
			orEmpty(utils.FormatTimestampString(message.CreatedAt)),
			orEmpty(message.Author.Label()),
			message.Body,
		})
	}
	return renderer.table(messageColumns, rows, nil)
}

// Message renders one message.
func (renderer *Renderer) Message(message types.Message) error {
	if renderer.format != types.FormatTable {
		return renderer.structured(message)
	}
	return renderer.line(fmt.Sprintf("Message %s added to task %s", message.ID, message.TaskID))
}

// Repositories renders registered repositories.
func (renderer *Renderer) Repositories(list types.RepositoryList) error {
	if renderer.format != types.FormatTable {
		return renderer.structured(list)
	}
	if len(list.Repositories) == 0 {
		return renderer.line(noRepositoriesMessage)
	}
	rows := make([][]string, 0, len(list.Repositories))
	for _, repository := range list.Repositories {
		rows = append(rows, []string{repository.ID, orEmpty(repository.Name), repository.URL})
	}
	return renderer.table(repositoryColumns, rows, nil)
}

// Repository renders one repository.
func (renderer *Renderer) Repository(repository types.Repository) error {
	if renderer.format != types.FormatTable {
		return renderer.structured(repository)
	}
	return renderer.details([][2]string{
		{"ID", repository.ID},
		{"Name", orEmpty(repository.Name)},
		{"URL", repository.URL},
	})
}

// Event renders one watch event. Structured formats emit one document per event.
func (renderer *Renderer) Event(event types.Event) error {
	switch renderer.format {
	case types.FormatJSON:
		encoded, encodeError := json.Marshal(event)
		if encodeError != nil {
			return encodeError
		}
		_, writeError := fmt.Fprintf(renderer.writer, "%s\n", encoded)
		return writeError
	case types.FormatYAML:
		if _, writeError := io.WriteString(renderer.writer, "---\n"); writeError != nil {
			return writeError
		}
		return renderer.structured(event)
	}
	timestamp := utils.FormatTimestampString(event.Timestamp)
	if timestamp == "" {
		timestamp = emptyCell
	}
	line := fmt.Sprintf("%s  %-18s %s", timestamp, renderer.accent(event.Type), orEmpty(event.TaskID))
	if label := event.Actor.Label(); label != "" {
		line += "  " + renderer.muted(label)
	}
	return renderer.line(line)
}

// Value renders an arbitrary value. Tables fall back to YAML, which reads well for nested
// configuration.
func (renderer *Renderer) Value(value any) error {
	if renderer.format == types.FormatJSON {
		return renderer.structured(value)
	}
	return renderer.yaml(value)
}

// Text writes plain text followed by a newline.
func (renderer *Renderer) Text(text string) error {
	return renderer.line(text)
}

func (renderer *Renderer) structured(value any) error {
	if renderer.format == types.FormatYAML {
		return renderer.yaml(value)
	}
	encoded, encodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
	if encodeError != nil {
		return encodeError
	}
	_, writeError := fmt.Fprintf(renderer.writer, "%s\n", encoded)
	return writeError
}

func (renderer *Renderer) yaml(value any) error {
	encoder := yaml.NewEncoder(renderer.writer)
	encoder.SetIndent(len(indentSpacer))
	if encodeError := encoder.Encode(value); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

func (renderer *Renderer) line(text string) error {
	_, writeError := fmt.Fprintln(renderer.writer, text)
	return writeError
}

func priorityCell(priority int) string {
	if priority == 0 {
		return emptyCell
	}
	return strconv.Itoa(priority)
}

func orEmpty(value string) string {
	if value == "" {
		return emptyCell
	}
	return value
}
