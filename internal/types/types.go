// Package types defines the wire structures exchanged with the task-orchestration service.
package types

import "encoding/json"

// Output formats understood by the renderers.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Task status values reported by the service.
const (
	StatusOpen       = "open"
	StatusClaimed    = "claimed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Actor is the identity attached to tasks, messages, and events.
type Actor struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Label returns the most readable identifier of the actor.
func (actor *Actor) Label() string {
	if actor == nil {
		return ""
	}
	if actor.Name != "" {
		return actor.Name
	}
	return actor.ID
}

// Task is one unit of orchestrated work.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string `json:"status" yaml:"status"`
	Priority    int    `json:"priority,omitempty" yaml:"priority,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Assignee    string `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	ClaimedBy   *Actor `json:"claimed_by,omitempty" yaml:"claimed_by,omitempty"`
	CreatedBy   *Actor `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	Result      string `json:"result,omitempty" yaml:"result,omitempty"`
	CreatedAt   string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// TaskList is the envelope returned when listing tasks.
type TaskList struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
	Total int    `json:"total,omitempty" yaml:"total,omitempty"`
}

// Message is a comment attached to a task.
type Message struct {
	ID        string `json:"id" yaml:"id"`
	TaskID    string `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	Author    *Actor `json:"author,omitempty" yaml:"author,omitempty"`
	Body      string `json:"body" yaml:"body"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// MessageList is the envelope returned when listing messages.
type MessageList struct {
	Messages []Message `json:"messages" yaml:"messages"`
}

// Repository is a source repository registered with a project.
type Repository struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	URL       string `json:"url" yaml:"url"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// RepositoryList is the envelope returned when listing repositories.
type RepositoryList struct {
	Repositories []Repository `json:"repos" yaml:"repos"`
}

// Event is one notification pushed over the watch stream.
type Event struct {
	Type      string          `json:"type" yaml:"type"`
	TaskID    string          `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	Actor     *Actor          `json:"actor,omitempty" yaml:"actor,omitempty"`
	Timestamp string          `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty" yaml:"-"`
}
