// Package clipboard copies rendered command output to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is installed.
var ErrUnavailable = errors.New("clipboard is not available on this system")

// Copier copies text to a clipboard.
type Copier interface {
	Copy(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

// NewSystem returns the operating system clipboard.
func NewSystem() System {
	return System{}
}

// Copy writes text to the clipboard.
func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// Memory records copied text in process. Tests substitute it for System; without a
// clipboard utility --copy fails with ErrUnavailable rather than falling back to Memory.
type Memory struct {
	Contents []string
}

// Copy appends text to Contents.
func (memory *Memory) Copy(text string) error {
	memory.Contents = append(memory.Contents, text)
	return nil
}

// Last returns the most recently copied text.
func (memory *Memory) Last() string {
	if len(memory.Contents) == 0 {
		return ""
	}
	return memory.Contents[len(memory.Contents)-1]
}

var (
	_ Copier = System{}
	_ Copier = (*Memory)(nil)
)
