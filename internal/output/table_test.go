package output

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTaskCellColor(t *testing.T) {
	testCases := []struct {
		name          string
		column        int
		value         string
		expectedColor lipgloss.Color
		expectColored bool
	}{
		{name: "known_status", column: statusColumn, value: "completed", expectedColor: statusColors["completed"], expectColored: true},
		{name: "unknown_status", column: statusColumn, value: "archived"},
		{name: "urgent_priority", column: priorityColumn, value: "9", expectedColor: urgentColor, expectColored: true},
		{name: "normal_priority", column: priorityColumn, value: "2", expectedColor: accentColor, expectColored: true},
		{name: "missing_priority", column: priorityColumn, value: emptyCell},
		{name: "plain_column", column: 0, value: "t-1"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			color, colored := taskCellColor(testCase.column, testCase.value)
			if colored != testCase.expectColored {
				t.Fatalf("expected colored=%t, got %t", testCase.expectColored, colored)
			}
			if colored && color != testCase.expectedColor {
				t.Fatalf("expected color %q, got %q", testCase.expectedColor, color)
			}
		})
	}
}
