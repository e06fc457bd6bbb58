package output

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/temirov/ats/internal/types"
)

const (
	tabMinimumWidth = 0
	tabWidth        = 4
	tabPadding      = 2
	tabPaddingChar  = ' '
	cellPadding     = 2
	detailsFormat   = "%s:\t%s\n"
)

var (
	taskColumns       = []string{"ID", "STATUS", "PRI", "ASSIGNEE", "TITLE", "UPDATED"}
	messageColumns    = []string{"TIME", "AUTHOR", "MESSAGE"}
	repositoryColumns = []string{"ID", "NAME", "URL"}
)

// Indexes of the colored cells in taskColumns.
const (
	statusColumn   = 1
	priorityColumn = 2
)

// highPriority is the lowest priority rendered in the urgent color.
const highPriority = 8

var (
	accentColor = lipgloss.Color("#A78BFA")
	mutedColor  = lipgloss.Color("#6C7086")

	statusColors = map[string]lipgloss.Color{
		types.StatusOpen:       lipgloss.Color("#89B4FA"),
		types.StatusClaimed:    lipgloss.Color("#F9E2AF"),
		types.StatusInProgress: lipgloss.Color("#FAB387"),
		types.StatusCompleted:  lipgloss.Color("#A6E3A1"),
		types.StatusFailed:     lipgloss.Color("#F38BA8"),
		types.StatusCancelled:  mutedColor,
	}
	urgentColor = lipgloss.Color("#F38BA8")
)

// cellColorizer picks a color for one cell, or reports false to leave it plain.
type cellColorizer func(column int, value string) (lipgloss.Color, bool)

func taskCellColor(column int, value string) (lipgloss.Color, bool) {
	switch column {
	case statusColumn:
		color, known := statusColors[value]
		return color, known
	case priorityColumn:
		priority, convertError := strconv.Atoi(value)
		if convertError != nil {
			return "", false
		}
		if priority >= highPriority {
			return urgentColor, true
		}
		return accentColor, true
	default:
		return "", false
	}
}

// table writes rows under headers. Plain output goes through tabwriter so piped output
// stays stable; styled output uses a borderless lipgloss table colored by colorize.
func (renderer *Renderer) table(headers []string, rows [][]string, colorize cellColorizer) error {
	if !renderer.styled {
		writer := tabwriter.NewWriter(renderer.writer, tabMinimumWidth, tabWidth, tabPadding, tabPaddingChar, 0)
		fmt.Fprintln(writer, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(writer, strings.Join(row, "\t"))
		}
		return writer.Flush()
	}

	styles := lipgloss.NewRenderer(renderer.writer)
	headerStyle := styles.NewStyle().Bold(true).Foreground(accentColor).PaddingRight(cellPadding)
	cellStyle := styles.NewStyle().PaddingRight(cellPadding)

	rendered := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row int, column int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if colorize != nil && row >= 0 && row < len(rows) && column < len(rows[row]) {
				if color, colored := colorize(column, rows[row][column]); colored {
					return cellStyle.Foreground(color)
				}
			}
			return cellStyle
		}).
		Render()
	_, writeError := fmt.Fprintln(renderer.writer, rendered)
	return writeError
}

func (renderer *Renderer) details(fields [][2]string) error {
	writer := tabwriter.NewWriter(renderer.writer, tabMinimumWidth, tabWidth, tabPadding, tabPaddingChar, 0)
	for _, field := range fields {
		value := field[1]
		if field[0] == "Status" {
			value = renderer.status(value)
		}
		fmt.Fprintf(writer, detailsFormat, renderer.muted(field[0]), value)
	}
	return writer.Flush()
}

func (renderer *Renderer) status(status string) string {
	color, known := statusColors[status]
	if !renderer.styled || !known {
		return status
	}
	return lipgloss.NewRenderer(renderer.writer).NewStyle().Foreground(color).Render(status)
}

func (renderer *Renderer) accent(text string) string {
	if !renderer.styled {
		return text
	}
	return lipgloss.NewRenderer(renderer.writer).NewStyle().Foreground(accentColor).Render(text)
}

func (renderer *Renderer) muted(text string) string {
	if !renderer.styled {
		return text
	}
	return lipgloss.NewRenderer(renderer.writer).NewStyle().Foreground(mutedColor).Render(text)
}
