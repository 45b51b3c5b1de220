package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskwell/taskwell/models"
)

const (
	// minColumnWidth keeps columns legible on narrow terminals.
	minColumnWidth = 20
	// maxColumnWidth stops columns from sprawling on wide terminals.
	maxColumnWidth = 44
)

// Column is one rendered lane of the board, already sorted by order.
type Column struct {
	Status models.TaskStatus
	Tasks  []models.Task
}

// StatusLabel returns the human heading for a column.
func StatusLabel(s models.TaskStatus) string {
	switch s {
	case models.StatusBacklog:
		return "Backlog"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// RenderBoard renders the three lanes side by side. activeCol selects the
// focused column (-1 for none) and selectedRow the highlighted card within it.
func RenderBoard(cols []Column, width, activeCol, selectedRow int) string {
	colWidth := columnWidth(width, len(cols))

	rendered := make([]string, 0, len(cols))
	for i, col := range cols {
		box := StyleColumn
		if i == activeCol {
			box = StyleColumnActive
		}

		var b strings.Builder
		b.WriteString(StyleColumnHeader.Render(fmt.Sprintf("%s (%d)", StatusLabel(col.Status), len(col.Tasks))))
		b.WriteString("\n")

		if len(col.Tasks) == 0 {
			b.WriteString(StyleSubtle.Render("  (empty)"))
		}
		for j, task := range col.Tasks {
			line := fmt.Sprintf("%d. %s", task.Order, truncate(task.Title, colWidth-6))
			if i == activeCol && j == selectedRow {
				b.WriteString(StyleCardSelected.Render("> " + line))
			} else {
				b.WriteString(StyleCard.Render("  " + line))
			}
			if j < len(col.Tasks)-1 {
				b.WriteString("\n")
			}
		}

		rendered = append(rendered, box.Width(colWidth).Render(b.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func columnWidth(total, n int) int {
	if n == 0 {
		return minColumnWidth
	}
	w := total/n - 2 // border + join slack
	if w < minColumnWidth {
		w = minColumnWidth
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	return w
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
