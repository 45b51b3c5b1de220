package ui

import (
	"strings"
	"testing"

	"github.com/taskwell/taskwell/models"
)

func TestRenderBoard_ShowsAllColumnsAndCounts(t *testing.T) {
	cols := []Column{
		{Status: models.StatusBacklog, Tasks: []models.Task{
			{ID: "a", Title: "Write docs", Status: models.StatusBacklog, Order: 0},
			{ID: "b", Title: "Fix login bug", Status: models.StatusBacklog, Order: 1},
		}},
		{Status: models.StatusInProgress, Tasks: nil},
		{Status: models.StatusDone, Tasks: []models.Task{
			{ID: "c", Title: "Ship v1", Status: models.StatusDone, Order: 0},
		}},
	}

	out := RenderBoard(cols, 120, -1, 0)

	for _, want := range []string{"Backlog (2)", "In Progress (0)", "Done (1)", "Write docs", "Fix login bug", "Ship v1", "(empty)"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered board missing %q", want)
		}
	}
}

func TestRenderBoard_MarksSelection(t *testing.T) {
	cols := []Column{
		{Status: models.StatusBacklog, Tasks: []models.Task{
			{ID: "a", Title: "First", Status: models.StatusBacklog, Order: 0},
			{ID: "b", Title: "Second", Status: models.StatusBacklog, Order: 1},
		}},
	}

	out := RenderBoard(cols, 80, 0, 1)
	if !strings.Contains(out, "> 1. Second") {
		t.Errorf("expected selected card marker on second row, got:\n%s", out)
	}
	if strings.Contains(out, "> 0. First") {
		t.Errorf("unselected card should not carry the marker:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate left short string alone, got %q", got)
	}
	got := truncate("a very long task title that will not fit", 12)
	if len([]rune(got)) != 12 || !strings.HasSuffix(got, "…") {
		t.Errorf("expected 12-rune ellipsized string, got %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusLabel(models.StatusInProgress) != "In Progress" {
		t.Errorf("unexpected label %q", StatusLabel(models.StatusInProgress))
	}
	if StatusLabel(models.TaskStatus("weird")) != "weird" {
		t.Error("unknown status should fall back to its raw value")
	}
}
