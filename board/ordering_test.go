package board

import (
	"testing"

	"github.com/taskwell/taskwell/models"
)

func mkTask(id string, status models.TaskStatus, order int) models.Task {
	return models.Task{ID: id, Title: id, Status: status, Order: order}
}

func TestCompactStatus_ClosesGapsPreservingRelativeOrder(t *testing.T) {
	tasks := []models.Task{
		mkTask("a", models.StatusBacklog, 4),
		mkTask("b", models.StatusBacklog, 0),
		mkTask("c", models.StatusBacklog, 9),
		mkTask("x", models.StatusDone, 7),
	}
	compactStatus(tasks, models.StatusBacklog)

	got := map[string]int{}
	for _, task := range tasks {
		got[task.ID] = task.Order
	}
	if got["b"] != 0 || got["a"] != 1 || got["c"] != 2 {
		t.Errorf("backlog orders = %v, want b=0 a=1 c=2", got)
	}
	if got["x"] != 7 {
		t.Errorf("other columns must be untouched, x = %d", got["x"])
	}
}

func TestShiftUpFrom(t *testing.T) {
	tasks := []models.Task{
		mkTask("a", models.StatusDone, 0),
		mkTask("b", models.StatusDone, 1),
		mkTask("c", models.StatusDone, 2),
	}
	shiftUpFrom(tasks, models.StatusDone, 1, "moving")

	if tasks[0].Order != 0 || tasks[1].Order != 2 || tasks[2].Order != 3 {
		t.Errorf("orders after shift = %d %d %d, want 0 2 3",
			tasks[0].Order, tasks[1].Order, tasks[2].Order)
	}
}

func TestClampOrder(t *testing.T) {
	tests := []struct {
		order, n, want int
	}{
		{-1, 5, 0},
		{0, 5, 0},
		{3, 5, 3},
		{5, 5, 5},
		{9, 5, 5},
	}
	for _, tt := range tests {
		if got := clampOrder(tt.order, tt.n); got != tt.want {
			t.Errorf("clampOrder(%d, %d) = %d, want %d", tt.order, tt.n, got, tt.want)
		}
	}
}
