package board

import (
	"testing"

	"github.com/taskwell/taskwell/models"
)

func TestPlanReorder(t *testing.T) {
	svc, _ := newTestService(t)
	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		task, _ := svc.CreateTask(title, "")
		ids = append(ids, task.ID)
	}

	column := svc.Partition(models.StatusBacklog)
	op, err := PlanReorder(column, ids[0], 2)
	if err != nil {
		t.Fatalf("PlanReorder failed: %v", err)
	}
	if op.Kind != OpReorder || op.TaskID != ids[0] || op.NewOrder != 2 {
		t.Errorf("op = %+v", op)
	}
	// B and C both slide down one position.
	if len(op.Affected) != 2 {
		t.Fatalf("affected = %+v, want 2 entries", op.Affected)
	}

	result := svc.HandleDragDrop(op)
	if !result.OK {
		t.Fatalf("HandleDragDrop failed: %s", result.Err)
	}
	col := svc.Partition(models.StatusBacklog)
	want := []string{"B", "C", "A"}
	for i, title := range want {
		if col[i].Title != title {
			t.Fatalf("column after drag = %+v, want %v", col, want)
		}
	}
	assertContiguous(t, svc)
}

func TestPlanReorder_UnknownTask(t *testing.T) {
	svc, _ := newTestService(t)
	svc.CreateTask("A", "")

	_, err := PlanReorder(svc.Partition(models.StatusBacklog), "ghost", 0)
	if !models.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestPlanMove(t *testing.T) {
	svc, _ := newTestService(t)
	a, _ := svc.CreateTask("A", "")
	svc.CreateTask("B", "")
	c, _ := svc.CreateTask("C", "")

	// Seed the destination column.
	if _, err := svc.MoveTask(c.ID, models.StatusInProgress, 0); err != nil {
		t.Fatalf("MoveTask failed: %v", err)
	}

	source := svc.Partition(models.StatusBacklog)
	dest := svc.Partition(models.StatusInProgress)
	op, err := PlanMove(source, dest, a.ID, models.StatusInProgress, 0)
	if err != nil {
		t.Fatalf("PlanMove failed: %v", err)
	}
	if op.Kind != OpMove || op.NewStatus != models.StatusInProgress || op.NewOrder != 0 {
		t.Errorf("op = %+v", op)
	}

	result := svc.HandleDragDrop(op)
	if !result.OK {
		t.Fatalf("HandleDragDrop failed: %s", result.Err)
	}

	backlog := svc.Partition(models.StatusBacklog)
	if len(backlog) != 1 || backlog[0].Title != "B" || backlog[0].Order != 0 {
		t.Errorf("backlog = %+v, want [B@0]", backlog)
	}
	inProgress := svc.Partition(models.StatusInProgress)
	if len(inProgress) != 2 || inProgress[0].Title != "A" || inProgress[1].Title != "C" {
		t.Errorf("in-progress = %+v, want [A C]", inProgress)
	}
	assertContiguous(t, svc)
}

func TestHandleDragDrop_StaleAffectedTaskRejectsWholeBatch(t *testing.T) {
	svc, _ := newTestService(t)
	a, _ := svc.CreateTask("A", "")
	b, _ := svc.CreateTask("B", "")
	before := svc.Snapshot()

	// The UI planned against a view that still contained a deleted task.
	op := DragDropOperation{
		Kind:     OpReorder,
		TaskID:   a.ID,
		NewOrder: 1,
		Affected: []AffectedTask{
			{ID: b.ID, NewOrder: 0},
			{ID: "deleted-elsewhere", NewOrder: 2},
		},
	}
	result := svc.HandleDragDrop(op)
	if result.OK {
		t.Fatal("drag-drop with stale affected task should fail")
	}
	if result.Err == "" {
		t.Error("failure must carry a message for the notification channel")
	}

	after := svc.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("task %d changed despite rejected drag-drop: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestPlanMove_ClampsDestinationIndex(t *testing.T) {
	svc, _ := newTestService(t)
	a, _ := svc.CreateTask("A", "")

	op, err := PlanMove(svc.Partition(models.StatusBacklog), nil, a.ID, models.StatusDone, 99)
	if err != nil {
		t.Fatalf("PlanMove failed: %v", err)
	}
	if op.NewOrder != 0 {
		t.Errorf("NewOrder = %d, want clamped 0 for empty destination", op.NewOrder)
	}
	if result := svc.HandleDragDrop(op); !result.OK {
		t.Fatalf("HandleDragDrop failed: %s", result.Err)
	}
	assertContiguous(t, svc)
}
