package board

import (
	"fmt"

	"github.com/taskwell/taskwell/models"
)

// OpKind discriminates the two drag-and-drop gestures.
type OpKind string

const (
	OpReorder OpKind = "reorder"
	OpMove    OpKind = "move"
)

// AffectedTask is a sibling whose position shifts as part of a gesture.
type AffectedTask struct {
	ID       string
	NewOrder int
}

// DragDropOperation describes one completed gesture: the primary task's
// destination plus every sibling whose order changes as a consequence.
type DragDropOperation struct {
	Kind      OpKind
	TaskID    string
	NewStatus models.TaskStatus // Move only
	NewOrder  int
	Affected  []AffectedTask
}

// DragDropResult is the structured outcome handed back to the UI layer.
// On failure the engine state is unchanged, so the caller only needs to
// roll back its own optimistic rendering.
type DragDropResult struct {
	OK  bool
	Err string
}

// HandleDragDrop turns the operation into one atomic batch update covering
// the primary task and every affected sibling. Failures come back as a
// structured result, never as a panic, so the UI can revert and show the
// message verbatim.
func (s *Service) HandleDragDrop(op DragDropOperation) DragDropResult {
	entries := make([]BatchEntry, 0, len(op.Affected)+1)

	primary := TaskUpdate{Order: intPtr(op.NewOrder)}
	if op.Kind == OpMove {
		status := op.NewStatus
		primary.Status = &status
	}
	entries = append(entries, BatchEntry{ID: op.TaskID, Fields: primary})

	for _, a := range op.Affected {
		entries = append(entries, BatchEntry{ID: a.ID, Fields: TaskUpdate{Order: intPtr(a.NewOrder)}})
	}

	if _, err := s.BatchUpdate(entries); err != nil {
		s.log.Warn("drag-drop operation rejected", "task", op.TaskID, "error", err)
		if report := s.ValidateIntegrity(); !report.Valid {
			s.log.Error("collection invariants violated after rejected drag-drop",
				"violations", len(report.Errors))
		}
		return DragDropResult{OK: false, Err: err.Error()}
	}
	return DragDropResult{OK: true}
}

func intPtr(v int) *int { return &v }

// PlanReorder computes the drag-drop operation for moving a task to a new
// position inside its own column. column must be the column's current
// tasks ordered by position, as returned by Partition.
func PlanReorder(column []models.Task, taskID string, newIndex int) (DragDropOperation, error) {
	from := -1
	for i := range column {
		if column[i].ID == taskID {
			from = i
			break
		}
	}
	if from < 0 {
		return DragDropOperation{}, &models.NotFoundError{ID: taskID}
	}
	newIndex = clampOrder(newIndex, len(column)-1)

	reordered := make([]models.Task, 0, len(column))
	reordered = append(reordered, column[:from]...)
	reordered = append(reordered, column[from+1:]...)
	reordered = append(reordered[:newIndex], append([]models.Task{column[from]}, reordered[newIndex:]...)...)

	op := DragDropOperation{Kind: OpReorder, TaskID: taskID, NewOrder: newIndex}
	for pos, t := range reordered {
		if t.ID == taskID || t.Order == pos {
			continue
		}
		op.Affected = append(op.Affected, AffectedTask{ID: t.ID, NewOrder: pos})
	}
	return op, nil
}

// PlanMove computes the drag-drop operation for moving a task from one
// column into another at the given index: the source remainder is
// renumbered closed and the destination shifted open.
func PlanMove(source, dest []models.Task, taskID string, newStatus models.TaskStatus, newIndex int) (DragDropOperation, error) {
	if !newStatus.IsValid() {
		return DragDropOperation{}, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}
	from := -1
	for i := range source {
		if source[i].ID == taskID {
			from = i
			break
		}
	}
	if from < 0 {
		return DragDropOperation{}, &models.NotFoundError{ID: taskID}
	}
	newIndex = clampOrder(newIndex, len(dest))

	op := DragDropOperation{Kind: OpMove, TaskID: taskID, NewStatus: newStatus, NewOrder: newIndex}

	pos := 0
	for i, t := range source {
		if i == from {
			continue
		}
		if t.Order != pos {
			op.Affected = append(op.Affected, AffectedTask{ID: t.ID, NewOrder: pos})
		}
		pos++
	}
	for i, t := range dest {
		want := i
		if i >= newIndex {
			want = i + 1
		}
		if t.Order != want {
			op.Affected = append(op.Affected, AffectedTask{ID: t.ID, NewOrder: want})
		}
	}
	return op, nil
}
