package cmd

import (
	"fmt"
	"strings"

	"github.com/taskwell/taskwell/board"
	"github.com/taskwell/taskwell/models"
)

// findTask resolves a full ID or an unambiguous ID prefix to a task.
func findTask(svc *board.Service, idOrPrefix string) (models.Task, error) {
	if task, ok := svc.GetTask(idOrPrefix); ok {
		return task, nil
	}

	var matches []models.Task
	for _, task := range svc.Snapshot() {
		if strings.HasPrefix(task.ID, idOrPrefix) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, &models.NotFoundError{ID: idOrPrefix}
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("id prefix %q is ambiguous (%d matches)", idOrPrefix, len(matches))
	}
}

// parseStatus validates a user-supplied column name.
func parseStatus(s string) (models.TaskStatus, error) {
	status := models.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown status %q (use backlog, in-progress or done)", s)
	}
	return status, nil
}
