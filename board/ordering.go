package board

import (
	"sort"

	"github.com/taskwell/taskwell/models"
)

// countInStatus returns how many tasks occupy the given partition.
func countInStatus(tasks []models.Task, status models.TaskStatus) int {
	n := 0
	for i := range tasks {
		if tasks[i].Status == status {
			n++
		}
	}
	return n
}

// sortedPartition returns a copy of the partition ordered by Order.
func sortedPartition(tasks []models.Task, status models.TaskStatus) []models.Task {
	out := make([]models.Task, 0)
	for i := range tasks {
		if tasks[i].Status == status {
			out = append(out, tasks[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// shiftUpFrom makes room at position `from` in a partition by bumping every
// task at or past it up by one. skipID excludes the task being placed.
func shiftUpFrom(tasks []models.Task, status models.TaskStatus, from int, skipID string) {
	for i := range tasks {
		if tasks[i].Status == status && tasks[i].ID != skipID && tasks[i].Order >= from {
			tasks[i].Order++
		}
	}
}

// closeGapAfter compacts a partition after a removal at position `at` by
// pulling every task past it down by one. skipID excludes the moved task.
func closeGapAfter(tasks []models.Task, status models.TaskStatus, at int, skipID string) {
	for i := range tasks {
		if tasks[i].Status == status && tasks[i].ID != skipID && tasks[i].Order > at {
			tasks[i].Order--
		}
	}
}

// compactStatus renumbers a partition to the contiguous run 0..N-1,
// preserving the existing relative order.
func compactStatus(tasks []models.Task, status models.TaskStatus) {
	idx := make([]int, 0)
	for i := range tasks {
		if tasks[i].Status == status {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return tasks[idx[a]].Order < tasks[idx[b]].Order })
	for pos, i := range idx {
		tasks[i].Order = pos
	}
}

// compactAll renumbers every partition.
func compactAll(tasks []models.Task) {
	for _, status := range models.AllStatuses {
		compactStatus(tasks, status)
	}
}

// clampOrder bounds a requested position to the valid range for a
// partition of size n when inserting (0..n).
func clampOrder(order, n int) int {
	if order < 0 {
		return 0
	}
	if order > n {
		return n
	}
	return order
}
