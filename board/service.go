// Package board implements the task engine: the sole in-memory authority
// over the task collection, per-column ordering, atomic batch updates for
// drag-and-drop, integrity validation and repair, and the observer surface
// the UI layers subscribe to.
package board

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/logger"
	"github.com/taskwell/taskwell/models"
	"github.com/taskwell/taskwell/store"
)

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Order       *int
}

// BatchEntry pairs a task ID with the fields to change on it.
type BatchEntry struct {
	ID     string
	Fields TaskUpdate
}

// IntegrityReport lists every invariant violation found in the collection.
type IntegrityReport struct {
	Valid  bool
	Errors []string
}

// CleanupResult reports what a cleanup pass removed.
type CleanupResult struct {
	RemovedCount int
	BytesSaved   int64
}

// StorageInfo describes current backend usage.
type StorageInfo struct {
	UsedBytes     int64
	CapacityBytes int64
	TaskCount     int
	PercentUsed   float64
}

// Service owns the canonical task collection. Every mutation that succeeds
// performs exactly one synchronous persistence write; reads never persist.
// All methods are safe for concurrent use.
type Service struct {
	mu      sync.RWMutex
	tasks   []models.Task
	adapter *store.Adapter
	log     logger.Logger
	metrics *metrics

	obsMu   sync.Mutex
	obs     map[int]func()
	nextObs int
}

// NewService loads the collection through the adapter and returns the
// engine. The schema migrator must have run first. If the loaded data
// violates the ordering or field invariants, it is repaired in place and
// the repaired collection persisted.
func NewService(adapter *store.Adapter, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewNoOp()
	}
	tasks, err := adapter.Load()
	if err != nil {
		return nil, err
	}
	s := &Service{
		tasks:   tasks,
		adapter: adapter,
		log:     log,
		metrics: newMetrics(),
		obs:     make(map[int]func()),
	}

	if report := s.ValidateIntegrity(); !report.Valid {
		s.log.Warn("loaded collection violates invariants, repairing",
			"violations", len(report.Errors))
		if !s.RepairIntegrity() {
			s.log.Error("automatic repair failed; reload the application")
		}
	}
	return s, nil
}

// Subscribe registers fn to be called after every successful mutation.
// The returned function cancels the subscription.
func (s *Service) Subscribe(fn func()) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.obs[id] = fn
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.obs, id)
	}
}

func (s *Service) notify() {
	s.obsMu.Lock()
	fns := make([]func(), 0, len(s.obs))
	for _, fn := range s.obs {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Snapshot returns a copy of the whole collection, ordered by board column
// then by position within the column.
func (s *Service) Snapshot() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	rank := map[models.TaskStatus]int{}
	for i, status := range models.AllStatuses {
		rank[status] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return rank[out[i].Status] < rank[out[j].Status]
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// Partition returns a copy of one column, ordered by position.
func (s *Service) Partition(status models.TaskStatus) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedPartition(s.tasks, status)
}

// GetTask looks a task up by ID. Pure read, no side effects.
func (s *Service) GetTask(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// indexOf returns the slice index of id, or -1. Callers hold the lock.
func (s *Service) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateTask validates the input and appends a new Backlog task at the end
// of the Backlog column. The collection is untouched when validation fails.
func (s *Service) CreateTask(title, description string) (models.Task, error) {
	defer s.metrics.record("create", time.Now())

	if err := models.ValidateTitle(title); err != nil {
		return models.Task{}, err
	}
	if err := models.ValidateDescription(description); err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       models.NormalizeTitle(title),
		Description: models.NormalizeDescription(description),
		Status:      models.StatusBacklog,
		CreatedAt:   time.Now().UTC(),
		Order:       countInStatus(s.tasks, models.StatusBacklog),
	}
	s.tasks = append(s.tasks, task)
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		// The in-memory task exists but is not persisted; the next
		// successful save reconciles the two.
		return models.Task{}, err
	}
	s.log.Debug("task created", "id", task.ID, "title", task.Title)
	s.notify()
	return task, nil
}

// UpdateTask applies a partial update to one task and re-persists. Supplied
// title and description values are re-validated; no order maintenance is
// performed beyond what the caller asks for.
func (s *Service) UpdateTask(id string, upd TaskUpdate) (models.Task, error) {
	defer s.metrics.record("update", time.Now())

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Task{}, &models.NotFoundError{ID: id}
	}
	candidate := s.tasks[i]
	if err := applyUpdate(&candidate, upd); err != nil {
		s.mu.Unlock()
		return models.Task{}, err
	}
	s.tasks[i] = candidate
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		return models.Task{}, err
	}
	s.notify()
	return candidate, nil
}

// applyUpdate validates and applies a partial update to a task copy.
func applyUpdate(task *models.Task, upd TaskUpdate) error {
	if upd.Title != nil {
		if err := models.ValidateTitle(*upd.Title); err != nil {
			return err
		}
		task.Title = models.NormalizeTitle(*upd.Title)
	}
	if upd.Description != nil {
		if err := models.ValidateDescription(*upd.Description); err != nil {
			return err
		}
		task.Description = models.NormalizeDescription(*upd.Description)
	}
	if upd.Status != nil {
		if !upd.Status.IsValid() {
			return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *upd.Status)}
		}
		task.Status = *upd.Status
	}
	if upd.Order != nil {
		if *upd.Order < 0 {
			return &models.ValidationError{Field: "order", Message: "order must not be negative"}
		}
		task.Order = *upd.Order
	}
	return nil
}

// DeleteTask removes a task and compacts its former column so the ordering
// invariant holds without waiting for a repair pass. Returns whether a
// removal happened.
func (s *Service) DeleteTask(id string) (bool, error) {
	defer s.metrics.record("delete", time.Now())

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	status := s.tasks[i].Status
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	compactStatus(s.tasks, status)
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		return true, err
	}
	s.log.Debug("task deleted", "id", id)
	s.notify()
	return true, nil
}

// ChangeStatus moves a task to another column. When newOrder is nil the
// task is appended at the end of the target column; otherwise room is made
// at that position. The source column is left with a gap; use MoveTask for
// a fully compacting move.
func (s *Service) ChangeStatus(id string, newStatus models.TaskStatus, newOrder *int) (models.Task, error) {
	defer s.metrics.record("changeStatus", time.Now())

	if !newStatus.IsValid() {
		return models.Task{}, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Task{}, &models.NotFoundError{ID: id}
	}

	targetCount := countInStatus(s.tasks, newStatus)
	if s.tasks[i].Status == newStatus {
		targetCount--
	}
	order := targetCount
	if newOrder != nil {
		order = clampOrder(*newOrder, targetCount)
	}

	if s.tasks[i].Status != newStatus {
		shiftUpFrom(s.tasks, newStatus, order, id)
	}
	s.tasks[i].Status = newStatus
	s.tasks[i].Order = order
	task := s.tasks[i]
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		return models.Task{}, err
	}
	s.notify()
	return task, nil
}

// ReorderTask moves a task to a new position within its own column,
// shifting its neighbors so the column stays contiguous.
func (s *Service) ReorderTask(id string, newOrder int) (models.Task, error) {
	defer s.metrics.record("reorder", time.Now())

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Task{}, &models.NotFoundError{ID: id}
	}

	status := s.tasks[i].Status
	old := s.tasks[i].Order
	target := clampOrder(newOrder, countInStatus(s.tasks, status)-1)

	switch {
	case target > old:
		for j := range s.tasks {
			if s.tasks[j].Status == status && s.tasks[j].Order > old && s.tasks[j].Order <= target {
				s.tasks[j].Order--
			}
		}
	case target < old:
		for j := range s.tasks {
			if s.tasks[j].Status == status && s.tasks[j].Order >= target && s.tasks[j].Order < old {
				s.tasks[j].Order++
			}
		}
	}
	s.tasks[i].Order = target
	task := s.tasks[i]
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		return models.Task{}, err
	}
	s.notify()
	return task, nil
}

// MoveTask performs a full cross-column move: the source column is
// compacted over the vacated position and room is made in the destination.
// This is the only primitive that preserves the ordering invariant in both
// columns at once.
func (s *Service) MoveTask(id string, newStatus models.TaskStatus, newOrder int) (models.Task, error) {
	defer s.metrics.record("move", time.Now())

	if !newStatus.IsValid() {
		return models.Task{}, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Task{}, &models.NotFoundError{ID: id}
	}

	if s.tasks[i].Status == newStatus {
		s.mu.Unlock()
		return s.ReorderTask(id, newOrder)
	}

	oldStatus := s.tasks[i].Status
	oldOrder := s.tasks[i].Order
	target := clampOrder(newOrder, countInStatus(s.tasks, newStatus))

	closeGapAfter(s.tasks, oldStatus, oldOrder, id)
	shiftUpFrom(s.tasks, newStatus, target, id)
	s.tasks[i].Status = newStatus
	s.tasks[i].Order = target
	task := s.tasks[i]
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		return models.Task{}, err
	}
	s.notify()
	return task, nil
}

// BatchUpdate applies every entry or none. All entries are validated
// against the pre-call state before anything is applied; on any failure,
// including a failed persistence write, the collection is restored to its
// snapshot. A successful batch performs one persistence write total.
func (s *Service) BatchUpdate(entries []BatchEntry) ([]models.Task, error) {
	defer s.metrics.record("batchUpdate", time.Now())

	s.mu.Lock()

	// Validate everything up front against the pre-call state.
	for _, e := range entries {
		i := s.indexOf(e.ID)
		if i < 0 {
			s.mu.Unlock()
			return nil, &models.NotFoundError{ID: e.ID}
		}
		candidate := s.tasks[i]
		if err := applyUpdate(&candidate, e.Fields); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("batch entry %s: %w", e.ID, err)
		}
	}

	snapshot := make([]models.Task, len(s.tasks))
	copy(snapshot, s.tasks)

	updated := make([]models.Task, 0, len(entries))
	for _, e := range entries {
		i := s.indexOf(e.ID)
		if err := applyUpdate(&s.tasks[i], e.Fields); err != nil {
			s.tasks = snapshot
			s.mu.Unlock()
			return nil, fmt.Errorf("batch entry %s: %w", e.ID, err)
		}
		updated = append(updated, s.tasks[i])
	}

	if err := s.adapter.Save(s.tasks); err != nil {
		s.tasks = snapshot
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Unlock()
	s.notify()
	return updated, nil
}

// ValidateIntegrity scans the collection and reports every invariant
// violation without mutating anything.
func (s *Service) ValidateIntegrity() IntegrityReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []string
	seen := make(map[string]bool, len(s.tasks))
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ID == "" {
			errs = append(errs, "task with empty id")
		} else if seen[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate id %s", t.ID))
		}
		seen[t.ID] = true

		if strings.TrimSpace(t.Title) == "" {
			errs = append(errs, fmt.Sprintf("task %s has empty title", t.ID))
		} else if len([]rune(t.Title)) > models.MaxTitleLen {
			errs = append(errs, fmt.Sprintf("task %s title exceeds %d characters", t.ID, models.MaxTitleLen))
		}
		if len([]rune(t.Description)) > models.MaxDescriptionLen {
			errs = append(errs, fmt.Sprintf("task %s description exceeds %d characters", t.ID, models.MaxDescriptionLen))
		}
		if !t.Status.IsValid() {
			errs = append(errs, fmt.Sprintf("task %s has invalid status %q", t.ID, t.Status))
		}
	}

	for _, status := range models.AllStatuses {
		col := sortedPartition(s.tasks, status)
		for want, t := range col {
			if t.Order != want {
				errs = append(errs, fmt.Sprintf("column %s order is not contiguous at position %d (found %d)", status, want, t.Order))
				break
			}
		}
	}

	return IntegrityReport{Valid: len(errs) == 0, Errors: errs}
}

// RepairIntegrity drops unsalvageable tasks (missing id or title, invalid
// status), deduplicates ids keeping the first occurrence, truncates
// over-length text fields and renumbers every column to 0..N-1 by existing
// relative order. Running it on a valid collection changes nothing.
func (s *Service) RepairIntegrity() bool {
	defer s.metrics.record("repair", time.Now())

	s.mu.Lock()
	kept := make([]models.Task, 0, len(s.tasks))
	seen := make(map[string]bool, len(s.tasks))
	dropped := 0
	for _, t := range s.tasks {
		if t.ID == "" || strings.TrimSpace(t.Title) == "" || !t.Status.IsValid() || seen[t.ID] {
			dropped++
			continue
		}
		seen[t.ID] = true
		if r := []rune(t.Title); len(r) > models.MaxTitleLen {
			t.Title = string(r[:models.MaxTitleLen])
		}
		if r := []rune(t.Description); len(r) > models.MaxDescriptionLen {
			t.Description = string(r[:models.MaxDescriptionLen])
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	compactAll(s.tasks)
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		s.log.Error("repair could not be persisted", "error", err)
		return false
	}
	if dropped > 0 {
		s.log.Warn("repair dropped unsalvageable tasks", "count", dropped)
	}
	s.notify()
	return true
}

// CleanupOldTasks removes Done tasks created before the age cutoff,
// compacts every column and persists.
func (s *Service) CleanupOldTasks(maxAgeDays int) (CleanupResult, error) {
	defer s.metrics.record("cleanup", time.Now())

	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	s.mu.Lock()
	before := s.adapter.EncodedSize(s.tasks)
	kept := make([]models.Task, 0, len(s.tasks))
	removed := 0
	for _, t := range s.tasks {
		if t.Status == models.StatusDone && t.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	compactAll(s.tasks)
	after := s.adapter.EncodedSize(s.tasks)
	err := s.adapter.Save(s.tasks)
	s.mu.Unlock()

	if err != nil {
		return CleanupResult{}, err
	}
	result := CleanupResult{RemovedCount: removed, BytesSaved: before - after}
	s.log.Info("cleanup finished", "removed", result.RemovedCount, "bytesSaved", result.BytesSaved)
	if removed > 0 {
		s.notify()
	}
	return result, nil
}

// StorageInfo reports backend usage alongside the collection size.
func (s *Service) StorageInfo() (StorageInfo, error) {
	s.mu.RLock()
	count := len(s.tasks)
	s.mu.RUnlock()

	used, err := s.adapter.Usage()
	if err != nil {
		return StorageInfo{}, err
	}
	capacity := s.adapter.Capacity()
	info := StorageInfo{UsedBytes: used, CapacityBytes: capacity, TaskCount: count}
	if capacity > 0 {
		info.PercentUsed = 100 * float64(used) / float64(capacity)
	}
	return info, nil
}

// DataVersion returns the persisted schema version string.
func (s *Service) DataVersion() (string, error) {
	return s.adapter.Version()
}

// Metrics returns the per-operation counters and average latencies.
func (s *Service) Metrics() MetricsSnapshot {
	return s.metrics.snapshot()
}

// Reload replaces the in-memory collection with whatever is persisted.
// Used by the file watcher when another process writes the store.
func (s *Service) Reload() error {
	tasks, err := s.adapter.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	s.notify()
	return nil
}
