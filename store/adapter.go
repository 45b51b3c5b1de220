// Package store persists the task collection to a key-value byte store and
// migrates the on-disk schema across versions. It has no semantic authority
// over the collection; the board package owns that.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskwell/taskwell/internal/logger"
	"github.com/taskwell/taskwell/models"
	"github.com/taskwell/taskwell/storage"
)

const (
	// TasksKey holds the JSON array of task records.
	TasksKey = "taskwell.tasks"
	// VersionKey holds the schema version string.
	VersionKey = "taskwell.schema_version"

	// capacityThreshold is the fraction of backend capacity a save may
	// project into before being refused outright.
	capacityThreshold = 0.9
)

// taskRecord is the wire shape of a task. Dates travel as RFC 3339 strings.
type taskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	Order       int    `json:"order"`
}

func toRecord(t models.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		Order:       t.Order,
	}
}

func fromRecord(r taskRecord) models.Task {
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		createdAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
	}
	return models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		CreatedAt:   createdAt,
		Order:       r.Order,
	}
}

// Adapter serializes the task collection into the key-value store.
type Adapter struct {
	kv  storage.KV
	log logger.Logger
}

// NewAdapter wires an adapter over the given byte store.
func NewAdapter(kv storage.KV, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Adapter{kv: kv, log: log}
}

// Save writes the whole collection in one store write. It refuses before
// touching the store when the projected usage would cross 90% of capacity,
// so a rejected save leaves the stored bytes exactly as they were.
func (a *Adapter) Save(tasks []models.Task) error {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode", Err: err}
	}

	usage, err := a.kv.Usage()
	if err != nil {
		return err
	}
	var existing int64
	if prev, ok, _ := a.kv.Get(TasksKey); ok {
		existing = int64(len(prev))
	}
	projected := usage - existing + int64(len(data))
	if float64(projected) > capacityThreshold*float64(a.kv.Capacity()) {
		return &models.StorageError{Op: "save", Err: models.ErrQuotaExceeded}
	}

	if err := a.kv.Set(TasksKey, data); err != nil {
		return err
	}
	a.log.Debug("collection saved", "tasks", len(tasks), "bytes", len(data))
	return nil
}

// Load reads the stored collection. An absent key yields an empty slice.
// Unparseable bytes are logged and also yield an empty slice: corrupted
// data must never block startup.
func (a *Adapter) Load() ([]models.Task, error) {
	data, ok, err := a.kv.Get(TasksKey)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []models.Task{}, nil
	}

	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		a.log.Warn("stored task data is unparseable, starting empty", "error", err)
		return []models.Task{}, nil
	}

	tasks := make([]models.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, fromRecord(r))
	}
	return tasks, nil
}

// Version returns the stored schema version, or "" when none is recorded.
func (a *Adapter) Version() (string, error) {
	data, ok, err := a.kv.Get(VersionKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return string(data), nil
}

// EncodedSize reports how many bytes the given collection serializes to,
// without writing anything.
func (a *Adapter) EncodedSize(tasks []models.Task) int64 {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0
	}
	return int64(len(data))
}

// Usage reports current backend usage in bytes.
func (a *Adapter) Usage() (int64, error) {
	return a.kv.Usage()
}

// Capacity reports the backend capacity ceiling in bytes.
func (a *Adapter) Capacity() int64 {
	return a.kv.Capacity()
}

// String describes the adapter for diagnostics.
func (a *Adapter) String() string {
	return fmt.Sprintf("adapter(key=%s)", TasksKey)
}
