package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/logger"
	"github.com/taskwell/taskwell/models"
	"github.com/taskwell/taskwell/storage"
)

// CurrentSchemaVersion is the schema this build reads and writes.
const CurrentSchemaVersion = "1.0.0"

// Step transforms the stored task bytes from one schema version to the
// next. Steps are pure with respect to the store: they only see bytes.
type Step struct {
	// Version is the schema version this step migrates TO.
	Version string
	Apply   func(data []byte) ([]byte, error)
}

// builtinSteps is the ordered chain of registered migrations. The 1.0.0
// baseline is produced by legacy normalization, not a step, so the chain
// starts empty until a schema change ships.
var builtinSteps []Step

// Migrator brings whatever is stored up to CurrentSchemaVersion. It runs
// once at startup, before the board service loads the collection.
type Migrator struct {
	kv    storage.KV
	log   logger.Logger
	steps []Step
}

// NewMigrator creates a migrator with the built-in step chain.
func NewMigrator(kv storage.KV, log logger.Logger) *Migrator {
	if log == nil {
		log = logger.NewNoOp()
	}
	m := &Migrator{kv: kv, log: log}
	m.steps = append(m.steps, builtinSteps...)
	return m
}

// Register appends a migration step. Steps must be registered in
// increasing version order.
func (m *Migrator) Register(step Step) {
	m.steps = append(m.steps, step)
}

// Run executes the migration state machine:
//
//	no version stored  -> normalize legacy records, stamp current
//	stale version      -> apply steps in (stored, current], stamp current
//	current version    -> no-op
//	unparseable bytes  -> discard, stamp current
//
// A failing step aborts the whole run with no partial write and no
// version stamp; the previously stored data stays untouched.
func (m *Migrator) Run() error {
	stored, err := m.storedVersion()
	if err != nil {
		return err
	}

	switch {
	case stored == "":
		return m.migrateLegacy()
	case stored == CurrentSchemaVersion:
		return nil
	case CompareVersions(stored, CurrentSchemaVersion) > 0:
		m.log.Warn("stored schema is newer than this build, leaving data untouched",
			"stored", stored, "current", CurrentSchemaVersion)
		return nil
	default:
		return m.migrateChain(stored)
	}
}

func (m *Migrator) storedVersion() (string, error) {
	data, ok, err := m.kv.Get(VersionKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(string(data)), nil
}

func (m *Migrator) stamp() error {
	return m.kv.Set(VersionKey, []byte(CurrentSchemaVersion))
}

// migrateLegacy handles the NoVersion state: nothing stored yet, a legacy
// unversioned array, or bytes that cannot be parsed at all.
func (m *Migrator) migrateLegacy() error {
	data, ok, err := m.kv.Get(TasksKey)
	if err != nil {
		return err
	}
	if !ok || len(data) == 0 {
		return m.stamp()
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		// CorruptData: nothing to migrate, start from an empty collection.
		m.log.Warn("stored data is unparseable, discarding", "error", err)
		if err := m.kv.Delete(TasksKey); err != nil {
			return err
		}
		return m.stamp()
	}

	records := make([]taskRecord, 0, len(raw))
	for i, entry := range raw {
		records = append(records, normalizeLegacyRecord(entry, i))
	}

	normalized, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &models.MigrationError{Version: CurrentSchemaVersion, Err: err}
	}
	if err := m.kv.Set(TasksKey, normalized); err != nil {
		return err
	}
	m.log.Info("legacy data normalized", "tasks", len(records))
	return m.stamp()
}

// migrateChain applies every registered step in (stored, current], in
// order, accumulating the result in memory. Only a fully successful chain
// is written back and stamped.
func (m *Migrator) migrateChain(stored string) error {
	data, ok, err := m.kv.Get(TasksKey)
	if err != nil {
		return err
	}
	if !ok {
		data = []byte("[]")
	}

	applied := 0
	for _, step := range m.steps {
		if CompareVersions(step.Version, stored) <= 0 {
			continue
		}
		if CompareVersions(step.Version, CurrentSchemaVersion) > 0 {
			break
		}
		next, err := step.Apply(data)
		if err != nil {
			return &models.MigrationError{Version: step.Version, Err: err}
		}
		data = next
		applied++
		m.log.Debug("migration step applied", "to", step.Version)
	}

	if applied > 0 {
		if err := m.kv.Set(TasksKey, data); err != nil {
			return err
		}
	}
	m.log.Info("schema migrated", "from", stored, "to", CurrentSchemaVersion, "steps", applied)
	return m.stamp()
}

// legacyStatusMap folds the free-text status values of pre-versioned data
// onto the closed enumeration.
var legacyStatusMap = map[string]models.TaskStatus{
	"backlog":     models.StatusBacklog,
	"todo":        models.StatusBacklog,
	"to-do":       models.StatusBacklog,
	"pending":     models.StatusBacklog,
	"new":         models.StatusBacklog,
	"in-progress": models.StatusInProgress,
	"inprogress":  models.StatusInProgress,
	"doing":       models.StatusInProgress,
	"active":      models.StatusInProgress,
	"done":        models.StatusDone,
	"completed":   models.StatusDone,
	"complete":    models.StatusDone,
	"finished":    models.StatusDone,
}

// normalizeLegacyRecord defaults missing fields and maps legacy values so
// every record matches the current schema. index supplies the fallback
// order for records that never had one.
func normalizeLegacyRecord(entry map[string]interface{}, index int) taskRecord {
	r := taskRecord{Order: index}

	if v, ok := entry["id"].(string); ok && v != "" {
		r.ID = v
	} else {
		r.ID = uuid.NewString()
	}
	if v, ok := entry["title"].(string); ok {
		r.Title = strings.TrimSpace(v)
	}
	if v, ok := entry["description"].(string); ok {
		r.Description = strings.TrimSpace(v)
	}

	status := models.StatusBacklog
	if v, ok := entry["status"].(string); ok {
		if mapped, known := legacyStatusMap[strings.ToLower(strings.TrimSpace(v))]; known {
			status = mapped
		}
	}
	r.Status = string(status)

	if v, ok := entry["order"].(float64); ok && v >= 0 {
		r.Order = int(v)
	}

	r.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if v, ok := entry["createdAt"].(string); ok {
		if _, err := time.Parse(time.RFC3339Nano, v); err == nil {
			r.CreatedAt = v
		} else if t, err := time.Parse(time.RFC3339, v); err == nil {
			r.CreatedAt = t.UTC().Format(time.RFC3339Nano)
		}
	}
	return r
}

// CompareVersions compares two dotted numeric version strings, returning
// -1, 0 or 1. Missing segments count as zero, so "1.0" equals "1.0.0".
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
