package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/taskwell/taskwell/models"
	"github.com/taskwell/taskwell/storage"
)

func newTestMigrator(t *testing.T) (*Migrator, storage.KV) {
	t.Helper()
	kv, err := storage.NewFileKV(afero.NewMemMapFs(), "/data", 0)
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return NewMigrator(kv, nil), kv
}

func storedVersion(t *testing.T, kv storage.KV) string {
	t.Helper()
	data, ok, err := kv.Get(VersionKey)
	if err != nil || !ok {
		t.Fatalf("version key missing: ok=%v err=%v", ok, err)
	}
	return string(data)
}

func TestMigrator_FreshStore(t *testing.T) {
	m, kv := newTestMigrator(t)

	if err := m.Run(); err != nil {
		t.Fatalf("Run on fresh store failed: %v", err)
	}
	if got := storedVersion(t, kv); got != CurrentSchemaVersion {
		t.Errorf("version = %q, want %q", got, CurrentSchemaVersion)
	}
}

func TestMigrator_LegacyArray(t *testing.T) {
	m, kv := newTestMigrator(t)

	legacy := `[
		{"id":"x","title":"T","status":"todo","order":0},
		{"title":"Untitled status","status":"doing"},
		{"id":"z","title":"Finished","status":"completed","order":5}
	]`
	if err := kv.Set(TasksKey, []byte(legacy)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := storedVersion(t, kv); got != CurrentSchemaVersion {
		t.Errorf("version = %q, want %q", got, CurrentSchemaVersion)
	}

	adapter := NewAdapter(kv, nil)
	tasks, err := adapter.Load()
	if err != nil {
		t.Fatalf("Load after migration failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}

	byID := map[string]models.Task{}
	for _, task := range tasks {
		byID[task.ID] = task
	}
	if got := byID["x"]; got.Status != models.StatusBacklog {
		t.Errorf("legacy 'todo' mapped to %q, want %q", got.Status, models.StatusBacklog)
	}
	if got := byID["z"]; got.Status != models.StatusDone || got.Order != 5 {
		t.Errorf("legacy 'completed' record = %+v", got)
	}

	// The record without an id gets one; fallback order is the array index.
	for _, task := range tasks {
		if task.ID == "" {
			t.Error("migrated record has empty id")
		}
		if task.CreatedAt.IsZero() {
			t.Error("migrated record has zero createdAt")
		}
		if task.Title == "Untitled status" {
			if task.Status != models.StatusInProgress {
				t.Errorf("legacy 'doing' mapped to %q", task.Status)
			}
			if task.Order != 1 {
				t.Errorf("fallback order = %d, want array index 1", task.Order)
			}
		}
	}
}

func TestMigrator_CorruptData(t *testing.T) {
	m, kv := newTestMigrator(t)

	if err := kv.Set(TasksKey, []byte("not json")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run on corrupt data failed: %v", err)
	}

	if _, ok, _ := kv.Get(TasksKey); ok {
		t.Error("corrupt bytes should be discarded")
	}
	if got := storedVersion(t, kv); got != CurrentSchemaVersion {
		t.Errorf("version = %q, want %q", got, CurrentSchemaVersion)
	}
}

func TestMigrator_CurrentVersionNoOp(t *testing.T) {
	m, kv := newTestMigrator(t)

	payload := []byte(`[{"id":"a","title":"T","status":"backlog","createdAt":"2024-01-01T00:00:00Z","order":0}]`)
	if err := kv.Set(TasksKey, payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(VersionKey, []byte(CurrentSchemaVersion)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got, _, _ := kv.Get(TasksKey)
	if string(got) != string(payload) {
		t.Error("current-version data must not be rewritten")
	}
}

func TestMigrator_StaleVersionChain(t *testing.T) {
	m, kv := newTestMigrator(t)

	if err := kv.Set(TasksKey, []byte(`[{"id":"a","title":"T","status":"backlog","createdAt":"2024-01-01T00:00:00Z","order":0}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(VersionKey, []byte("0.9.0")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var order []string
	m.Register(Step{Version: "0.9.5", Apply: func(data []byte) ([]byte, error) {
		order = append(order, "0.9.5")
		return data, nil
	}})
	m.Register(Step{Version: "1.0.0", Apply: func(data []byte) ([]byte, error) {
		order = append(order, "1.0.0")
		// Steps see and return raw bytes; prove the payload flows through.
		var records []taskRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return json.Marshal(records)
	}})

	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(order) != 2 || order[0] != "0.9.5" || order[1] != "1.0.0" {
		t.Errorf("step order = %v, want [0.9.5 1.0.0]", order)
	}
	if got := storedVersion(t, kv); got != CurrentSchemaVersion {
		t.Errorf("version = %q, want %q", got, CurrentSchemaVersion)
	}
}

func TestMigrator_FailingStepAborts(t *testing.T) {
	m, kv := newTestMigrator(t)

	original := []byte(`[{"id":"a","title":"T","status":"backlog","createdAt":"2024-01-01T00:00:00Z","order":0}]`)
	if err := kv.Set(TasksKey, original); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(VersionKey, []byte("0.9.0")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	m.Register(Step{Version: "0.9.5", Apply: func(data []byte) ([]byte, error) {
		return []byte("partial"), nil
	}})
	m.Register(Step{Version: "1.0.0", Apply: func(data []byte) ([]byte, error) {
		return nil, errors.New("boom")
	}})

	err := m.Run()
	if err == nil {
		t.Fatal("Run with failing step should fail")
	}
	var me *models.MigrationError
	if !errors.As(err, &me) {
		t.Errorf("expected MigrationError, got %v", err)
	}

	// No partial write, no version stamp.
	got, _, _ := kv.Get(TasksKey)
	if string(got) != string(original) {
		t.Error("failed chain must leave stored data untouched")
	}
	if got, _, _ := kv.Get(VersionKey); string(got) != "0.9.0" {
		t.Errorf("version stamp = %q, want untouched 0.9.0", got)
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0", "1.0.0", 0},
		{"0.9.0", "1.0.0", -1},
		{"1.0.1", "1.0.0", 1},
		{"1.10.0", "1.9.0", 1},
	}
	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
