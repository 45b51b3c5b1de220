package storage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/taskwell/taskwell/models"
)

func newTestKV(t *testing.T, capacity int64) *FileKV {
	t.Helper()
	kv, err := NewFileKV(afero.NewMemMapFs(), "/data", capacity)
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	return kv
}

func TestFileKV_SetGetDelete(t *testing.T) {
	kv := newTestKV(t, 0)
	defer func() { _ = kv.Close() }()

	if _, ok, err := kv.Get("taskwell.tasks"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v, want absent", ok, err)
	}

	want := []byte(`[{"id":"a"}]`)
	if err := kv.Set("taskwell.tasks", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := kv.Get("taskwell.tasks")
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	if err := kv.Delete("taskwell.tasks"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := kv.Get("taskwell.tasks"); ok {
		t.Error("key should be absent after Delete")
	}
	if err := kv.Delete("taskwell.tasks"); err != nil {
		t.Errorf("Delete of absent key should be a no-op, got %v", err)
	}
}

func TestFileKV_Usage(t *testing.T) {
	kv := newTestKV(t, 0)
	defer func() { _ = kv.Close() }()

	if err := kv.Set("a", make([]byte, 100)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set("b", make([]byte, 50)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	usage, err := kv.Usage()
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if usage != 150 {
		t.Errorf("Usage = %d, want 150", usage)
	}

	// Overwriting a key replaces its contribution, not adds to it.
	if err := kv.Set("a", make([]byte, 10)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	usage, _ = kv.Usage()
	if usage != 60 {
		t.Errorf("Usage after overwrite = %d, want 60", usage)
	}
}

func TestFileKV_QuotaExceeded(t *testing.T) {
	kv := newTestKV(t, 100)
	defer func() { _ = kv.Close() }()

	if err := kv.Set("a", make([]byte, 80)); err != nil {
		t.Fatalf("Set under capacity failed: %v", err)
	}

	err := kv.Set("b", make([]byte, 30))
	if err == nil {
		t.Fatal("Set over capacity should fail")
	}
	if !errors.Is(err, models.ErrQuotaExceeded) {
		t.Errorf("expected quota error, got %v", err)
	}

	// Replacing a key with a smaller value must still be possible.
	if err := kv.Set("a", make([]byte, 20)); err != nil {
		t.Errorf("shrinking overwrite should succeed, got %v", err)
	}
}

func TestFileKV_RejectsPathKeys(t *testing.T) {
	kv := newTestKV(t, 0)
	defer func() { _ = kv.Close() }()

	for _, key := range []string{"", "a/b", `a\b`, "../escape"} {
		if err := kv.Set(key, []byte("x")); err == nil {
			t.Errorf("Set(%q) should be rejected", key)
		}
	}
}
