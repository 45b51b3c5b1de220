package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTaskStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []TaskStatus{"", "todo", "doing", "completed", "BACKLOG"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"ok", "Buy milk", false},
		{"empty", "", true},
		{"whitespace only", "   \t ", true},
		{"max length", strings.Repeat("x", 128), false},
		{"too long", strings.Repeat("x", 129), true},
		{"padded fits after trim", "  " + strings.Repeat("x", 128) + "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateDescription(t *testing.T) {
	if err := ValidateDescription(""); err != nil {
		t.Errorf("empty description should be valid: %v", err)
	}
	if err := ValidateDescription(strings.Repeat("d", 256)); err != nil {
		t.Errorf("256-char description should be valid: %v", err)
	}
	if err := ValidateDescription(strings.Repeat("d", 257)); err == nil {
		t.Error("257-char description should fail validation")
	}
}

func TestValidateStruct(t *testing.T) {
	task := Task{
		ID:        uuid.NewString(),
		Title:     "Valid task",
		Status:    StatusBacklog,
		CreatedAt: time.Now().UTC(),
		Order:     0,
	}
	if err := ValidateStruct(task); err != nil {
		t.Fatalf("valid task failed validation: %v", err)
	}

	bad := task
	bad.Status = "todo"
	if err := ValidateStruct(bad); err == nil {
		t.Error("freeform status should fail validation")
	}

	bad = task
	bad.ID = "not-a-uuid"
	if err := ValidateStruct(bad); err == nil {
		t.Error("non-uuid ID should fail validation")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	storageErr := &StorageError{Op: "save", Err: ErrQuotaExceeded}
	if !errors.Is(storageErr, ErrQuotaExceeded) {
		t.Error("StorageError should unwrap to ErrQuotaExceeded")
	}

	if !IsNotFound(&NotFoundError{ID: "x"}) {
		t.Error("IsNotFound should match NotFoundError")
	}
	if IsNotFound(storageErr) {
		t.Error("IsNotFound should not match StorageError")
	}
}
