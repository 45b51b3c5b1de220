package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the workflow column a task lives in.
// The set is closed; anything else is rejected at the validation layer
// and mapped onto this set by the schema migrator.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// AllStatuses lists every valid status in board order.
var AllStatuses = []TaskStatus{StatusBacklog, StatusInProgress, StatusDone}

// IsValid reports whether s is a member of the closed status set.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusDone:
		return true
	}
	return false
}

const (
	// MaxTitleLen is the maximum length of a task title after trimming.
	MaxTitleLen = 128
	// MaxDescriptionLen is the maximum length of a task description after trimming.
	MaxDescriptionLen = 256
)

// Task is the sole persisted entity. ID and CreatedAt are immutable once
// assigned; Order is unique within the task's status partition and forms a
// contiguous 0..N-1 run there.
type Task struct {
	ID          string     `json:"id" validate:"required,uuid4"`
	Title       string     `json:"title" validate:"required,min=1,max=128"`
	Description string     `json:"description,omitempty" validate:"max=256"`
	Status      TaskStatus `json:"status" validate:"required,oneof=backlog in-progress done"`
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`
	Order       int        `json:"order" validate:"min=0"`
}

// TaskList is the serialization envelope for a collection of tasks.
type TaskList struct {
	Tasks      []Task `json:"tasks" validate:"dive"`
	TotalCount int    `json:"totalCount"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// NormalizeTitle trims surrounding whitespace from a title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// NormalizeDescription trims a description; an all-whitespace description
// collapses to the empty string, which the store treats as absent.
func NormalizeDescription(description string) string {
	return strings.TrimSpace(description)
}

// ValidateTitle checks the title constraints against the trimmed value.
func ValidateTitle(title string) error {
	trimmed := NormalizeTitle(title)
	if trimmed == "" {
		return &ValidationError{Field: "title", Message: "title must not be empty"}
	}
	if len([]rune(trimmed)) > MaxTitleLen {
		return &ValidationError{Field: "title", Message: "title must be at most 128 characters"}
	}
	return nil
}

// ValidateDescription checks the description constraints against the trimmed value.
func ValidateDescription(description string) error {
	trimmed := NormalizeDescription(description)
	if len([]rune(trimmed)) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Message: "description must be at most 256 characters"}
	}
	return nil
}

// ValidateStruct runs the tag-based validation rules on any tagged struct.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	if err := validate.Struct(s); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		messages := make([]string, 0, len(verrs))
		for _, e := range verrs {
			messages = append(messages, "field '"+e.StructNamespace()+"' failed rule '"+e.Tag()+"'")
		}
		return &ValidationError{Field: "task", Message: strings.Join(messages, "; ")}
	}
	return nil
}

// NewTask builds a task with the given identity and sensible defaults.
// The caller is responsible for validating and assigning the partition order.
func NewTask(id, title string) Task {
	return Task{
		ID:        id,
		Title:     title,
		Status:    StatusBacklog,
		CreatedAt: time.Now().UTC(),
	}
}
