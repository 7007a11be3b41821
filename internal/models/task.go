package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPlanned    TaskStatus = "planned"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
	TaskStatusTrashed    TaskStatus = "trashed"
)

// Valid reports whether s is a known lifecycle status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPlanned, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusCancelled, TaskStatusTrashed:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task is the unit of work. Trash is its soft-delete state: there is no
// gorm.DeletedAt here because permanent deletion must remove the row.
type Task struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	AssignedTo   *uuid.UUID   `gorm:"type:uuid;index" json:"assigned_to"`
	CreatedBy    uuid.UUID    `gorm:"type:uuid;not null;index" json:"created_by"`
	DepartmentID *uuid.UUID   `gorm:"type:uuid;index" json:"department_id"`
	ProjectID    *uuid.UUID   `gorm:"type:uuid;index" json:"project_id"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'planned';index" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`

	DueDate        *time.Time `json:"due_date"`
	StartDate      *time.Time `json:"start_date"`
	CompletedDate  *time.Time `json:"completed_date"`
	EstimatedHours float64    `gorm:"not null;default:1" json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`

	Tags        StringList     `gorm:"type:jsonb" json:"tags"`
	Attachments AttachmentList `gorm:"type:jsonb" json:"attachments"`

	// Trash lifecycle. StatusBeforeTrash is set exactly while the task sits
	// in trash; TrashedAt is cleared on restore.
	TrashedAt         *time.Time  `gorm:"index" json:"trashed_at"`
	RestoredAt        *time.Time  `json:"restored_at"`
	StatusBeforeTrash *TaskStatus `gorm:"type:varchar(20)" json:"status_before_trash"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	AssignedToEmployee *Employee   `gorm:"foreignKey:AssignedTo" json:"assigned_to_employee,omitempty"`
	CreatedByEmployee  *Employee   `gorm:"foreignKey:CreatedBy" json:"created_by_employee,omitempty"`
	Department         *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Project            *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Trashed reports whether the task currently sits in the trash.
func (t *Task) Trashed() bool {
	return t.Status == TaskStatusTrashed
}
