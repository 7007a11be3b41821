package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/tasket/tasket-server/internal/models"
)

// CreateTaskRequest is the JSON document carried in the "data" field of the
// multipart create request. Attachment files travel as separate form parts.
type CreateTaskRequest struct {
	Title          string              `json:"title" binding:"required"`
	Description    string              `json:"description"`
	AssignedTo     *uuid.UUID          `json:"assigned_to"`
	DepartmentID   *uuid.UUID          `json:"department_id"`
	ProjectID      *uuid.UUID          `json:"project_id"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	DueDate        *time.Time          `json:"due_date"`
	StartDate      *time.Time          `json:"start_date"`
	EstimatedHours *float64            `json:"estimated_hours"`
	Tags           []string            `json:"tags"`
}

// UpdateTaskRequest carries a partial update; nil fields are left untouched.
// Attachments, when present, replace the stored list; files whose URLs
// disappear from the list are deleted from storage.
type UpdateTaskRequest struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	AssignedTo     *uuid.UUID             `json:"assigned_to"`
	ClearAssignee  bool                   `json:"clear_assignee"`
	DepartmentID   *uuid.UUID             `json:"department_id"`
	ProjectID      *uuid.UUID             `json:"project_id"`
	Status         *models.TaskStatus     `json:"status"`
	Priority       *models.TaskPriority   `json:"priority"`
	DueDate        *time.Time             `json:"due_date"`
	StartDate      *time.Time             `json:"start_date"`
	CompletedDate  *time.Time             `json:"completed_date"`
	EstimatedHours *float64               `json:"estimated_hours"`
	ActualHours    *float64               `json:"actual_hours"`
	Tags           []string               `json:"tags"`
	Attachments    *models.AttachmentList `json:"attachments"`
}
