package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tasket/tasket-server/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uuid.UUID, preload ...string) (*models.Task, error)

	// List retrieves non-trashed tasks matching the filter
	List(filter TaskFilter) ([]models.Task, error)

	// FindTrashedByCreator returns the creator's trashed tasks, most
	// recently trashed first
	FindTrashedByCreator(creatorID uuid.UUID) ([]models.Task, error)

	// FindExpiredTrashed returns tasks trashed before the cutoff
	FindExpiredTrashed(cutoff time.Time) ([]models.Task, error)

	// Update saves a task
	Update(task *models.Task) error

	// UpdateFields applies a partial update as a single row write
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error

	// Delete removes the task row. Deleting an absent row is a no-op.
	Delete(id uuid.UUID) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ActorID      uuid.UUID
	ActorIsAdmin bool
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedTo   *uuid.UUID
	DepartmentID *uuid.UUID
	DueFrom      *time.Time
	DueTo        *time.Time
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	Create(employee *models.Employee) error
	FindByID(id uuid.UUID) (*models.Employee, error)
	FindByEmail(email string) (*models.Employee, error)
	Count() (int64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByEmployee(employeeID uuid.UUID) ([]models.Notification, error)
	MarkRead(id, employeeID uuid.UUID) error
	MarkAllRead(employeeID uuid.UUID) error
	Delete(id, employeeID uuid.UUID) error
}
