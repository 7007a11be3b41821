package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tasket/tasket-server/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uuid.UUID, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves non-trashed tasks matching the filter. Non-admin actors
// only see tasks they created or are assigned to.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	query := r.db.Model(&models.Task{}).
		Where("tasks.status <> ?", models.TaskStatusTrashed)

	if !filter.ActorIsAdmin {
		query = query.Where("tasks.created_by = ? OR tasks.assigned_to = ?", filter.ActorID, filter.ActorID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.DepartmentID != nil {
		query = query.Where("tasks.department_id = ?", *filter.DepartmentID)
	}
	if filter.DueFrom != nil && filter.DueTo != nil {
		query = query.Where("tasks.due_date BETWEEN ? AND ?", *filter.DueFrom, *filter.DueTo)
	}

	var tasks []models.Task
	err := query.
		Preload("AssignedToEmployee").
		Preload("CreatedByEmployee").
		Preload("Department").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// FindTrashedByCreator returns the creator's trashed tasks ordered by
// trashed_at descending
func (r *GormTaskRepository) FindTrashedByCreator(creatorID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("status = ? AND created_by = ?", models.TaskStatusTrashed, creatorID).
		Preload("AssignedToEmployee").
		Preload("CreatedByEmployee").
		Preload("Department").
		Order("trashed_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindExpiredTrashed returns tasks trashed before the cutoff
func (r *GormTaskRepository) FindExpiredTrashed(cutoff time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("status = ? AND trashed_at < ?", models.TaskStatusTrashed, cutoff).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update saves a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateFields applies a partial update as a single row write
func (r *GormTaskRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the task row. A row that is already gone is not an error,
// so racing deleters (manual delete vs. the expiry sweep) are benign.
func (r *GormTaskRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Task{}, "id = ?", id).Error
}
