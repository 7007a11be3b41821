package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/constants"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/realtime"
	"github.com/tasket/tasket-server/internal/repository"
	"github.com/tasket/tasket-server/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAccessDenied   = errors.New("only the task creator can perform this action")
	ErrTaskNotInTrash     = errors.New("task is not in trash")
	ErrTaskAlreadyInTrash = errors.New("task is already in trash")
)

// Actor identifies the caller of a lifecycle operation. Admin is the
// elevated capability supplied by the auth layer.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// taskPreloads are the relations loaded onto tasks returned to callers.
var taskPreloads = []string{"AssignedToEmployee", "CreatedByEmployee", "Department"}

// TrashService owns the task trash lifecycle: moving tasks to trash,
// restoring them, and permanent deletion with attachment-storage cleanup.
type TrashService struct {
	tasks   repository.TaskRepository
	cleaner *storage.Cleaner
	events  realtime.Publisher
	log     *logrus.Logger
}

// NewTrashService creates a new TrashService. events may be nil when no
// realtime fan-out is wired (tests).
func NewTrashService(tasks repository.TaskRepository, cleaner *storage.Cleaner, events realtime.Publisher, log *logrus.Logger) *TrashService {
	return &TrashService{
		tasks:   tasks,
		cleaner: cleaner,
		events:  events,
		log:     log,
	}
}

// Trash moves a task to the trash, capturing its current status so a later
// restore can put it back. No attachment files are touched.
func (s *TrashService) Trash(taskID uuid.UUID, actor Actor) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(task, actor); err != nil {
		return nil, err
	}
	if task.Trashed() {
		return nil, ErrTaskAlreadyInTrash
	}

	err = s.tasks.UpdateFields(task.ID, map[string]interface{}{
		"status":              models.TaskStatusTrashed,
		"status_before_trash": task.Status,
		"trashed_at":          time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to trash task: %w", err)
	}

	trashed, err := s.tasks.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	if s.events != nil {
		s.events.TaskUpdated(trashed)
	}
	return trashed, nil
}

// Restore brings a trashed task back to the status it had before trashing,
// defaulting to planned when that status was never captured. The assignee
// is left untouched.
func (s *TrashService) Restore(taskID uuid.UUID, actor Actor) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !task.Trashed() {
		return nil, ErrTaskNotInTrash
	}
	if err := s.requireOwnership(task, actor); err != nil {
		return nil, err
	}

	previous := models.TaskStatusPlanned
	if task.StatusBeforeTrash != nil && task.StatusBeforeTrash.Valid() &&
		*task.StatusBeforeTrash != models.TaskStatusTrashed {
		previous = *task.StatusBeforeTrash
	}

	err = s.tasks.UpdateFields(task.ID, map[string]interface{}{
		"status":              previous,
		"restored_at":         time.Now(),
		"trashed_at":          nil,
		"status_before_trash": nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore task: %w", err)
	}

	restored, err := s.tasks.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	if s.events != nil {
		s.events.TaskUpdated(restored)
	}
	return restored, nil
}

// PermanentlyDelete removes a trashed task and its attachment files. Only
// tasks currently in trash are accepted; use HardDelete to bypass trash.
func (s *TrashService) PermanentlyDelete(ctx context.Context, taskID uuid.UUID, actor Actor) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if !task.Trashed() {
		return ErrTaskNotInTrash
	}
	if err := s.requireOwnership(task, actor); err != nil {
		return err
	}

	_, err = s.remove(ctx, task)
	return err
}

// HardDelete removes a task regardless of its status, still cleaning up
// attachment files first.
func (s *TrashService) HardDelete(ctx context.Context, taskID uuid.UUID, actor Actor) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(task, actor); err != nil {
		return err
	}

	_, err = s.remove(ctx, task)
	return err
}

// ListTrashed returns the actor's own trashed tasks, most recently trashed
// first. Elevation does not widen this view: admins also see only tasks
// they created.
func (s *TrashService) ListTrashed(actor Actor) ([]models.Task, error) {
	tasks, err := s.tasks.FindTrashedByCreator(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed tasks: %w", err)
	}
	return tasks, nil
}

// SweepResult reports one expiry sweep run. Deleted counts tasks removed
// without any failure; Failed counts tasks whose removal failed entirely or
// lost at least one attachment deletion (the row is still removed in the
// latter case).
type SweepResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// RunExpirySweep permanently deletes every task trashed longer ago than the
// retention window. Failures are contained per task so one bad row or
// unreachable storage backend never blocks the rest of the batch.
func (s *TrashService) RunExpirySweep(ctx context.Context, retentionDays int) (SweepResult, error) {
	if retentionDays <= 0 {
		retentionDays = constants.DefaultTrashRetentionDays
	}

	var result SweepResult
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	expired, err := s.tasks.FindExpiredTrashed(cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to query expired trash: %w", err)
	}

	log := s.log.WithField("operation", "trash.RunExpirySweep")
	log.WithField("eligible", len(expired)).Info("expiry sweep starting")

	for i := range expired {
		task := &expired[i]
		failures, err := s.remove(ctx, task)
		switch {
		case err != nil:
			result.Failed++
			log.WithError(err).WithField("task_id", task.ID).Error("failed to delete expired task")
		case failures > 0:
			result.Failed++
		default:
			result.Deleted++
		}
	}

	return result, nil
}

// remove deletes the task's attachment files best-effort, then removes the
// row. The row removal never waits on storage success; storage failures are
// reported via the returned count, not as an error.
func (s *TrashService) remove(ctx context.Context, task *models.Task) (int, error) {
	failures := s.cleaner.DeleteAll(ctx, task.Attachments)

	if err := s.tasks.Delete(task.ID); err != nil {
		return failures, fmt.Errorf("failed to delete task row: %w", err)
	}

	if s.events != nil {
		s.events.TaskDeleted(task.ID, task.DepartmentID)
	}
	return failures, nil
}

func (s *TrashService) findTask(taskID uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TrashService) requireOwnership(task *models.Task, actor Actor) error {
	if actor.Admin || task.CreatedBy == actor.ID {
		return nil
	}
	return ErrTaskAccessDenied
}
