package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/constants"
	"github.com/tasket/tasket-server/internal/dto"
	apierrors "github.com/tasket/tasket-server/internal/errors"
	"github.com/tasket/tasket-server/internal/middleware"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/realtime"
	"github.com/tasket/tasket-server/internal/repository"
	"github.com/tasket/tasket-server/internal/services"
	"github.com/tasket/tasket-server/internal/storage"
	"gorm.io/gorm"
)

// TaskHandler handles task CRUD, attachment uploads and the trash
// lifecycle endpoints.
type TaskHandler struct {
	tasks         repository.TaskRepository
	trash         *services.TrashService
	notifications *services.NotificationService
	uploader      storage.Uploader
	cleaner       *storage.Cleaner
	events        realtime.Publisher
	log           *logrus.Logger
}

func NewTaskHandler(
	tasks repository.TaskRepository,
	trash *services.TrashService,
	notifications *services.NotificationService,
	uploader storage.Uploader,
	cleaner *storage.Cleaner,
	events realtime.Publisher,
	log *logrus.Logger,
) *TaskHandler {
	return &TaskHandler{
		tasks:         tasks,
		trash:         trash,
		notifications: notifications,
		uploader:      uploader,
		cleaner:       cleaner,
		events:        events,
		log:           log,
	}
}

var taskPreloads = []string{"AssignedToEmployee", "CreatedByEmployee", "Department", "Project"}

// List handles GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	filter := repository.TaskFilter{
		ActorID:      employee.ID,
		ActorIsAdmin: employee.IsAdmin(),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !status.Valid() || status == models.TaskStatusTrashed {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := models.TaskPriority(raw)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority filter")
			return
		}
		filter.Priority = &priority
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to filter")
			return
		}
		filter.AssignedTo = &id
	}
	if raw := c.Query("department_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid department_id filter")
			return
		}
		filter.DepartmentID = &id
	}
	if raw := c.Query("due_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_from filter")
			return
		}
		filter.DueFrom = &t
	}
	if raw := c.Query("due_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_to filter")
			return
		}
		filter.DueTo = &t
	}

	tasks, err := h.tasks.List(filter)
	if err != nil {
		h.log.WithError(err).Error("failed to list tasks")
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ListTrashed handles GET /api/tasks/trashed
func (h *TaskHandler) ListTrashed(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.trash.ListTrashed(actor)
	if err != nil {
		h.log.WithError(err).Error("failed to list trashed tasks")
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	task, err := h.tasks.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	// Trashed tasks are only visible to their creator (or an admin).
	if task.Trashed() && !employee.IsAdmin() && task.CreatedBy != employee.ID {
		apierrors.NotFound(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create handles POST /api/tasks. The body is multipart form data: a "data"
// field holding the task JSON, plus zero or more "attachments" file parts.
func (h *TaskHandler) Create(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	raw := c.PostForm("data")
	if raw == "" {
		apierrors.BadRequest(c, "Missing data field")
		return
	}
	var req dto.CreateTaskRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		apierrors.BadRequest(c, "Invalid task payload")
		return
	}
	if req.Title == "" {
		apierrors.BadRequest(c, "Title is required")
		return
	}

	status := models.TaskStatusPlanned
	if req.Status != "" {
		if !req.Status.Valid() || req.Status == models.TaskStatusTrashed {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		status = req.Status
	}
	priority := models.TaskPriorityMedium
	if req.Priority != "" {
		if !req.Priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		priority = req.Priority
	}
	estimatedHours := 1.0
	if req.EstimatedHours != nil && *req.EstimatedHours > 0 {
		estimatedHours = *req.EstimatedHours
	}

	attachments, err := h.saveUploads(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task := &models.Task{
		Title:          req.Title,
		Description:    req.Description,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      employee.ID,
		DepartmentID:   req.DepartmentID,
		ProjectID:      req.ProjectID,
		Status:         status,
		Priority:       priority,
		DueDate:        req.DueDate,
		StartDate:      req.StartDate,
		EstimatedHours: estimatedHours,
		Tags:           req.Tags,
		Attachments:    attachments,
	}

	now := time.Now()
	switch status {
	case models.TaskStatusInProgress:
		if task.StartDate == nil {
			task.StartDate = &now
		}
	case models.TaskStatusCompleted:
		task.CompletedDate = &now
		zero := 0.0
		task.ActualHours = &zero
	}

	if err := h.tasks.Create(task); err != nil {
		h.log.WithError(err).Error("failed to create task")
		apierrors.InternalError(c, "")
		return
	}

	created, err := h.tasks.FindByID(task.ID, taskPreloads...)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	if created.AssignedTo != nil && *created.AssignedTo != employee.ID {
		h.notifications.NotifyTaskAssigned(*created.AssignedTo, employee, created)
	}
	if h.events != nil {
		h.events.TaskCreated(created)
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	if !employee.IsAdmin() && task.CreatedBy != employee.ID &&
		(task.AssignedTo == nil || *task.AssignedTo != employee.ID) {
		apierrors.Forbidden(c, "")
		return
	}
	// Trashed tasks are frozen; restore them first.
	if task.Trashed() {
		apierrors.InvalidState(c, "Task is in trash")
		return
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() || *req.Status == models.TaskStatusTrashed {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		fields["status"] = *req.Status
		if *req.Status == models.TaskStatusCompleted && task.CompletedDate == nil {
			fields["completed_date"] = time.Now()
		}
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		fields["priority"] = *req.Priority
	}
	// Reassignment is an admin capability; for everyone else the existing
	// assignee is preserved and the rest of the update still applies.
	if employee.IsAdmin() {
		if req.ClearAssignee {
			fields["assigned_to"] = nil
		} else if req.AssignedTo != nil {
			fields["assigned_to"] = *req.AssignedTo
		}
	}
	if req.DepartmentID != nil {
		fields["department_id"] = *req.DepartmentID
	}
	if req.ProjectID != nil {
		fields["project_id"] = *req.ProjectID
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.CompletedDate != nil {
		fields["completed_date"] = *req.CompletedDate
	}
	if req.EstimatedHours != nil {
		fields["estimated_hours"] = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		fields["actual_hours"] = *req.ActualHours
	}
	if req.Tags != nil {
		fields["tags"] = models.StringList(req.Tags)
	}

	var removedURLs []string
	if req.Attachments != nil {
		kept := map[string]struct{}{}
		for _, att := range *req.Attachments {
			kept[att.URL] = struct{}{}
		}
		for _, att := range task.Attachments {
			if _, ok := kept[att.URL]; !ok {
				removedURLs = append(removedURLs, att.URL)
			}
		}
		fields["attachments"] = *req.Attachments
	}

	if len(fields) > 0 {
		if err := h.tasks.UpdateFields(task.ID, fields); err != nil {
			h.log.WithError(err).Error("failed to update task")
			apierrors.InternalError(c, "")
			return
		}
	}

	// Files dropped from the attachment list are deleted best-effort; the
	// update itself has already succeeded.
	for _, url := range removedURLs {
		if err := h.cleaner.DeleteByURL(c.Request.Context(), url); err != nil {
			h.log.WithError(err).WithField("url", url).Error("failed to delete removed attachment")
		}
	}

	updated, err := h.tasks.FindByID(task.ID, taskPreloads...)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	h.notifyChanges(employee, task, updated)
	if h.events != nil {
		h.events.TaskUpdated(updated)
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/tasks/:id. The default action moves the task
// to trash; ?action=delete removes it permanently regardless of status.
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	switch c.DefaultQuery("action", "trash") {
	case "trash":
		task, err := h.trash.Trash(taskID, actor)
		if err != nil {
			h.respondTrashError(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	case "delete":
		if err := h.trash.HardDelete(c.Request.Context(), taskID, actor); err != nil {
			h.respondTrashError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
	default:
		apierrors.BadRequest(c, "Invalid action")
	}
}

// Restore handles PUT /api/tasks/:id/restore
func (h *TaskHandler) Restore(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	task, err := h.trash.Restore(taskID, actor)
	if err != nil {
		h.respondTrashError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PermanentDelete handles DELETE /api/tasks/:id/permanent
func (h *TaskHandler) PermanentDelete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	if err := h.trash.PermanentlyDelete(c.Request.Context(), taskID, actor); err != nil {
		h.respondTrashError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task permanently deleted"})
}

func (h *TaskHandler) respondTrashError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskAccessDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotInTrash),
		errors.Is(err, services.ErrTaskAlreadyInTrash):
		apierrors.InvalidState(c, err.Error())
	default:
		h.log.WithError(err).Error("task lifecycle operation failed")
		apierrors.InternalError(c, "")
	}
}

// saveUploads stores every "attachments" file part and returns the records
// to persist on the task.
func (h *TaskHandler) saveUploads(c *gin.Context) (models.AttachmentList, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := form.File["attachments"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > constants.MaxAttachmentsPerTask {
		return nil, fmt.Errorf("too many attachments (max %d)", constants.MaxAttachmentsPerTask)
	}

	var attachments models.AttachmentList
	for _, file := range files {
		if file.Size > constants.MaxAttachmentSize {
			return nil, fmt.Errorf("attachment %q exceeds the size limit", file.Filename)
		}

		src, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %q", file.Filename)
		}

		contentType := file.Header.Get("Content-Type")
		key := attachmentKey(file.Filename)
		url, err := h.uploader.Put(c.Request.Context(), key, contentType, src)
		src.Close()
		if err != nil {
			h.log.WithError(err).WithField("filename", file.Filename).Error("failed to store attachment")
			return nil, fmt.Errorf("failed to store attachment %q", file.Filename)
		}

		attachments = append(attachments, models.Attachment{
			ID:   uuid.NewString(),
			Type: models.AttachmentTypeFromMIME(contentType),
			URL:  url,
			Name: file.Filename,
		})
	}
	return attachments, nil
}

// attachmentKey builds a collision-resistant storage key that keeps the
// original file extension.
func attachmentKey(filename string) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("task-attachment-%d-%s%s",
		time.Now().UnixMilli(), hex.EncodeToString(suffix), filepath.Ext(filename))
}

// notifyChanges compares the task before and after an update and sends the
// relevant notifications.
func (h *TaskHandler) notifyChanges(sender *models.Employee, before, after *models.Task) {
	prevAssignee := before.AssignedTo
	nextAssignee := after.AssignedTo

	switch {
	case prevAssignee == nil && nextAssignee != nil:
		if *nextAssignee != sender.ID {
			h.notifications.NotifyTaskAssigned(*nextAssignee, sender, after)
		}
	case prevAssignee != nil && nextAssignee == nil:
		if *prevAssignee != sender.ID {
			h.notifications.NotifyTaskUnassigned(*prevAssignee, sender, after)
		}
	case prevAssignee != nil && nextAssignee != nil && *prevAssignee != *nextAssignee:
		if *prevAssignee != sender.ID {
			h.notifications.NotifyTaskUnassigned(*prevAssignee, sender, after)
		}
		if *nextAssignee != sender.ID {
			h.notifications.NotifyTaskAssigned(*nextAssignee, sender, after)
		}
	}

	if before.Status != after.Status && nextAssignee != nil &&
		*nextAssignee != sender.ID && prevAssigneeUnchanged(prevAssignee, nextAssignee) {
		h.notifications.NotifyTaskStatusChanged(*nextAssignee, sender, after)
	}
}

func prevAssigneeUnchanged(prev, next *uuid.UUID) bool {
	return prev != nil && next != nil && *prev == *next
}

// currentActor builds the lifecycle actor from the authenticated employee.
func currentActor(c *gin.Context) (services.Actor, bool) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: employee.ID, Admin: employee.IsAdmin()}, true
}
