package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/tasket/tasket-server/internal/constants"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/repository"
	"github.com/tasket/tasket-server/internal/services"
	"github.com/tasket/tasket-server/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	local  *storage.LocalStore

	// actor is the employee the fake auth middleware injects; tests swap it
	// to exercise permission checks.
	actor *models.Employee

	creator models.Employee
	other   models.Employee
}

func (s *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(
		&models.Department{},
		&models.Employee{},
		&models.Project{},
		&models.Task{},
		&models.Notification{},
	))
	s.db = db

	log := logrus.New()
	log.SetOutput(io.Discard)

	local, err := storage.NewLocalStore(s.T().TempDir())
	s.Require().NoError(err)
	s.local = local

	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cleaner := storage.NewCleaner(nil, local, log)
	trashService := services.NewTrashService(taskRepo, cleaner, nil, log)
	notificationService := services.NewNotificationService(notificationRepo, nil, log)

	handler := NewTaskHandler(taskRepo, trashService, notificationService, local, cleaner, nil, log)

	s.creator = models.Employee{Name: "Creator", Email: "creator@example.com", PasswordHash: "x"}
	s.other = models.Employee{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	s.Require().NoError(db.Create(&s.creator).Error)
	s.Require().NoError(db.Create(&s.other).Error)
	s.actor = &s.creator

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyEmployee, s.actor)
		c.Set(constants.ContextKeyEmployeeID, s.actor.ID)
	})
	tasks := router.Group("/api/tasks")
	{
		tasks.GET("", handler.List)
		tasks.GET("/trashed", handler.ListTrashed)
		tasks.GET("/:id", handler.Get)
		tasks.POST("", handler.Create)
		tasks.PUT("/:id", handler.Update)
		tasks.PUT("/:id/restore", handler.Restore)
		tasks.DELETE("/:id", handler.Delete)
		tasks.DELETE("/:id/permanent", handler.PermanentDelete)
	}
	s.router = router
}

func (s *TaskHandlerTestSuite) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *TaskHandlerTestSuite) createTask(status models.TaskStatus) *models.Task {
	task := &models.Task{Title: "Write release notes", CreatedBy: s.creator.ID, Status: status}
	s.Require().NoError(s.db.Create(task).Error)
	return task
}

func (s *TaskHandlerTestSuite) reloadTask(id uuid.UUID) *models.Task {
	var task models.Task
	s.Require().NoError(s.db.First(&task, "id = ?", id).Error)
	return &task
}

func (s *TaskHandlerTestSuite) TestDeleteDefaultsToTrash() {
	task := s.createTask(models.TaskStatusInProgress)

	w := s.request(http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var body models.Task
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(models.TaskStatusTrashed, body.Status)
	s.Require().NotNil(body.StatusBeforeTrash)
	s.Equal(models.TaskStatusInProgress, *body.StatusBeforeTrash)
}

func (s *TaskHandlerTestSuite) TestDeleteActionDeleteRemovesRow() {
	task := s.createTask(models.TaskStatusPlanned)

	w := s.request(http.MethodDelete, "/api/tasks/"+task.ID.String()+"?action=delete", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var count int64
	s.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	s.Zero(count)
}

func (s *TaskHandlerTestSuite) TestDeleteUnknownActionRejected() {
	task := s.createTask(models.TaskStatusPlanned)

	// Only trash and delete are accepted; anything else must not touch the
	// task, and in particular must never fall through to permanent deletion.
	w := s.request(http.MethodDelete, "/api/tasks/"+task.ID.String()+"?action=purge", nil, "")
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var count int64
	s.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	s.EqualValues(1, count)
	s.Equal(models.TaskStatusPlanned, s.reloadTask(task.ID).Status)
}

func (s *TaskHandlerTestSuite) TestDeleteForbiddenForNonCreator() {
	task := s.createTask(models.TaskStatusPlanned)
	s.actor = &s.other

	w := s.request(http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, "")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *TaskHandlerTestSuite) TestRestoreEndpoint() {
	task := s.createTask(models.TaskStatusCompleted)
	s.request(http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, "")

	w := s.request(http.MethodPut, "/api/tasks/"+task.ID.String()+"/restore", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var body models.Task
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(models.TaskStatusCompleted, body.Status)
	s.Nil(body.TrashedAt)
}

func (s *TaskHandlerTestSuite) TestRestoreActiveTaskReturnsInvalidState() {
	task := s.createTask(models.TaskStatusPlanned)

	w := s.request(http.MethodPut, "/api/tasks/"+task.ID.String()+"/restore", nil, "")
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "INVALID_STATE")
}

func (s *TaskHandlerTestSuite) TestPermanentDeleteRequiresTrash() {
	task := s.createTask(models.TaskStatusPlanned)

	w := s.request(http.MethodDelete, "/api/tasks/"+task.ID.String()+"/permanent", nil, "")
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "INVALID_STATE")
}

func (s *TaskHandlerTestSuite) TestListTrashedReturnsOnlyOwnTasks() {
	mine := s.createTask(models.TaskStatusPlanned)
	s.request(http.MethodDelete, "/api/tasks/"+mine.ID.String(), nil, "")

	theirs := &models.Task{Title: "Not mine", CreatedBy: s.other.ID, Status: models.TaskStatusTrashed}
	now := time.Now()
	theirs.TrashedAt = &now
	s.Require().NoError(s.db.Create(theirs).Error)

	w := s.request(http.MethodGet, "/api/tasks/trashed", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var body []models.Task
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Require().Len(body, 1)
	s.Equal(mine.ID, body[0].ID)
}

func (s *TaskHandlerTestSuite) TestListExcludesTrashed() {
	active := s.createTask(models.TaskStatusPlanned)
	trashed := s.createTask(models.TaskStatusPlanned)
	s.request(http.MethodDelete, "/api/tasks/"+trashed.ID.String(), nil, "")

	w := s.request(http.MethodGet, "/api/tasks", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var body []models.Task
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Require().Len(body, 1)
	s.Equal(active.ID, body[0].ID)
}

func (s *TaskHandlerTestSuite) TestListRejectsInvalidPriorityFilter() {
	w := s.request(http.MethodGet, "/api/tasks?priority=critical", nil, "")
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "INVALID_INPUT")
}

func (s *TaskHandlerTestSuite) TestCreateWithAttachment() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	data, _ := json.Marshal(map[string]interface{}{
		"title":    "Design mockups",
		"priority": "high",
	})
	s.Require().NoError(mw.WriteField("data", string(data)))

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments"; filename=%q`, "mockup.png"))
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	s.Require().NoError(err)
	_, err = part.Write([]byte("png-bytes"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	w := s.request(http.MethodPost, "/api/tasks", &buf, mw.FormDataContentType())
	s.Require().Equal(http.StatusCreated, w.Code)

	var body models.Task
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("Design mockups", body.Title)
	s.Equal(models.TaskPriorityHigh, body.Priority)
	s.Require().Len(body.Attachments, 1)

	att := body.Attachments[0]
	s.Equal(models.AttachmentPhoto, att.Type)
	s.Equal("mockup.png", att.Name)
	s.True(strings.HasPrefix(att.URL, constants.LocalUploadPrefix))
	s.True(s.local.Exists(att.URL))
}

func (s *TaskHandlerTestSuite) TestCreateRequiresTitle() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	s.Require().NoError(mw.WriteField("data", `{"description":"no title"}`))
	s.Require().NoError(mw.Close())

	w := s.request(http.MethodPost, "/api/tasks", &buf, mw.FormDataContentType())
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TaskHandlerTestSuite) TestUpdateTrashedTaskRejected() {
	task := s.createTask(models.TaskStatusPlanned)
	s.request(http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, "")

	payload := `{"title":"New title"}`
	w := s.request(http.MethodPut, "/api/tasks/"+task.ID.String(), strings.NewReader(payload), "application/json")
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "INVALID_STATE")
}

func (s *TaskHandlerTestSuite) TestUpdatePreservesAssigneeForNonAdmin() {
	assignee := s.other.ID
	task := &models.Task{Title: "Ship it", CreatedBy: s.creator.ID, AssignedTo: &assignee}
	s.Require().NoError(s.db.Create(task).Error)

	payload, _ := json.Marshal(map[string]interface{}{
		"title":       "Ship it today",
		"assigned_to": s.creator.ID,
	})
	w := s.request(http.MethodPut, "/api/tasks/"+task.ID.String(), bytes.NewReader(payload), "application/json")
	s.Require().Equal(http.StatusOK, w.Code)

	updated := s.reloadTask(task.ID)
	s.Equal("Ship it today", updated.Title)
	s.Require().NotNil(updated.AssignedTo)
	s.Equal(assignee, *updated.AssignedTo)
}

func (s *TaskHandlerTestSuite) TestUpdateRemovesDroppedAttachments() {
	url, err := s.local.Put(context.Background(), "task-attachment-keep.txt", "text/plain", strings.NewReader("keep"))
	s.Require().NoError(err)
	dropURL, err := s.local.Put(context.Background(), "task-attachment-drop.txt", "text/plain", strings.NewReader("drop"))
	s.Require().NoError(err)

	task := s.createTask(models.TaskStatusPlanned)
	s.Require().NoError(s.db.Model(task).Update("attachments", models.AttachmentList{
		{ID: "1", Type: models.AttachmentDocument, URL: url, Name: "keep.txt"},
		{ID: "2", Type: models.AttachmentDocument, URL: dropURL, Name: "drop.txt"},
	}).Error)

	payload, _ := json.Marshal(map[string]interface{}{
		"attachments": []map[string]string{
			{"id": "1", "type": "document", "url": url, "name": "keep.txt"},
		},
	})
	w := s.request(http.MethodPut, "/api/tasks/"+task.ID.String(), bytes.NewReader(payload), "application/json")
	s.Require().Equal(http.StatusOK, w.Code)

	s.True(s.local.Exists(url))
	s.False(s.local.Exists(dropURL))
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
