package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/realtime"
	"github.com/tasket/tasket-server/internal/repository"
)

// NotificationService persists notifications and pushes them to the
// recipient's live connections. The Notify* helpers are fire-and-forget:
// a notification failure never fails the task operation that caused it.
type NotificationService struct {
	notifications repository.NotificationRepository
	events        realtime.Publisher
	log           *logrus.Logger
}

func NewNotificationService(notifications repository.NotificationRepository, events realtime.Publisher, log *logrus.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		events:        events,
		log:           log,
	}
}

func (s *NotificationService) List(employeeID uuid.UUID) ([]models.Notification, error) {
	notifications, err := s.notifications.ListByEmployee(employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(id, employeeID uuid.UUID) error {
	return s.notifications.MarkRead(id, employeeID)
}

func (s *NotificationService) MarkAllRead(employeeID uuid.UUID) error {
	return s.notifications.MarkAllRead(employeeID)
}

func (s *NotificationService) Delete(id, employeeID uuid.UUID) error {
	return s.notifications.Delete(id, employeeID)
}

// NotifyTaskAssigned tells an employee they were assigned a task.
func (s *NotificationService) NotifyTaskAssigned(recipientID uuid.UUID, sender *models.Employee, task *models.Task) {
	s.send(&models.Notification{
		EmployeeID: recipientID,
		SenderID:   senderID(sender),
		Type:       models.NotificationTaskAssigned,
		Title:      "New task assigned",
		Message:    fmt.Sprintf("%s assigned you the task \"%s\"", senderName(sender), task.Title),
		TaskID:     &task.ID,
		Priority:   task.Priority,
	})
}

// NotifyTaskUnassigned tells an employee a task was taken off them.
func (s *NotificationService) NotifyTaskUnassigned(recipientID uuid.UUID, sender *models.Employee, task *models.Task) {
	s.send(&models.Notification{
		EmployeeID: recipientID,
		SenderID:   senderID(sender),
		Type:       models.NotificationTaskUnassigned,
		Title:      "Task unassigned",
		Message:    fmt.Sprintf("%s removed you from the task \"%s\"", senderName(sender), task.Title),
		TaskID:     &task.ID,
		Priority:   task.Priority,
	})
}

// NotifyTaskStatusChanged tells the assignee the task's status changed.
func (s *NotificationService) NotifyTaskStatusChanged(recipientID uuid.UUID, sender *models.Employee, task *models.Task) {
	s.send(&models.Notification{
		EmployeeID: recipientID,
		SenderID:   senderID(sender),
		Type:       models.NotificationTaskStatusChanged,
		Title:      "Task status updated",
		Message:    fmt.Sprintf("%s moved \"%s\" to %s", senderName(sender), task.Title, task.Status),
		TaskID:     &task.ID,
		Priority:   task.Priority,
	})
}

func (s *NotificationService) send(notification *models.Notification) {
	if err := s.notifications.Create(notification); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"employee_id": notification.EmployeeID,
			"type":        notification.Type,
		}).Error("failed to create notification")
		return
	}
	if s.events != nil {
		s.events.Notify(notification.EmployeeID, notification)
	}
}

func senderID(sender *models.Employee) *uuid.UUID {
	if sender == nil {
		return nil
	}
	return &sender.ID
}

func senderName(sender *models.Employee) string {
	if sender == nil {
		return "Someone"
	}
	return sender.Name
}
