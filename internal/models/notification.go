package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTaskAssigned      NotificationType = "task_assigned"
	NotificationTaskUnassigned    NotificationType = "task_unassigned"
	NotificationTaskStatusChanged NotificationType = "task_status_changed"
)

type Notification struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID        `gorm:"type:uuid;not null;index" json:"employee_id"`
	SenderID   *uuid.UUID       `gorm:"type:uuid" json:"sender_id"`
	Type       NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title      string           `gorm:"not null" json:"title"`
	Message    string           `gorm:"type:text" json:"message"`
	TaskID     *uuid.UUID       `gorm:"type:uuid" json:"task_id"`
	Priority   TaskPriority     `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	IsRead     bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
