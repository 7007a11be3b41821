package repository

import (
	"github.com/google/uuid"
	"github.com/tasket/tasket-server/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByEmployee returns the employee's notifications, unread first, newest
// first within each group.
func (r *GormNotificationRepository) ListByEmployee(employeeID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.
		Where("employee_id = ?", employeeID).
		Order("is_read ASC, created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *GormNotificationRepository) MarkRead(id, employeeID uuid.UUID) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND employee_id = ?", id, employeeID).
		Update("is_read", true).Error
}

func (r *GormNotificationRepository) MarkAllRead(employeeID uuid.UUID) error {
	return r.db.Model(&models.Notification{}).
		Where("employee_id = ? AND is_read = ?", employeeID, false).
		Update("is_read", true).Error
}

func (r *GormNotificationRepository) Delete(id, employeeID uuid.UUID) error {
	return r.db.Delete(&models.Notification{}, "id = ? AND employee_id = ?", id, employeeID).Error
}
