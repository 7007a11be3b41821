package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/tasket/tasket-server/internal/errors"
	"github.com/tasket/tasket-server/internal/middleware"
	"github.com/tasket/tasket-server/internal/services"
)

// NotificationHandler serves an employee's own notifications.
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	employeeID, ok := middleware.GetEmployeeID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	notifications, err := h.notifications.List(employeeID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	employeeID, ok := middleware.GetEmployeeID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification id")
		return
	}

	if err := h.notifications.MarkRead(id, employeeID); err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	employeeID, ok := middleware.GetEmployeeID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.notifications.MarkAllRead(employeeID); err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Delete handles DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	employeeID, ok := middleware.GetEmployeeID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification id")
		return
	}

	if err := h.notifications.Delete(id, employeeID); err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
