package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tasket/tasket-server/internal/constants"
	"github.com/tasket/tasket-server/internal/errors"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/services"
)

// RequireAuth loads the employee identified by the session and puts it on
// the request context. Requests without a valid session are rejected.
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw, ok := session.Get(constants.ContextKeyEmployeeID).(string)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		employeeID, err := uuid.Parse(raw)
		if err != nil {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		employee, err := auth.GetEmployee(employeeID)
		if err != nil {
			// Session points at a deleted account; treat as signed out.
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyEmployeeID, employee.ID)
		c.Set(constants.ContextKeyEmployee, employee)
		c.Next()
	}
}

// GetEmployee returns the authenticated employee set by RequireAuth.
func GetEmployee(c *gin.Context) (*models.Employee, bool) {
	value, exists := c.Get(constants.ContextKeyEmployee)
	if !exists {
		return nil, false
	}
	employee, ok := value.(*models.Employee)
	return employee, ok
}

// GetEmployeeID returns the authenticated employee's id set by RequireAuth.
func GetEmployeeID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(constants.ContextKeyEmployeeID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
