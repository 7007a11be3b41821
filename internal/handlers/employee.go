package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tasket/tasket-server/internal/constants"
	"github.com/tasket/tasket-server/internal/database"
	"github.com/tasket/tasket-server/internal/dto"
	apierrors "github.com/tasket/tasket-server/internal/errors"
	"github.com/tasket/tasket-server/internal/middleware"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ListEmployees handles GET /api/employees
func ListEmployees(c *gin.Context) {
	db := database.GetDB()
	params := utils.GetPaginationParams(c)

	var total int64
	if err := db.Model(&models.Employee{}).Count(&total).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}

	var employees []models.Employee
	err := db.Preload("Department").
		Order("name ASC").
		Scopes(database.Paginate(params)).
		Find(&employees).Error
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": employees,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetEmployee handles GET /api/employees/:id
func GetEmployee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	var employee models.Employee
	err = database.GetDB().Preload("Department").First(&employee, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Employee not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, employee)
}

// CreateEmployee handles POST /api/employees. Admin only.
func CreateEmployee(c *gin.Context) {
	actor, ok := middleware.GetEmployee(c)
	if !ok || !actor.IsAdmin() {
		apierrors.Forbidden(c, "Only admins can create employees")
		return
	}

	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if len(req.Password) < constants.MinPasswordLength {
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
		return
	}

	role := models.RoleEmployee
	if req.Role == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	employee := models.Employee{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Position:     req.Position,
		Role:         role,
		DepartmentID: req.DepartmentID,
	}
	if err := database.GetDB().Create(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierrors.Conflict(c, "Email already in use")
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee handles PUT /api/employees/:id. Admin only.
func UpdateEmployee(c *gin.Context) {
	actor, ok := middleware.GetEmployee(c)
	if !ok || !actor.IsAdmin() {
		apierrors.Forbidden(c, "Only admins can update employees")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	db := database.GetDB()
	var employee models.Employee
	if err := db.First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Employee not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}
	if req.Role != nil {
		role := models.EmployeeRole(*req.Role)
		if role != models.RoleAdmin && role != models.RoleEmployee {
			apierrors.BadRequest(c, "Invalid role")
			return
		}
		fields["role"] = role
	}
	if req.DepartmentID != nil {
		fields["department_id"] = *req.DepartmentID
	}

	if len(fields) > 0 {
		if err := db.Model(&employee).Updates(fields).Error; err != nil {
			apierrors.InternalError(c, "")
			return
		}
	}
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee handles DELETE /api/employees/:id. Admin only; admins
// cannot delete themselves.
func DeleteEmployee(c *gin.Context) {
	actor, ok := middleware.GetEmployee(c)
	if !ok || !actor.IsAdmin() {
		apierrors.Forbidden(c, "Only admins can delete employees")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}
	if id == actor.ID {
		apierrors.BadRequest(c, "Cannot delete your own account")
		return
	}

	result := database.GetDB().Delete(&models.Employee{}, "id = ?", id)
	if result.Error != nil {
		apierrors.InternalError(c, "")
		return
	}
	if result.RowsAffected == 0 {
		apierrors.NotFound(c, "Employee not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted"})
}
