package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tasket/tasket-server/internal/database"
	"github.com/tasket/tasket-server/internal/dto"
	apierrors "github.com/tasket/tasket-server/internal/errors"
	"github.com/tasket/tasket-server/internal/middleware"
	"github.com/tasket/tasket-server/internal/models"
	"gorm.io/gorm"
)

// ListDepartments handles GET /api/departments
func ListDepartments(c *gin.Context) {
	var departments []models.Department
	if err := database.GetDB().Order("name ASC").Find(&departments).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, departments)
}

// CreateDepartment handles POST /api/departments. Admin only.
func CreateDepartment(c *gin.Context) {
	actor, ok := middleware.GetEmployee(c)
	if !ok || !actor.IsAdmin() {
		apierrors.Forbidden(c, "Only admins can create departments")
		return
	}

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	department := models.Department{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := database.GetDB().Create(&department).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierrors.Conflict(c, "Department name already in use")
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, department)
}

// UpdateDepartment handles PUT /api/departments/:id. Admin only.
func UpdateDepartment(c *gin.Context) {
	actor, ok := middleware.GetEmployee(c)
	if !ok || !actor.IsAdmin() {
		apierrors.Forbidden(c, "Only admins can update departments")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid department id")
		return
	}

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	db := database.GetDB()
	var department models.Department
	if err := db.First(&department, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Department not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	err = db.Model(&department).Updates(map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierrors.Conflict(c, "Department name already in use")
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, department)
}

// DeleteDepartment handles DELETE /api/departments/:id. Admin only. Tasks
// and employees pointing at the department keep their rows; the reference
// simply dangles until reassigned.
func DeleteDepartment(c *gin.Context) {
	actor, ok := middleware.GetEmployee(c)
	if !ok || !actor.IsAdmin() {
		apierrors.Forbidden(c, "Only admins can delete departments")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid department id")
		return
	}

	result := database.GetDB().Delete(&models.Department{}, "id = ?", id)
	if result.Error != nil {
		apierrors.InternalError(c, "")
		return
	}
	if result.RowsAffected == 0 {
		apierrors.NotFound(c, "Department not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Department deleted"})
}
