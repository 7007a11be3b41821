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
	"github.com/tasket/tasket-server/internal/utils"
	"gorm.io/gorm"
)

// ListProjects handles GET /api/projects
func ListProjects(c *gin.Context) {
	db := database.GetDB().Model(&models.Project{})
	params := utils.GetPaginationParams(c)

	if raw := c.Query("department_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid department_id filter")
			return
		}
		db = db.Where("department_id = ?", id)
	}
	if raw := c.Query("status"); raw != "" {
		db = db.Where("status = ?", raw)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}

	var projects []models.Project
	err := db.Preload("Department").
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&projects).Error
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": projects,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProject handles GET /api/projects/:id
func GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project id")
		return
	}

	var project models.Project
	err = database.GetDB().Preload("Department").First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Project not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProject handles POST /api/projects
func CreateProject(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	status := models.ProjectStatusActive
	if req.Status != "" {
		status = models.ProjectStatus(req.Status)
	}

	project := models.Project{
		Name:         req.Name,
		Description:  req.Description,
		Status:       status,
		DepartmentID: req.DepartmentID,
		CreatedBy:    employee.ID,
	}
	if err := database.GetDB().Create(&project).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject handles PUT /api/projects/:id
func UpdateProject(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project id")
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	db := database.GetDB()
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Project not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	if !employee.IsAdmin() && project.CreatedBy != employee.ID {
		apierrors.Forbidden(c, "Only the project creator can update it")
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.DepartmentID != nil {
		fields["department_id"] = *req.DepartmentID
	}
	if req.Status != nil {
		fields["status"] = models.ProjectStatus(*req.Status)
	}

	if len(fields) > 0 {
		if err := db.Model(&project).Updates(fields).Error; err != nil {
			apierrors.InternalError(c, "")
			return
		}
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/:id
func DeleteProject(c *gin.Context) {
	employee, ok := middleware.GetEmployee(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project id")
		return
	}

	db := database.GetDB()
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Project not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	if !employee.IsAdmin() && project.CreatedBy != employee.ID {
		apierrors.Forbidden(c, "Only the project creator can delete it")
		return
	}

	if err := db.Delete(&project).Error; err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
