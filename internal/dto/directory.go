package dto

import "github.com/google/uuid"

// CreateEmployeeRequest represents the employee creation request body
type CreateEmployeeRequest struct {
	Name         string     `json:"name" binding:"required"`
	Email        string     `json:"email" binding:"required,email"`
	Password     string     `json:"password" binding:"required"`
	Position     string     `json:"position"`
	Role         string     `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

// UpdateEmployeeRequest carries a partial employee update
type UpdateEmployeeRequest struct {
	Name         *string    `json:"name"`
	Position     *string    `json:"position"`
	Role         *string    `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

// CreateDepartmentRequest represents the department creation request body
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateProjectRequest represents the project creation request body
type CreateProjectRequest struct {
	Name         string     `json:"name" binding:"required"`
	Description  string     `json:"description"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Status       string     `json:"status"`
}

// UpdateProjectRequest carries a partial project update
type UpdateProjectRequest struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Status       *string    `json:"status"`
}
