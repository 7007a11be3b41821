package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRole string

const (
	RoleAdmin    EmployeeRole = "admin"
	RoleEmployee EmployeeRole = "employee"
)

type Employee struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Email        string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"type:varchar(255);not null" json:"-"`
	Position     string       `json:"position"`
	Role         EmployeeRole `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	DepartmentID *uuid.UUID   `gorm:"type:uuid;index" json:"department_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsAdmin is the elevated capability used by permission checks.
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}
