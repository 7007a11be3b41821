package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/config"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmployeeNotFound   = errors.New("employee not found")
)

// AuthService handles session-backed employee authentication.
type AuthService struct {
	employees repository.EmployeeRepository
	log       *logrus.Logger
}

func NewAuthService(employees repository.EmployeeRepository, log *logrus.Logger) *AuthService {
	return &AuthService{employees: employees, log: log}
}

// Login verifies the credentials and returns the employee on success.
func (s *AuthService) Login(email, password string) (*models.Employee, error) {
	employee, err := s.employees.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return employee, nil
}

// GetEmployee loads an employee by id.
func (s *AuthService) GetEmployee(id uuid.UUID) (*models.Employee, error) {
	employee, err := s.employees.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return employee, nil
}

// EnsureAdmin seeds the configured admin account when the employee table is
// empty, so a fresh deployment has a way in.
func (s *AuthService) EnsureAdmin(cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	count, err := s.employees.Count()
	if err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Employee{
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.employees.Create(admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	s.log.WithField("email", cfg.AdminEmail).Info("seeded initial admin account")
	return nil
}
