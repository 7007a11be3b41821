package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/tasket/tasket-server/internal/config"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&models.Department{}, &models.Employee{}))
	s.db = db

	log := logrus.New()
	log.SetOutput(io.Discard)
	s.service = NewAuthService(repository.NewEmployeeRepository(db), log)
}

func (s *AuthServiceTestSuite) seedEmployee(email, password string) *models.Employee {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	employee := &models.Employee{Name: "Test", Email: email, PasswordHash: string(hash)}
	s.Require().NoError(s.db.Create(employee).Error)
	return employee
}

func (s *AuthServiceTestSuite) TestLoginSuccess() {
	seeded := s.seedEmployee("dev@example.com", "hunter22")

	employee, err := s.service.Login("dev@example.com", "hunter22")
	s.Require().NoError(err)
	s.Equal(seeded.ID, employee.ID)
}

func (s *AuthServiceTestSuite) TestLoginWrongPassword() {
	s.seedEmployee("dev@example.com", "hunter22")

	_, err := s.service.Login("dev@example.com", "wrong")
	s.Require().ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLoginUnknownEmail() {
	_, err := s.service.Login("nobody@example.com", "whatever")
	s.Require().ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestEnsureAdminSeedsEmptyTable() {
	cfg := &config.Config{AdminEmail: "admin@example.com", AdminPassword: "bootstrap-pass"}
	s.Require().NoError(s.service.EnsureAdmin(cfg))

	admin, err := s.service.Login("admin@example.com", "bootstrap-pass")
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, admin.Role)

	// A second run must not create a duplicate.
	s.Require().NoError(s.service.EnsureAdmin(cfg))
	var count int64
	s.db.Model(&models.Employee{}).Count(&count)
	s.EqualValues(1, count)
}

func (s *AuthServiceTestSuite) TestEnsureAdminSkipsNonEmptyTable() {
	s.seedEmployee("dev@example.com", "hunter22")

	cfg := &config.Config{AdminEmail: "admin@example.com", AdminPassword: "bootstrap-pass"}
	s.Require().NoError(s.service.EnsureAdmin(cfg))

	var count int64
	s.db.Model(&models.Employee{}).Count(&count)
	s.EqualValues(1, count)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
