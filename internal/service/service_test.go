package service

import (
	"fmt"
	"testing"

	"badgereg/internal/model"
	"badgereg/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db         *gorm.DB
	companies  repository.CompanyRepository
	employees  repository.EmployeeRepository
	roles      repository.RoleRepository
	users      repository.UserRepository
	audit      repository.AuditRepository
	recipients repository.RecipientRepository
	tokens     repository.TokenRepository
	txManager  repository.TransactionManager
}

// setupEnv builds an in-memory SQLite database with the full schema and
// the repository layer on top of it.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&model.Company{},
		&model.Employee{},
		&model.Role{},
		&model.User{},
		&model.AccountRole{},
		&model.Permission{},
		&model.AuditLog{},
		&model.EmailRecipient{},
		&model.OAuthToken{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return &testEnv{
		db:         db,
		companies:  repository.NewCompanyRepository(db),
		employees:  repository.NewEmployeeRepository(db),
		roles:      repository.NewRoleRepository(db),
		users:      repository.NewUserRepository(db),
		audit:      repository.NewAuditRepository(db),
		recipients: repository.NewRecipientRepository(db),
		tokens:     repository.NewTokenRepository(db),
		txManager:  repository.NewTransactionManager(db),
	}
}

func (e *testEnv) companyService() CompanyService {
	return NewCompanyService(e.companies, e.audit, e.txManager, zap.NewNop())
}

func (e *testEnv) employeeService() EmployeeService {
	return NewEmployeeService(e.employees, e.companies, e.roles, e.audit, e.txManager, nil, zap.NewNop())
}

func (e *testEnv) notificationService() NotificationService {
	return NewNotificationService(e.recipients, e.tokens)
}
