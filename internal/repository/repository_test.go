package repository

import (
	"fmt"
	"testing"

	"badgereg/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB initializes an in-memory SQLite database for testing. Each
// test gets its own named shared-cache database so transactions opened on a
// second pool connection still see the same schema.
func SetupTestDB(t *testing.T) *gorm.DB {
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
		&model.EmailRecipient{},
		&model.OAuthToken{},
		&model.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}
