package database

import (
	"fmt"
	"os"

	"badgereg/internal/model"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the built-in permissions and roles if not already present,
// and bootstraps an admin account on an empty users table.
func Seed(db *gorm.DB, logger *zap.Logger) error {
	defaultPermissions := []model.Permission{
		{Code: model.PermCompaniesRead, Name: "View companies", Group: "companies"},
		{Code: model.PermCompaniesWrite, Name: "Manage companies", Group: "companies"},
		{Code: model.PermEmployeesRead, Name: "View employees", Group: "employees"},
		{Code: model.PermEmployeesWrite, Name: "Manage employees", Group: "employees"},
		{Code: model.PermBadgeIssue, Name: "Issue badges", Group: "employees"},
		{Code: model.PermUsersManage, Name: "Manage accounts", Group: "users"},
	}

	for i := range defaultPermissions {
		p := &defaultPermissions[i]
		var existing model.Permission
		result := db.Where("code = ?", p.Code).First(&existing)
		if result.Error != nil {
			if err := db.Create(p).Error; err != nil {
				return fmt.Errorf("failed to seed permission '%s': %w", p.Code, err)
			}
		} else {
			p.ID = existing.ID
		}
	}

	permByCode := make(map[string]model.Permission)
	for _, p := range defaultPermissions {
		permByCode[p.Code] = p
	}

	roleDefinitions := map[string]struct {
		Description string
		PermCodes   []string
	}{
		"admin": {
			Description: "Full access, including account management",
			PermCodes: []string{
				model.PermCompaniesRead, model.PermCompaniesWrite,
				model.PermEmployeesRead, model.PermEmployeesWrite,
				model.PermBadgeIssue, model.PermUsersManage,
			},
		},
		"operator": {
			Description: "Edit the registry, cannot issue badges or manage accounts",
			PermCodes: []string{
				model.PermCompaniesRead, model.PermCompaniesWrite,
				model.PermEmployeesRead, model.PermEmployeesWrite,
			},
		},
		"gate": {
			Description: "Read-only view for the gatehouse",
			PermCodes: []string{
				model.PermCompaniesRead, model.PermEmployeesRead,
			},
		},
	}

	for roleName, def := range roleDefinitions {
		var role model.AccountRole
		result := db.Where("name = ?", roleName).First(&role)
		if result.Error != nil {
			role = model.AccountRole{
				Name:        roleName,
				Description: def.Description,
				IsSystem:    true,
			}
			if err := db.Create(&role).Error; err != nil {
				return fmt.Errorf("failed to seed role '%s': %w", roleName, err)
			}
		}

		perms := make([]model.Permission, 0, len(def.PermCodes))
		for _, code := range def.PermCodes {
			if p, ok := permByCode[code]; ok {
				perms = append(perms, p)
			}
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("failed to assign permissions to role '%s': %w", roleName, err)
		}
	}

	return seedAdmin(db, logger)
}

// seedAdmin creates the initial admin account when the users table is
// empty. The password comes from ADMIN_PASSWORD; without it the account is
// not created and login stays impossible until one is provisioned.
func seedAdmin(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logger.Warn("users table is empty and ADMIN_PASSWORD is not set, no admin account created")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		Username: "admin",
		Password: string(hashed),
		Role:     "admin",
		Enabled:  true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	logger.Info("admin account created")
	return nil
}
