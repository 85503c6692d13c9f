package repository

import (
	"context"
	"errors"

	"badgereg/internal/model"

	"gorm.io/gorm"
)

// RoleRepository covers both the job roles attachable to employees and the
// permission codes attached to operator account roles.
type RoleRepository interface {
	ListJobRoles(ctx context.Context) ([]model.Role, error)
	FindOrCreateJobRole(ctx context.Context, name string) (*model.Role, error)
	PermissionsForAccountRole(ctx context.Context, roleName string) ([]string, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) ListJobRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) FindOrCreateJobRole(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	db := GetDB(ctx, r.db)
	err := db.First(&role, "name = ?", name).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	role = model.Role{Name: name}
	if err := db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// PermissionsForAccountRole resolves the permission codes granted to an
// account role through the role_permissions join.
func (r *roleRepository) PermissionsForAccountRole(ctx context.Context, roleName string) ([]string, error) {
	var codes []string
	err := GetDB(ctx, r.db).Raw(`
		SELECT p.code FROM permissions p
		INNER JOIN role_permissions rp ON rp.permission_id = p.id
		INNER JOIN account_roles r ON r.id = rp.account_role_id
		WHERE r.name = ?
	`, roleName).Pluck("code", &codes).Error
	return codes, err
}
