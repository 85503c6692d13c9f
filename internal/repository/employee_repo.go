package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"badgereg/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeFlag names a toggleable badge/access flag. Keeping the set closed
// means the toggle endpoint can never write an arbitrary column.
type EmployeeFlag string

const (
	FlagAccessBlocked  EmployeeFlag = "access_blocked"
	FlagBadgeIssued    EmployeeFlag = "badge_issued"
	FlagBadgeSuspended EmployeeFlag = "badge_suspended"
	FlagBadgeCancelled EmployeeFlag = "badge_cancelled"
)

// AuthorizedRow is one line of the weekly authorized-personnel report
type AuthorizedRow struct {
	CompanyName string
	FirstName   string
	LastName    string
	BadgeIssued bool
	Note        string
}

// ExpiredRow is one line of the expired-badge report
type ExpiredRow struct {
	FirstName           string
	LastName            string
	CompanyName         string
	AuthorizationExpiry time.Time
	BadgeTemporary      bool
	BadgeNumber         string
}

type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	Update(ctx context.Context, employee *model.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	List(ctx context.Context, companyID *uuid.UUID, surname string, page, limit int) ([]model.Employee, int64, error)
	ExistsInCompany(ctx context.Context, firstName, lastName string, companyID uuid.UUID) (bool, error)
	SetFlag(ctx context.Context, id uuid.UUID, flag EmployeeFlag, value bool) error
	ForEachAuthorized(ctx context.Context, fn func(AuthorizedRow) error) error
	ForEachExpired(ctx context.Context, asOf time.Time, fn func(ExpiredRow) error) error
}

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	return GetDB(ctx, r.db).Create(employee).Error
}

func (r *employeeRepository) Update(ctx context.Context, employee *model.Employee) error {
	return GetDB(ctx, r.db).Save(employee).Error
}

func (r *employeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Employee{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *employeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	err := GetDB(ctx, r.db).Preload("Company").Preload("Role").
		First(&employee, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context, companyID *uuid.UUID, surname string, page, limit int) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Employee{})
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	if surname != "" {
		query = query.Where("LOWER(last_name) LIKE ?", "%"+strings.ToLower(surname)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Company").Preload("Role").
		Order("last_name ASC").Offset(offset).Limit(limit).
		Find(&employees).Error; err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// ExistsInCompany reports whether the company already has an employee with
// this first and last name, compared case-insensitively.
func (r *employeeRepository) ExistsInCompany(ctx context.Context, firstName, lastName string, companyID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Employee{}).
		Where("LOWER(first_name) = ? AND LOWER(last_name) = ? AND company_id = ?",
			strings.ToLower(firstName), strings.ToLower(lastName), companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *employeeRepository) SetFlag(ctx context.Context, id uuid.UUID, flag EmployeeFlag, value bool) error {
	result := GetDB(ctx, r.db).Model(&model.Employee{}).
		Where("id = ?", id).
		Update(string(flag), value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ForEachAuthorized streams the employee/company join for the weekly
// report one row at a time, company name first, without loading the whole
// table. An employee is authorized as long as the badge is not cancelled;
// cancelled badges never reach the printed list.
func (r *employeeRepository) ForEachAuthorized(ctx context.Context, fn func(AuthorizedRow) error) error {
	query := GetDB(ctx, r.db).Model(&model.Employee{}).
		Select(`companies.name AS company_name,
			employees.first_name,
			employees.last_name,
			employees.badge_issued,
			employees.note`).
		Joins("JOIN companies ON companies.id = employees.company_id").
		Where("employees.badge_cancelled = ?", false).
		Order("companies.name ASC, employees.last_name ASC, employees.first_name ASC")
	return streamRows(ctx, query, fn)
}

// ForEachExpired streams employees whose authorization expired on or before
// asOf, temporary badges first.
func (r *employeeRepository) ForEachExpired(ctx context.Context, asOf time.Time, fn func(ExpiredRow) error) error {
	query := GetDB(ctx, r.db).Model(&model.Employee{}).
		Select(`employees.first_name,
			employees.last_name,
			companies.name AS company_name,
			employees.authorization_expiry,
			employees.badge_temporary,
			employees.badge_number`).
		Joins("JOIN companies ON companies.id = employees.company_id").
		Where("employees.authorization_expiry IS NOT NULL AND employees.authorization_expiry <= ?", asOf).
		Order("employees.badge_temporary DESC, companies.name ASC, employees.last_name ASC, employees.first_name ASC")
	return streamRows(ctx, query, fn)
}
