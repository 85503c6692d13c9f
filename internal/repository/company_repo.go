package repository

import (
	"context"
	"errors"
	"strings"

	"badgereg/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindByNormalizedName(ctx context.Context, name string) (*model.Company, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error)
	ListNames(ctx context.Context) ([]model.Company, error)
	CountEmployees(ctx context.Context, id uuid.UUID) (int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	err := GetDB(ctx, r.db).Create(company).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}

func (r *companyRepository) Update(ctx context.Context, company *model.Company) error {
	return GetDB(ctx, r.db).Save(company).Error
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Company{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// FindByNormalizedName looks a company up through the same normalization
// used on write, so lookups are case- and space-insensitive.
func (r *companyRepository) FindByNormalizedName(ctx context.Context, name string) (*model.Company, error) {
	var company model.Company
	err := GetDB(ctx, r.db).
		First(&company, "normalized_name = ?", model.NormalizeCompanyName(name)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, search string, page, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Company{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

// ListNames returns id and name of every company, ordered by name, for
// selection lists.
func (r *companyRepository) ListNames(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := GetDB(ctx, r.db).
		Select("id", "name").
		Order("name ASC").
		Find(&companies).Error
	return companies, err
}

func (r *companyRepository) CountEmployees(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Employee{}).
		Where("company_id = ?", id).
		Count(&count).Error
	return count, err
}
