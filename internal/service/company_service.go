package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"badgereg/internal/model"
	"badgereg/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name               string `json:"name" binding:"required"`
	TaxCode            string `json:"tax_code"`
	ContactName        string `json:"contact_name"`
	ContactEmail       string `json:"contact_email"`
	ContactPhone       string `json:"contact_phone"`
	Note               string `json:"note"`
	AccessBlocked      bool   `json:"access_blocked"`
	SoleProprietorship bool   `json:"sole_proprietorship"`
}

type UpdateCompanyRequest struct {
	Name               *string `json:"name"`
	TaxCode            *string `json:"tax_code"`
	ContactName        *string `json:"contact_name"`
	ContactEmail       *string `json:"contact_email"`
	ContactPhone       *string `json:"contact_phone"`
	Note               *string `json:"note"`
	AccessBlocked      *bool   `json:"access_blocked"`
	SoleProprietorship *bool   `json:"sole_proprietorship"`
}

type CompanyResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	TaxCode            string    `json:"tax_code"`
	ContactName        string    `json:"contact_name"`
	ContactEmail       string    `json:"contact_email"`
	ContactPhone       string    `json:"contact_phone"`
	Note               string    `json:"note"`
	AccessBlocked      bool      `json:"access_blocked"`
	SoleProprietorship bool      `json:"sole_proprietorship"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type CompanyNameResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// --- Interface ---

type CompanyService interface {
	CreateCompany(ctx context.Context, actor *uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error)
	UpdateCompany(ctx context.Context, actor *uuid.UUID, id string, req UpdateCompanyRequest) (*CompanyResponse, error)
	DeleteCompany(ctx context.Context, actor *uuid.UUID, id string) error
	GetCompanies(ctx context.Context, search string, page, limit int) ([]CompanyResponse, int64, error)
	ListCompanyNames(ctx context.Context) ([]CompanyNameResponse, error)
	SetAccessBlocked(ctx context.Context, actor *uuid.UUID, id string, blocked bool) error
}

type companyService struct {
	companies repository.CompanyRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
	logger    *zap.Logger
}

func NewCompanyService(companies repository.CompanyRepository, audit repository.AuditRepository,
	txManager repository.TransactionManager, logger *zap.Logger) CompanyService {
	return &companyService{
		companies: companies,
		audit:     audit,
		txManager: txManager,
		logger:    logger.Named("company_service"),
	}
}

func mapCompany(c *model.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:                 c.ID,
		Name:               c.Name,
		TaxCode:            c.TaxCode,
		ContactName:        c.ContactName,
		ContactEmail:       c.ContactEmail,
		ContactPhone:       c.ContactPhone,
		Note:               c.Note,
		AccessBlocked:      c.AccessBlocked,
		SoleProprietorship: c.SoleProprietorship,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (s *companyService) record(ctx context.Context, actor *uuid.UUID, action, entityID, entityName, details string) {
	entry := &model.AuditLog{
		UserID:     actor,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry", zap.String("action", action), zap.Error(err))
	}
}

func (s *companyService) CreateCompany(ctx context.Context, actor *uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	if model.NormalizeCompanyName(req.Name) == "" {
		return nil, fmt.Errorf("company name must not be empty")
	}

	// Case- and space-insensitive duplicate check, same normalization the
	// import pipeline uses.
	if _, err := s.companies.FindByNormalizedName(ctx, req.Name); err == nil {
		return nil, ErrDuplicateCompany
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate company: %w", err)
	}

	company := &model.Company{
		Name:               req.Name,
		TaxCode:            req.TaxCode,
		ContactName:        req.ContactName,
		ContactEmail:       req.ContactEmail,
		ContactPhone:       req.ContactPhone,
		Note:               req.Note,
		AccessBlocked:      req.AccessBlocked,
		SoleProprietorship: req.SoleProprietorship,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.companies.Create(txCtx, company); err != nil {
			if errors.Is(err, repository.ErrDuplicateName) {
				return ErrDuplicateCompany
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, model.ActionCreateCompany, company.ID.String(), company.Name, "")
	return mapCompany(company), nil
}

func (s *companyService) UpdateCompany(ctx context.Context, actor *uuid.UUID, id string, req UpdateCompanyRequest) (*CompanyResponse, error) {
	companyID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid company id")
	}

	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCompanyGone
		}
		return nil, err
	}

	if req.Name != nil && model.NormalizeCompanyName(*req.Name) != company.NormalizedName {
		if _, err := s.companies.FindByNormalizedName(ctx, *req.Name); err == nil {
			return nil, ErrDuplicateCompany
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		company.Name = *req.Name
	}
	if req.TaxCode != nil {
		company.TaxCode = *req.TaxCode
	}
	if req.ContactName != nil {
		company.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		company.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		company.ContactPhone = *req.ContactPhone
	}
	if req.Note != nil {
		company.Note = *req.Note
	}
	if req.AccessBlocked != nil {
		company.AccessBlocked = *req.AccessBlocked
	}
	if req.SoleProprietorship != nil {
		company.SoleProprietorship = *req.SoleProprietorship
	}

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	s.record(ctx, actor, model.ActionUpdateCompany, company.ID.String(), company.Name, "")
	return mapCompany(company), nil
}

// DeleteCompany refuses to delete a company that still has employees, so a
// delete can never leave dangling company references behind.
func (s *companyService) DeleteCompany(ctx context.Context, actor *uuid.UUID, id string) error {
	companyID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid company id")
	}

	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanyGone
		}
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.companies.CountEmployees(txCtx, companyID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCompanyHasStaff
		}
		return s.companies.Delete(txCtx, companyID)
	})
	if err != nil {
		return err
	}

	s.record(ctx, actor, model.ActionDeleteCompany, id, company.Name, "")
	return nil
}

func (s *companyService) GetCompanies(ctx context.Context, search string, page, limit int) ([]CompanyResponse, int64, error) {
	companies, total, err := s.companies.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		res = append(res, *mapCompany(&companies[i]))
	}
	return res, total, nil
}

func (s *companyService) ListCompanyNames(ctx context.Context) ([]CompanyNameResponse, error) {
	companies, err := s.companies.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]CompanyNameResponse, 0, len(companies))
	for _, c := range companies {
		res = append(res, CompanyNameResponse{ID: c.ID, Name: c.Name})
	}
	return res, nil
}

func (s *companyService) SetAccessBlocked(ctx context.Context, actor *uuid.UUID, id string, blocked bool) error {
	companyID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid company id")
	}

	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanyGone
		}
		return err
	}

	company.AccessBlocked = blocked
	if err := s.companies.Update(ctx, company); err != nil {
		return err
	}

	s.record(ctx, actor, model.ActionToggleFlag, id, company.Name,
		fmt.Sprintf(`{"field":"access_blocked","value":%t}`, blocked))
	return nil
}
