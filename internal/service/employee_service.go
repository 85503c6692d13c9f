package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"badgereg/internal/model"
	"badgereg/internal/repository"
	"badgereg/internal/websocket"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateEmployeeRequest struct {
	FirstName           string     `json:"first_name" binding:"required"`
	LastName            string     `json:"last_name" binding:"required"`
	CompanyID           string     `json:"company_id" binding:"required"`
	BadgeIssued         bool       `json:"badge_issued"`
	AccessBlocked       bool       `json:"access_blocked"`
	BadgeSuspended      bool       `json:"badge_suspended"`
	BadgeTemporary      bool       `json:"badge_temporary"`
	BadgeNumber         string     `json:"badge_number"`
	RoleName            string     `json:"role_name"`
	AuthorizationExpiry *time.Time `json:"authorization_expiry"`
	Note                string     `json:"note"`
}

type UpdateEmployeeRequest struct {
	FirstName           *string    `json:"first_name"`
	LastName            *string    `json:"last_name"`
	CompanyID           *string    `json:"company_id"`
	BadgeTemporary      *bool      `json:"badge_temporary"`
	BadgeNumber         *string    `json:"badge_number"`
	RoleName            *string    `json:"role_name"`
	AuthorizationExpiry *time.Time `json:"authorization_expiry"`
	ClearExpiry         bool       `json:"clear_expiry"`
	Note                *string    `json:"note"`
}

type EmployeeResponse struct {
	ID                  uuid.UUID  `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	CompanyID           uuid.UUID  `json:"company_id"`
	CompanyName         string     `json:"company_name"`
	BadgeIssued         bool       `json:"badge_issued"`
	AccessBlocked       bool       `json:"access_blocked"`
	BadgeSuspended      bool       `json:"badge_suspended"`
	BadgeCancelled      bool       `json:"badge_cancelled"`
	BadgeTemporary      bool       `json:"badge_temporary"`
	BadgeNumber         string     `json:"badge_number"`
	RoleName            string     `json:"role_name,omitempty"`
	AuthorizationExpiry *time.Time `json:"authorization_expiry"`
	Note                string     `json:"note"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// --- Interface ---

type EmployeeService interface {
	CreateEmployee(ctx context.Context, actor *uuid.UUID, req CreateEmployeeRequest) (*EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, actor *uuid.UUID, id string, req UpdateEmployeeRequest) (*EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, actor *uuid.UUID, id string) error
	GetEmployee(ctx context.Context, id string) (*EmployeeResponse, error)
	ListEmployees(ctx context.Context, companyID, surname string, page, limit int) ([]EmployeeResponse, int64, error)
	SetFlag(ctx context.Context, actor *uuid.UUID, id string, flag repository.EmployeeFlag, value bool) error
	ListJobRoles(ctx context.Context) ([]string, error)
}

type employeeService struct {
	employees repository.EmployeeRepository
	companies repository.CompanyRepository
	roles     repository.RoleRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
	hub       *websocket.Hub
	logger    *zap.Logger
}

func NewEmployeeService(employees repository.EmployeeRepository, companies repository.CompanyRepository,
	roles repository.RoleRepository, audit repository.AuditRepository,
	txManager repository.TransactionManager, hub *websocket.Hub, logger *zap.Logger) EmployeeService {
	return &employeeService{
		employees: employees,
		companies: companies,
		roles:     roles,
		audit:     audit,
		txManager: txManager,
		hub:       hub,
		logger:    logger.Named("employee_service"),
	}
}

func mapEmployee(e *model.Employee) *EmployeeResponse {
	res := &EmployeeResponse{
		ID:                  e.ID,
		FirstName:           e.FirstName,
		LastName:            e.LastName,
		CompanyID:           e.CompanyID,
		BadgeIssued:         e.BadgeIssued,
		AccessBlocked:       e.AccessBlocked,
		BadgeSuspended:      e.BadgeSuspended,
		BadgeCancelled:      e.BadgeCancelled,
		BadgeTemporary:      e.BadgeTemporary,
		BadgeNumber:         e.BadgeNumber,
		AuthorizationExpiry: e.AuthorizationExpiry,
		Note:                e.Note,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
	if e.Company != nil {
		res.CompanyName = e.Company.Name
	}
	if e.Role != nil {
		res.RoleName = e.Role.Name
	}
	return res
}

func (s *employeeService) record(ctx context.Context, actor *uuid.UUID, action, entityID, entityName, details string) {
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

// validateBadge enforces the temporary-badge invariant before any write: a
// temporary badge without an expiry date can never reach storage.
func validateBadge(temporary bool, expiry *time.Time) error {
	if temporary && expiry == nil {
		return ErrExpiryRequired
	}
	return nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, actor *uuid.UUID, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id")
	}
	if err := validateBadge(req.BadgeTemporary, req.AuthorizationExpiry); err != nil {
		return nil, err
	}

	employee := &model.Employee{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		CompanyID:           companyID,
		BadgeIssued:         req.BadgeIssued,
		AccessBlocked:       req.AccessBlocked,
		BadgeSuspended:      req.BadgeSuspended,
		BadgeTemporary:      req.BadgeTemporary,
		BadgeNumber:         req.BadgeNumber,
		AuthorizationExpiry: req.AuthorizationExpiry,
		Note:                req.Note,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// The company may have been deleted between form render and
		// submit; surface that as a user-facing error, not an FK blowup.
		if _, err := s.companies.FindByID(txCtx, companyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCompanyGone
			}
			return err
		}

		exists, err := s.employees.ExistsInCompany(txCtx, req.FirstName, req.LastName, companyID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEmployee
		}

		if req.RoleName != "" {
			role, err := s.roles.FindOrCreateJobRole(txCtx, req.RoleName)
			if err != nil {
				return err
			}
			employee.RoleID = &role.ID
			// Attach the loaded role so the response carries its name
			// without a second fetch.
			employee.Role = role
		}

		return s.employees.Create(txCtx, employee)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, model.ActionCreateEmployee, employee.ID.String(),
		employee.LastName+" "+employee.FirstName, "")
	return mapEmployee(employee), nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, actor *uuid.UUID, id string, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	employeeID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid employee id")
	}

	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeGone
		}
		return nil, err
	}

	if req.FirstName != nil {
		employee.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		employee.LastName = *req.LastName
	}
	if req.CompanyID != nil {
		companyID, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("invalid company id")
		}
		if _, err := s.companies.FindByID(ctx, companyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCompanyGone
			}
			return nil, err
		}
		employee.CompanyID = companyID
		employee.Company = nil
	}
	if req.BadgeTemporary != nil {
		employee.BadgeTemporary = *req.BadgeTemporary
	}
	if req.BadgeNumber != nil {
		employee.BadgeNumber = *req.BadgeNumber
	}
	if req.ClearExpiry {
		employee.AuthorizationExpiry = nil
	} else if req.AuthorizationExpiry != nil {
		employee.AuthorizationExpiry = req.AuthorizationExpiry
	}
	if req.Note != nil {
		employee.Note = *req.Note
	}
	if req.RoleName != nil {
		if *req.RoleName == "" {
			employee.RoleID = nil
			employee.Role = nil
		} else {
			role, err := s.roles.FindOrCreateJobRole(ctx, *req.RoleName)
			if err != nil {
				return nil, err
			}
			employee.RoleID = &role.ID
			employee.Role = nil
		}
	}

	if err := validateBadge(employee.BadgeTemporary, employee.AuthorizationExpiry); err != nil {
		return nil, err
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}

	s.record(ctx, actor, model.ActionUpdateEmployee, employee.ID.String(),
		employee.LastName+" "+employee.FirstName, "")

	updated, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapEmployee(updated), nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, actor *uuid.UUID, id string) error {
	employeeID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid employee id")
	}

	if err := s.employees.Delete(ctx, employeeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeGone
		}
		return err
	}

	s.record(ctx, actor, model.ActionDeleteEmployee, id, "", "")
	return nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id string) (*EmployeeResponse, error) {
	employeeID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid employee id")
	}
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeGone
		}
		return nil, err
	}
	return mapEmployee(employee), nil
}

func (s *employeeService) ListEmployees(ctx context.Context, companyID, surname string, page, limit int) ([]EmployeeResponse, int64, error) {
	var companyFilter *uuid.UUID
	if companyID != "" {
		parsed, err := uuid.Parse(companyID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid company id")
		}
		companyFilter = &parsed
	}

	employees, total, err := s.employees.List(ctx, companyFilter, surname, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		res = append(res, *mapEmployee(&employees[i]))
	}
	return res, total, nil
}

// SetFlag flips a single badge/access flag, re-checking that the row still
// exists so a deleted employee yields a user-facing error.
func (s *employeeService) SetFlag(ctx context.Context, actor *uuid.UUID, id string, flag repository.EmployeeFlag, value bool) error {
	employeeID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid employee id")
	}

	if err := s.employees.SetFlag(ctx, employeeID, flag, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeGone
		}
		return err
	}

	s.record(ctx, actor, model.ActionToggleFlag, id, "",
		fmt.Sprintf(`{"field":%q,"value":%t}`, string(flag), value))

	if s.hub != nil {
		s.hub.BroadcastEvent(websocket.BadgeEvent{
			Entity: "employee",
			ID:     id,
			Field:  string(flag),
			Value:  value,
		})
	}
	return nil
}

// ListJobRoles returns the job role names in use, for the employee form
// dropdown.
func (s *employeeService) ListJobRoles(ctx context.Context) ([]string, error) {
	roles, err := s.roles.ListJobRoles(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}
