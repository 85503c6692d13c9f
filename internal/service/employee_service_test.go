package service

import (
	"context"
	"testing"
	"time"

	"badgereg/internal/model"
	"badgereg/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) mustCompany(t *testing.T, name string) *model.Company {
	t.Helper()
	company := &model.Company{Name: name}
	require.NoError(t, e.companies.Create(context.Background(), company))
	return company
}

// TestCreateEmployeeTemporaryNeedsExpiry verifies the invariant that a
// temporary badge always carries an expiry date.
func TestCreateEmployeeTemporaryNeedsExpiry(t *testing.T) {
	env := setupEnv(t)
	svc := env.employeeService()
	ctx := context.Background()
	company := env.mustCompany(t, "Acme Srl")

	_, err := svc.CreateEmployee(ctx, nil, CreateEmployeeRequest{
		FirstName: "Mario", LastName: "Rossi",
		CompanyID:      company.ID.String(),
		BadgeTemporary: true,
	})
	assert.ErrorIs(t, err, ErrExpiryRequired)

	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateEmployee(ctx, nil, CreateEmployeeRequest{
		FirstName: "Mario", LastName: "Rossi",
		CompanyID:           company.ID.String(),
		BadgeTemporary:      true,
		BadgeNumber:         "T-07",
		AuthorizationExpiry: &expiry,
	})
	require.NoError(t, err, "temporary badge with expiry should be accepted")
	assert.True(t, created.BadgeTemporary)
}

// TestUpdateEmployeeCannotDropExpiryOfTemporaryBadge verifies the invariant
// holds on update too.
func TestUpdateEmployeeCannotDropExpiryOfTemporaryBadge(t *testing.T) {
	env := setupEnv(t)
	svc := env.employeeService()
	ctx := context.Background()
	company := env.mustCompany(t, "Acme Srl")

	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateEmployee(ctx, nil, CreateEmployeeRequest{
		FirstName: "Mario", LastName: "Rossi",
		CompanyID:           company.ID.String(),
		BadgeTemporary:      true,
		AuthorizationExpiry: &expiry,
	})
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, nil, created.ID.String(), UpdateEmployeeRequest{ClearExpiry: true})
	assert.ErrorIs(t, err, ErrExpiryRequired, "clearing the expiry of a temporary badge must fail")

	// dropping the temporary marker first makes clearing legal
	notTemp := false
	_, err = svc.UpdateEmployee(ctx, nil, created.ID.String(), UpdateEmployeeRequest{
		BadgeTemporary: &notTemp,
		ClearExpiry:    true,
	})
	require.NoError(t, err)

	updated, err := svc.GetEmployee(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Nil(t, updated.AuthorizationExpiry)
}

// TestCreateEmployeeDuplicateInCompany verifies the per-company name
// duplicate check.
func TestCreateEmployeeDuplicateInCompany(t *testing.T) {
	env := setupEnv(t)
	svc := env.employeeService()
	ctx := context.Background()
	company := env.mustCompany(t, "Acme Srl")

	req := CreateEmployeeRequest{FirstName: "Mario", LastName: "Rossi", CompanyID: company.ID.String()}
	_, err := svc.CreateEmployee(ctx, nil, req)
	require.NoError(t, err)

	req.FirstName, req.LastName = "MARIO", "rossi"
	_, err = svc.CreateEmployee(ctx, nil, req)
	assert.ErrorIs(t, err, ErrDuplicateEmployee)

	other := env.mustCompany(t, "Zeta Spa")
	req.CompanyID = other.ID.String()
	_, err = svc.CreateEmployee(ctx, nil, req)
	assert.NoError(t, err, "same name under another company is allowed")
}

// TestCreateEmployeeCompanyGone verifies the user-facing error when the
// referenced company no longer exists.
func TestCreateEmployeeCompanyGone(t *testing.T) {
	env := setupEnv(t)
	svc := env.employeeService()

	_, err := svc.CreateEmployee(context.Background(), nil, CreateEmployeeRequest{
		FirstName: "Mario", LastName: "Rossi", CompanyID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, ErrCompanyGone)
}

// TestCreateEmployeeAttachesJobRole verifies find-or-create of the job role.
func TestCreateEmployeeAttachesJobRole(t *testing.T) {
	env := setupEnv(t)
	svc := env.employeeService()
	ctx := context.Background()
	company := env.mustCompany(t, "Acme Srl")

	first, err := svc.CreateEmployee(ctx, nil, CreateEmployeeRequest{
		FirstName: "Mario", LastName: "Rossi",
		CompanyID: company.ID.String(), RoleName: "Elettricista",
	})
	require.NoError(t, err)
	assert.Equal(t, "Elettricista", first.RoleName)

	second, err := svc.CreateEmployee(ctx, nil, CreateEmployeeRequest{
		FirstName: "Anna", LastName: "Verdi",
		CompanyID: company.ID.String(), RoleName: "Elettricista",
	})
	require.NoError(t, err)
	assert.Equal(t, "Elettricista", second.RoleName)

	var roleCount int64
	require.NoError(t, env.db.Model(&model.Role{}).Count(&roleCount).Error)
	assert.Equal(t, int64(1), roleCount, "the role should be reused, not duplicated")
}

// TestSetFlagTransitions verifies flag flips persist and a missing employee
// yields the typed error.
func TestSetFlagTransitions(t *testing.T) {
	env := setupEnv(t)
	svc := env.employeeService()
	ctx := context.Background()
	company := env.mustCompany(t, "Acme Srl")

	created, err := svc.CreateEmployee(ctx, nil, CreateEmployeeRequest{
		FirstName: "Mario", LastName: "Rossi", CompanyID: company.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetFlag(ctx, nil, created.ID.String(), repository.FlagBadgeIssued, true))
	require.NoError(t, svc.SetFlag(ctx, nil, created.ID.String(), repository.FlagAccessBlocked, true))

	found, err := svc.GetEmployee(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, found.BadgeIssued)
	assert.True(t, found.AccessBlocked)
	assert.False(t, found.BadgeCancelled)

	err = svc.SetFlag(ctx, nil, uuid.NewString(), repository.FlagBadgeIssued, true)
	assert.ErrorIs(t, err, ErrEmployeeGone)
}
