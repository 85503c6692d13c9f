package service

import (
	"context"
	"testing"

	"badgereg/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateCompanyRejectsSpellingVariants verifies the duplicate check
// ignores case and spacing.
func TestCreateCompanyRejectsSpellingVariants(t *testing.T) {
	env := setupEnv(t)
	svc := env.companyService()
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, nil, CreateCompanyRequest{Name: "Acme Srl"})
	require.NoError(t, err, "first create should succeed")

	for _, variant := range []string{"acme srl", "ACMESRL", "  Acme  Srl"} {
		_, err := svc.CreateCompany(ctx, nil, CreateCompanyRequest{Name: variant})
		assert.ErrorIs(t, err, ErrDuplicateCompany, "variant %q should be rejected", variant)
	}
}

// TestCreateCompanyRejectsEmptyName verifies a name that normalizes to
// nothing is refused.
func TestCreateCompanyRejectsEmptyName(t *testing.T) {
	env := setupEnv(t)
	svc := env.companyService()

	_, err := svc.CreateCompany(context.Background(), nil, CreateCompanyRequest{Name: "   "})
	assert.Error(t, err, "blank name should be rejected")
}

// TestDeleteCompanyBlockedByEmployees verifies a company with personnel
// cannot be deleted.
func TestDeleteCompanyBlockedByEmployees(t *testing.T) {
	env := setupEnv(t)
	svc := env.companyService()
	ctx := context.Background()

	company, err := svc.CreateCompany(ctx, nil, CreateCompanyRequest{Name: "Acme Srl"})
	require.NoError(t, err)

	require.NoError(t, env.employees.Create(ctx, &model.Employee{
		FirstName: "Mario", LastName: "Rossi", CompanyID: company.ID,
	}))

	err = svc.DeleteCompany(ctx, nil, company.ID.String())
	assert.ErrorIs(t, err, ErrCompanyHasStaff)

	// still there
	_, total, err := svc.GetCompanies(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// TestDeleteCompanySucceedsWhenEmpty verifies deletion once the last
// employee is gone.
func TestDeleteCompanySucceedsWhenEmpty(t *testing.T) {
	env := setupEnv(t)
	svc := env.companyService()
	ctx := context.Background()

	company, err := svc.CreateCompany(ctx, nil, CreateCompanyRequest{Name: "Acme Srl"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCompany(ctx, nil, company.ID.String()))

	err = svc.DeleteCompany(ctx, nil, company.ID.String())
	assert.ErrorIs(t, err, ErrCompanyGone, "second delete should report the company gone")
}

// TestUpdateCompanyRenameChecksDuplicates verifies renaming onto another
// company's normalized name is refused.
func TestUpdateCompanyRenameChecksDuplicates(t *testing.T) {
	env := setupEnv(t)
	svc := env.companyService()
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, nil, CreateCompanyRequest{Name: "Acme Srl"})
	require.NoError(t, err)
	other, err := svc.CreateCompany(ctx, nil, CreateCompanyRequest{Name: "Zeta Spa"})
	require.NoError(t, err)

	name := "ACME SRL"
	_, err = svc.UpdateCompany(ctx, nil, other.ID.String(), UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, ErrDuplicateCompany)

	blocked := true
	updated, err := svc.UpdateCompany(ctx, nil, other.ID.String(), UpdateCompanyRequest{AccessBlocked: &blocked})
	require.NoError(t, err)
	assert.True(t, updated.AccessBlocked)
}

// TestCompanyAuditTrail verifies mutations leave audit entries.
func TestCompanyAuditTrail(t *testing.T) {
	env := setupEnv(t)
	svc := env.companyService()
	ctx := context.Background()

	company, err := svc.CreateCompany(ctx, nil, CreateCompanyRequest{Name: "Acme Srl"})
	require.NoError(t, err)
	require.NoError(t, svc.SetAccessBlocked(ctx, nil, company.ID.String(), true))

	var actions []string
	require.NoError(t, env.db.Model(&model.AuditLog{}).Order("created_at ASC").Pluck("action", &actions).Error)
	assert.Equal(t, []string{model.ActionCreateCompany, model.ActionToggleFlag}, actions)
}
