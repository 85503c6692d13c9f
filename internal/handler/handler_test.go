package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"badgereg/internal/middleware"
	"badgereg/internal/model"
	"badgereg/internal/repository"
	"badgereg/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	users  service.UserService
}

// setupServer wires the real repository, service and middleware stack onto
// an in-memory SQLite database, seeds the account roles, and returns a
// router ready for httptest requests.
func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.ClearPermissionCache("")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.AutoMigrate(
		&model.Company{}, &model.Employee{}, &model.Role{},
		&model.User{}, &model.AccountRole{}, &model.Permission{},
		&model.AuditLog{},
	))

	seedRoles(t, db)

	log := zap.NewNop()
	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	companyService := service.NewCompanyService(companyRepo, auditRepo, txManager, log)
	employeeService := service.NewEmployeeService(employeeRepo, companyRepo, roleRepo, auditRepo, txManager, nil, log)
	userService := service.NewUserService(userRepo, middleware.GetJWTSecret())
	reportService := service.NewReportService(employeeRepo)
	auditService := service.NewAuditService(auditRepo)

	authn := middleware.RequireUser(userRepo)
	authz := PermFunc(func(codes ...string) gin.HandlerFunc {
		return middleware.RequirePermission(roleRepo, codes...)
	})

	router := gin.New()
	NewCompanyHandler(companyService).RegisterRoutes(router.Group(""), authn, authz)
	NewEmployeeHandler(employeeService).RegisterRoutes(router.Group(""), authn, authz)
	NewUserHandler(userService).RegisterRoutes(router.Group(""), authn, authz)
	NewReportHandler(reportService).RegisterRoutes(router.Group(""), authn, authz)
	NewAuditHandler(auditService).RegisterRoutes(router.Group(""), authn, authz)

	return &testServer{router: router, db: db, users: userService}
}

func seedRoles(t *testing.T, db *gorm.DB) {
	t.Helper()

	perms := make(map[string]model.Permission)
	for _, code := range []string{
		model.PermCompaniesRead, model.PermCompaniesWrite,
		model.PermEmployeesRead, model.PermEmployeesWrite,
		model.PermBadgeIssue, model.PermUsersManage,
	} {
		p := model.Permission{Code: code, Name: code, Group: "test"}
		require.NoError(t, db.Create(&p).Error)
		perms[code] = p
	}

	roles := map[string][]string{
		"admin": {
			model.PermCompaniesRead, model.PermCompaniesWrite,
			model.PermEmployeesRead, model.PermEmployeesWrite,
			model.PermBadgeIssue, model.PermUsersManage,
		},
		"operator": {
			model.PermCompaniesRead, model.PermCompaniesWrite,
			model.PermEmployeesRead, model.PermEmployeesWrite,
		},
		"gate": {model.PermCompaniesRead, model.PermEmployeesRead},
	}
	for name, codes := range roles {
		role := model.AccountRole{Name: name}
		for _, code := range codes {
			role.Permissions = append(role.Permissions, perms[code])
		}
		require.NoError(t, db.Create(&role).Error)
	}
}

// login creates an account with the given role and returns a bearer token.
func (s *testServer) login(t *testing.T, username, role string) string {
	t.Helper()
	ctx := context.Background()

	_, err := s.users.CreateUser(ctx, service.CreateUserRequest{
		Username: username, Password: "test-password", Role: role,
	})
	require.NoError(t, err)

	token, err := s.users.Login(ctx, service.LoginRequest{Username: username, Password: "test-password"})
	require.NoError(t, err)
	return token.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createCompany(t *testing.T, token, name string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/companies", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, "company create failed: %s", rec.Body.String())

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.ID
}

func (s *testServer) createEmployee(t *testing.T, token, companyID string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/employees", token, gin.H{
		"first_name": "Mario", "last_name": "Rossi", "company_id": companyID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "employee create failed: %s", rec.Body.String())

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.ID
}

// TestUnauthenticatedRequestsRejected verifies every API group requires a
// token.
func TestUnauthenticatedRequestsRejected(t *testing.T) {
	s := setupServer(t)

	for _, path := range []string{"/api/companies", "/api/employees", "/api/users", "/api/audit-logs"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "GET %s without token", path)
	}
}

// TestFlagToggleRoundTrip verifies the gate-screen toggle endpoints flip
// and restore a flag.
func TestFlagToggleRoundTrip(t *testing.T) {
	s := setupServer(t)
	token := s.login(t, "admin1", "admin")

	companyID := s.createCompany(t, token, "Acme Srl")
	employeeID := s.createEmployee(t, token, companyID)

	rec := s.do(t, http.MethodPost, "/api/employees/"+employeeID+"/access-blocked", token, gin.H{"value": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var employee model.Employee
	require.NoError(t, s.db.First(&employee, "id = ?", employeeID).Error)
	assert.True(t, employee.AccessBlocked)

	rec = s.do(t, http.MethodPost, "/api/employees/"+employeeID+"/access-blocked", token, gin.H{"value": false})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, s.db.First(&employee, "id = ?", employeeID).Error)
	assert.False(t, employee.AccessBlocked)
}

// TestGateRoleIsReadOnly verifies the read-only role can list but not
// modify.
func TestGateRoleIsReadOnly(t *testing.T) {
	s := setupServer(t)
	admin := s.login(t, "admin1", "admin")
	gate := s.login(t, "gate1", "gate")

	companyID := s.createCompany(t, admin, "Acme Srl")
	employeeID := s.createEmployee(t, admin, companyID)

	rec := s.do(t, http.MethodGet, "/api/employees", gate, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "gate role should read")

	rec = s.do(t, http.MethodPost, "/api/employees/"+employeeID+"/access-blocked", gate, gin.H{"value": true})
	assert.Equal(t, http.StatusForbidden, rec.Code, "gate role must not toggle flags")
}

// TestBadgeIssueNeedsDedicatedPermission verifies the operator role can
// edit records but not flip badge-issued.
func TestBadgeIssueNeedsDedicatedPermission(t *testing.T) {
	s := setupServer(t)
	admin := s.login(t, "admin1", "admin")
	operator := s.login(t, "op1", "operator")

	companyID := s.createCompany(t, admin, "Acme Srl")
	employeeID := s.createEmployee(t, admin, companyID)

	rec := s.do(t, http.MethodPost, "/api/employees/"+employeeID+"/badge-suspended", operator, gin.H{"value": true})
	assert.Equal(t, http.StatusOK, rec.Code, "operator may toggle ordinary flags")

	rec = s.do(t, http.MethodPost, "/api/employees/"+employeeID+"/badge-issued", operator, gin.H{"value": true})
	assert.Equal(t, http.StatusForbidden, rec.Code, "badge-issued needs its own permission")

	rec = s.do(t, http.MethodPost, "/api/employees/"+employeeID+"/badge-issued", admin, gin.H{"value": true})
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestDisabledAccountLockedOutImmediately verifies a valid token stops
// working the moment the account is disabled.
func TestDisabledAccountLockedOutImmediately(t *testing.T) {
	s := setupServer(t)
	admin := s.login(t, "admin1", "admin")
	operator := s.login(t, "op1", "operator")

	rec := s.do(t, http.MethodGet, "/api/companies", operator, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/users/op1", admin, gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/companies", operator, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "disabled account must be locked out on the next request")
}

// TestRemovedAccountLockedOutImmediately verifies a valid token stops
// working the moment the account row is deleted.
func TestRemovedAccountLockedOutImmediately(t *testing.T) {
	s := setupServer(t)
	admin := s.login(t, "admin1", "admin")
	operator := s.login(t, "op1", "operator")

	rec := s.do(t, http.MethodGet, "/api/companies", operator, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/op1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/companies", operator, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "removed account must be locked out on the next request")
	assert.Contains(t, rec.Body.String(), "Account removed")
}

// TestDuplicateCompanyConflict verifies the API maps the duplicate error
// to 409.
func TestDuplicateCompanyConflict(t *testing.T) {
	s := setupServer(t)
	token := s.login(t, "admin1", "admin")

	s.createCompany(t, token, "Acme Srl")
	rec := s.do(t, http.MethodPost, "/api/companies", token, gin.H{"name": "ACME SRL"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestDeleteCompanyWithStaffConflict verifies the API maps the referential
// guard to 409.
func TestDeleteCompanyWithStaffConflict(t *testing.T) {
	s := setupServer(t)
	token := s.login(t, "admin1", "admin")

	companyID := s.createCompany(t, token, "Acme Srl")
	s.createEmployee(t, token, companyID)

	rec := s.do(t, http.MethodDelete, "/api/companies/"+companyID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestWeeklyReportDownload verifies the report endpoint answers with an
// XLSX attachment.
func TestWeeklyReportDownload(t *testing.T) {
	s := setupServer(t)
	token := s.login(t, "admin1", "admin")

	rec := s.do(t, http.MethodGet, "/api/reports/weekly", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())
}
