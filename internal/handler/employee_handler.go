package handler

import (
	"errors"
	"net/http"

	"badgereg/internal/model"
	"badgereg/internal/repository"
	"badgereg/internal/service"
	"badgereg/pkg/pagination"
	"badgereg/pkg/response"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employeeService service.EmployeeService
}

func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, authz PermFunc) {
	router.GET("/api/job-roles", authn, authz(model.PermEmployeesRead), h.ListJobRoles)

	employees := router.Group("/api/employees", authn)
	{
		employees.GET("", authz(model.PermEmployeesRead), h.ListEmployees)
		employees.GET("/:id", authz(model.PermEmployeesRead), h.GetEmployee)
		employees.POST("", authz(model.PermEmployeesWrite), h.CreateEmployee)
		employees.PUT("/:id", authz(model.PermEmployeesWrite), h.UpdateEmployee)
		employees.DELETE("/:id", authz(model.PermEmployeesWrite), h.DeleteEmployee)

		// Flag toggles are separate endpoints so the gate UI can flip a
		// single bit without sending the whole record.
		employees.POST("/:id/access-blocked", authz(model.PermEmployeesWrite), h.toggle(repository.FlagAccessBlocked))
		employees.POST("/:id/badge-suspended", authz(model.PermEmployeesWrite), h.toggle(repository.FlagBadgeSuspended))
		employees.POST("/:id/badge-cancelled", authz(model.PermEmployeesWrite), h.toggle(repository.FlagBadgeCancelled))
		// Issuing a badge is a distinct responsibility from editing records
		employees.POST("/:id/badge-issued", authz(model.PermBadgeIssue), h.toggle(repository.FlagBadgeIssued))
	}
}

// ListEmployees returns paginated employees with optional filters
// @Summary      List employees
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        page        query     int     false  "Page number (default: 1)"
// @Param        limit       query     int     false  "Items per page (default: 20)"
// @Param        company_id  query     string  false  "Filter by company"
// @Param        surname     query     string  false  "Filter by surname prefix"
// @Success      200  {object}  response.Response
// @Router       /api/employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	params := pagination.Parse(c)
	companyID := c.Query("company_id")
	surname := c.Query("surname")

	employees, total, err := h.employeeService.ListEmployees(c.Request.Context(), companyID, surname, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, employees, params.Page, params.Limit, total))
}

// GetEmployee returns a single employee
// @Summary      Get employee
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Employee ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employee, err := h.employeeService.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrEmployeeGone) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, employee))
}

// CreateEmployee creates a new employee
// @Summary      Create employee
// @Tags         employees
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateEmployeeRequest  true  "Employee payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), actorID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmployee):
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		case errors.Is(err, service.ErrCompanyGone):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		default:
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, employee))
}

// UpdateEmployee updates an existing employee
// @Summary      Update employee
// @Tags         employees
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Employee ID"
// @Param        payload  body  service.UpdateEmployeeRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmployeeGone), errors.Is(err, service.ErrCompanyGone):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		default:
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, employee))
}

// DeleteEmployee deletes an employee
// @Summary      Delete employee
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Employee ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.employeeService.DeleteEmployee(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrEmployeeGone) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Employee deleted successfully"}))
}

// ListJobRoles returns the job role names in use
// @Summary      List job roles
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/job-roles [get]
func (h *EmployeeHandler) ListJobRoles(c *gin.Context) {
	names, err := h.employeeService.ListJobRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve job roles: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, names))
}

type setFlagRequest struct {
	Value bool `json:"value"`
}

// toggle builds the flag-flip handler for one whitelisted flag column
func (h *EmployeeHandler) toggle(flag repository.EmployeeFlag) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setFlagRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}

		err := h.employeeService.SetFlag(c.Request.Context(), actorID(c), c.Param("id"), flag, req.Value)
		if err != nil {
			if errors.Is(err, service.ErrEmployeeGone) {
				c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
			return
		}

		c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
			"field": string(flag),
			"value": req.Value,
		}))
	}
}
