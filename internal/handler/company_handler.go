package handler

import (
	"errors"
	"net/http"

	"badgereg/internal/model"
	"badgereg/internal/service"
	"badgereg/pkg/pagination"
	"badgereg/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PermFunc builds the permission middleware for a set of codes
type PermFunc func(codes ...string) gin.HandlerFunc

// actorID returns the authenticated user's id from the request context, or
// nil for unauthenticated tooling paths.
func actorID(c *gin.Context) *uuid.UUID {
	raw := c.GetString("userID")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, authz PermFunc) {
	companies := router.Group("/api/companies", authn)
	{
		companies.GET("", authz(model.PermCompaniesRead), h.ListCompanies)
		companies.GET("/names", authz(model.PermCompaniesRead), h.ListCompanyNames)
		companies.POST("", authz(model.PermCompaniesWrite), h.CreateCompany)
		companies.PUT("/:id", authz(model.PermCompaniesWrite), h.UpdateCompany)
		companies.DELETE("/:id", authz(model.PermCompaniesWrite), h.DeleteCompany)
		companies.POST("/:id/access-blocked", authz(model.PermCompaniesWrite), h.SetAccessBlocked)
	}
}

// ListCompanies returns paginated companies with optional name search
// @Summary      List companies
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        search  query     string  false  "Search by name"
// @Success      200     {object}  response.Response
// @Router       /api/companies [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	companies, total, err := h.companyService.GetCompanies(c.Request.Context(), search, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, companies, params.Page, params.Limit, total))
}

// ListCompanyNames returns all company names for dropdowns
// @Summary      List company names
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/companies/names [get]
func (h *CompanyHandler) ListCompanyNames(c *gin.Context) {
	names, err := h.companyService.ListCompanyNames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, names))
}

// CreateCompany creates a new company
// @Summary      Create company
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateCompanyRequest  true  "Company payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), actorID(c), req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCompany) {
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// UpdateCompany updates an existing company
// @Summary      Update company
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Company ID"
// @Param        payload  body  service.UpdateCompanyRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/companies/{id} [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompanyGone):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		case errors.Is(err, service.ErrDuplicateCompany):
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// DeleteCompany deletes a company without employees
// @Summary      Delete company
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id := c.Param("id")

	if err := h.companyService.DeleteCompany(c.Request.Context(), actorID(c), id); err != nil {
		switch {
		case errors.Is(err, service.ErrCompanyGone):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		case errors.Is(err, service.ErrCompanyHasStaff):
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Company deleted successfully"}))
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

// SetAccessBlocked toggles the company-level access block
// @Summary      Block or unblock a company
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Company ID"
// @Param        payload  body  setBlockedRequest  true  "Blocked flag"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/companies/{id}/access-blocked [post]
func (h *CompanyHandler) SetAccessBlocked(c *gin.Context) {
	id := c.Param("id")

	var req setBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.companyService.SetAccessBlocked(c.Request.Context(), actorID(c), id, req.Blocked); err != nil {
		if errors.Is(err, service.ErrCompanyGone) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"blocked": req.Blocked}))
}
