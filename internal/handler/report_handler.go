package handler

import (
	"fmt"
	"net/http"
	"time"

	"badgereg/internal/model"
	"badgereg/internal/report"
	"badgereg/internal/service"
	"badgereg/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, authz PermFunc) {
	reports := router.Group("/api/reports", authn)
	{
		reports.GET("/weekly", authz(model.PermEmployeesRead), h.DownloadWeekly)
		reports.GET("/expired", authz(model.PermEmployeesRead), h.DownloadExpired)
	}
}

// DownloadWeekly streams the authorized-personnel sheet as an XLSX download
// @Summary      Weekly authorized-personnel report
// @Tags         reports
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/reports/weekly [get]
func (h *ReportHandler) DownloadWeekly(c *gin.Context) {
	data, err := h.reportService.WeeklyReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	f, err := report.Weekly(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("autorizzati-%s.xlsx", data.GeneratedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		// headers are already out, nothing sensible left to send
		c.Abort()
	}
}

// DownloadExpired streams the expired-authorizations sheet as an XLSX download
// @Summary      Expired authorizations report
// @Tags         reports
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        as_of  query  string  false  "Cutoff date (YYYY-MM-DD, default today)"
// @Success      200
// @Router       /api/reports/expired [get]
func (h *ReportHandler) DownloadExpired(c *gin.Context) {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid as_of date, expected YYYY-MM-DD"))
			return
		}
		asOf = parsed
	}

	badges, err := h.reportService.ExpiredBadges(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	f, err := report.Expired(badges, asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("scaduti-%s.xlsx", asOf.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		c.Abort()
	}
}
