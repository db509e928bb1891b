package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/response"
)

// ReportHandler exposes reporting and export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func reportFilterFromQuery(c *gin.Context) dto.ReportFilter {
	var filter dto.ReportFilter
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &ts
		}
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if reqType := c.Query("type"); reqType != "" {
		filter.RequestType = &reqType
	}
	if teamID := c.Query("teamId"); teamID != "" {
		filter.TeamID = &teamID
	}
	return filter
}

// Summary godoc
// @Summary Aggregate report over the request register
// @Tags Reports
// @Produce json
// @Param from query string false "Created from (RFC 3339)"
// @Param to query string false "Created to (RFC 3339)"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by request type"
// @Param teamId query string false "Filter by team"
// @Success 200 {object} response.Envelope
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// TeamPerformance godoc
// @Summary Team throughput and repair time ranking
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/team-performance [get]
func (h *ReportHandler) TeamPerformance(c *gin.Context) {
	rows, err := h.reports.TeamPerformance(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// HealthRanking godoc
// @Summary Fleet ranked from highest to lowest risk
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/health-ranking [get]
func (h *ReportHandler) HealthRanking(c *gin.Context) {
	ranking, err := h.reports.HealthRanking(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking, nil)
}

// Export godoc
// @Summary Export the request register
// @Description Streams the filtered register as csv, xlsx or pdf
// @Tags Reports
// @Produce octet-stream
// @Param format query string true "csv, xlsx or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.reports.Export(c.Request.Context(), reportFilterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
