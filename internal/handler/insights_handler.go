package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/response"
)

// InsightsHandler exposes the dashboard insights endpoints.
type InsightsHandler struct {
	insights *service.InsightsService
}

// NewInsightsHandler constructs InsightsHandler.
func NewInsightsHandler(insights *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// Overview godoc
// @Summary Dashboard insights overview
// @Description Fleet risk, status breakdown, overdue count and upcoming schedule
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/insights [get]
func (h *InsightsHandler) Overview(c *gin.Context) {
	overview, cached, err := h.insights.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil, map[string]interface{}{"cached": cached})
}

// EquipmentHealth godoc
// @Summary Equipment health evaluation
// @Tags Insights
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id}/health [get]
func (h *InsightsHandler) EquipmentHealth(c *gin.Context) {
	health, cached, err := h.insights.EquipmentHealth(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, health, nil, map[string]interface{}{"cached": cached})
}

// HealthSummary godoc
// @Summary Plain-text health digest for one asset
// @Tags Insights
// @Produce plain
// @Param id path string true "Equipment ID"
// @Success 200 {string} string
// @Router /equipment/{id}/health/summary [get]
func (h *InsightsHandler) HealthSummary(c *gin.Context) {
	summary, err := h.insights.HealthSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.String(http.StatusOK, summary)
}
