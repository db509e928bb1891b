package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/response"
)

// SystemHandler exposes health probes and aggregated system metrics.
type SystemHandler struct {
	db      *sqlx.DB
	metrics *service.MetricsService
}

// NewSystemHandler constructs SystemHandler.
func NewSystemHandler(db *sqlx.DB, metrics *service.MetricsService) *SystemHandler {
	return &SystemHandler{db: db, metrics: metrics}
}

// Health godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}

// Ready godoc
// @Summary Readiness probe
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"}, nil)
}

// Metrics godoc
// @Summary Aggregated system metrics snapshot
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/system/metrics [get]
func (h *SystemHandler) Metrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
