package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/response"
)

// EquipmentHandler exposes equipment asset endpoints.
type EquipmentHandler struct {
	equipment *service.EquipmentService
}

// NewEquipmentHandler constructs EquipmentHandler.
func NewEquipmentHandler(equipment *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

// List godoc
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Param search query string false "Search by name or serial number"
// @Param teamId query string false "Filter by maintenance team"
// @Param scrapped query bool false "Filter by scrapped state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	var filter models.EquipmentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if teamID := c.Query("teamId"); teamID != "" {
		filter.TeamID = &teamID
	}
	if scrapped := c.Query("scrapped"); scrapped != "" {
		if v, err := strconv.ParseBool(scrapped); err == nil {
			filter.IsScrapped = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	items, pagination, err := h.equipment.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get equipment with maintenance history
// @Tags Equipment
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	detail, err := h.equipment.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Register equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Param payload body dto.EquipmentRequest true "Equipment payload"
// @Success 201 {object} response.Envelope
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req dto.EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eq, err := h.equipment.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, eq)
}

// Update godoc
// @Summary Update equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Param id path string true "Equipment ID"
// @Param payload body dto.EquipmentRequest true "Equipment payload"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id} [put]
func (h *EquipmentHandler) Update(c *gin.Context) {
	var req dto.EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eq, err := h.equipment.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eq, nil)
}

// Delete godoc
// @Summary Delete equipment
// @Tags Equipment
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 204 {object} response.Envelope
// @Router /equipment/{id} [delete]
func (h *EquipmentHandler) Delete(c *gin.Context) {
	if err := h.equipment.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
