package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/response"
)

// RequestHandler exposes maintenance request endpoints.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// List godoc
// @Summary List maintenance requests visible to the caller
// @Tags Requests
// @Produce json
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by request type"
// @Param equipmentId query string false "Filter by equipment"
// @Param teamId query string false "Filter by team (admin only)"
// @Param from query string false "Created from (RFC 3339)"
// @Param to query string false "Created to (RFC 3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.RequestFilter
	if status := c.Query("status"); status != "" {
		s := models.RequestStatus(status)
		filter.Status = &s
	}
	if reqType := c.Query("type"); reqType != "" {
		t := models.RequestType(reqType)
		filter.RequestType = &t
	}
	if equipmentID := c.Query("equipmentId"); equipmentID != "" {
		filter.EquipmentID = &equipmentID
	}
	if teamID := c.Query("teamId"); teamID != "" {
		filter.TeamID = &teamID
	}
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = &ts
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	details, pagination, err := h.requests.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, pagination)
}

// Get godoc
// @Summary Get one maintenance request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.requests.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Open a maintenance request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateMaintenanceRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	created, err := h.requests.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Patch a maintenance request
// @Description Field updates plus lifecycle transitions. Moving to SCRAP
// @Description also retires the linked equipment.
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateMaintenanceRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/{id} [patch]
func (h *RequestHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	updated, err := h.requests.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete a maintenance request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
