package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/response"
)

// TeamHandler exposes maintenance team endpoints.
type TeamHandler struct {
	teams *service.TeamService
}

// NewTeamHandler constructs TeamHandler.
func NewTeamHandler(teams *service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// List godoc
// @Summary List maintenance teams
// @Tags Teams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.teams.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teams, nil)
}

// Get godoc
// @Summary Get team detail with members
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.teams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Create godoc
// @Summary Create maintenance team
// @Tags Teams
// @Accept json
// @Produce json
// @Param payload body dto.TeamRequest true "Team payload"
// @Success 201 {object} response.Envelope
// @Router /teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	var req dto.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	team, err := h.teams.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, team)
}

// Update godoc
// @Summary Rename maintenance team
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param payload body dto.TeamRequest true "Team payload"
// @Success 200 {object} response.Envelope
// @Router /teams/{id} [put]
func (h *TeamHandler) Update(c *gin.Context) {
	var req dto.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	team, err := h.teams.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Delete godoc
// @Summary Delete maintenance team
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 204 {object} response.Envelope
// @Router /teams/{id} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	if err := h.teams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
