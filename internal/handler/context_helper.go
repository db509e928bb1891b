package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/middleware"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

// claimsFromContext returns the authenticated caller's claims, or nil for
// anonymous requests.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	v, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*models.JWTClaims)
	return claims
}
