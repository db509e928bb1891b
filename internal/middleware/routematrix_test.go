package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

func matrixRouter(matrix *RouteMatrix, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	router.Use(matrix.Guard())
	router.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func matrixGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRouteMatrix_Allowed(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")

	cases := []struct {
		name    string
		role    models.UserRole
		path    string
		allowed bool
	}{
		{"admin equipment list", models.RoleAdmin, "/equipment", true},
		{"admin equipment detail", models.RoleAdmin, "/equipment/eq-42", true},
		{"admin user management", models.RoleAdmin, "/admin/users", true},
		{"technician kanban", models.RoleTechnician, "/requests/kanban", true},
		{"technician equipment detail", models.RoleTechnician, "/equipment/eq-42", true},
		{"technician equipment list denied", models.RoleTechnician, "/equipment", false},
		{"technician admin denied", models.RoleTechnician, "/admin", false},
		{"user request form", models.RoleUser, "/requests/new", true},
		{"user request list", models.RoleUser, "/requests", true},
		{"user teams denied", models.RoleUser, "/teams", false},
		{"user kanban denied", models.RoleUser, "/requests/kanban", false},
		{"wildcard is one segment", models.RoleAdmin, "/equipment/eq-42/history", false},
		{"trailing slash tolerated", models.RoleAdmin, "/teams/", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path, _ := matrix.matrixPath(tc.path)
			assert.Equal(t, tc.allowed, matrix.Allowed(tc.role, path))
		})
	}
}

func TestRouteMatrixGuard_PublicBypass(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")
	router := matrixRouter(matrix, nil)

	assert.Equal(t, http.StatusOK, matrixGet(router, "/login").Code)
	assert.Equal(t, http.StatusOK, matrixGet(router, "/api/v1/auth/login").Code)
	assert.Equal(t, http.StatusOK, matrixGet(router, "/").Code)
}

func TestRouteMatrixGuard_AnonymousAPIGets401(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")
	router := matrixRouter(matrix, nil)

	w := matrixGet(router, "/api/v1/equipment")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestRouteMatrixGuard_AnonymousPageRedirectsToLogin(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")
	router := matrixRouter(matrix, nil)

	w := matrixGet(router, "/dashboard")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/login?from=%2Fdashboard", w.Header().Get("Location"))
}

func TestRouteMatrixGuard_ForbiddenAPIGets403(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleUser}
	router := matrixRouter(matrix, claims)

	w := matrixGet(router, "/api/v1/teams")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouteMatrixGuard_ForbiddenPageRedirectsToDashboard(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleTechnician}
	router := matrixRouter(matrix, claims)

	w := matrixGet(router, "/admin")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestRouteMatrixGuard_AuthorizedPasses(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}
	router := matrixRouter(matrix, claims)

	assert.Equal(t, http.StatusOK, matrixGet(router, "/api/v1/equipment/eq-7").Code)
	assert.Equal(t, http.StatusOK, matrixGet(router, "/teams").Code)
}

func TestRouteMatrix_AllowAllExtendsEveryRole(t *testing.T) {
	matrix := DefaultRouteMatrix("/api/v1")
	matrix.AllowAll("/notifications", "/notifications/:id")

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleTechnician, models.RoleUser} {
		assert.True(t, matrix.Allowed(role, "/notifications"), string(role))
		assert.True(t, matrix.Allowed(role, "/notifications/n-1"), string(role))
	}
}
