package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/response"
)

// routePattern is a pre-split route where each segment is either a literal
// or a wildcard matching exactly one non-empty path segment.
type routePattern struct {
	segments []string
	wildcard []bool
}

func compilePattern(pattern string) routePattern {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	compiled := routePattern{
		segments: make([]string, len(parts)),
		wildcard: make([]bool, len(parts)),
	}
	for i, p := range parts {
		compiled.segments[i] = p
		compiled.wildcard[i] = strings.HasPrefix(p, ":")
	}
	return compiled
}

func (p routePattern) match(path string) bool {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return len(p.segments) == 1 && p.segments[0] == ""
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) != len(p.segments) {
		return false
	}
	for i, part := range parts {
		if p.wildcard[i] {
			if part == "" {
				return false
			}
			continue
		}
		if part != p.segments[i] {
			return false
		}
	}
	return true
}

// RouteMatrix gates requests by role. Patterns are compiled once at
// registration, never per request. API paths are checked against the matrix
// after stripping the API prefix, so /api/v1/equipment/7 is gated by the
// /equipment/:id entry.
type RouteMatrix struct {
	apiPrefix string
	public    []routePattern
	roles     map[models.UserRole][]routePattern
}

func NewRouteMatrix(apiPrefix string) *RouteMatrix {
	return &RouteMatrix{
		apiPrefix: strings.TrimSuffix(apiPrefix, "/"),
		roles:     make(map[models.UserRole][]routePattern),
	}
}

// DefaultRouteMatrix builds the stock access table for the three roles.
func DefaultRouteMatrix(apiPrefix string) *RouteMatrix {
	m := NewRouteMatrix(apiPrefix)
	m.AllowPublic("/", "/login", "/auth/login", "/auth/logout", "/auth/session")
	m.Allow(models.RoleAdmin,
		"/dashboard",
		"/equipment",
		"/equipment/:id",
		"/teams",
		"/requests/kanban",
		"/requests/calendar",
		"/admin",
		"/admin/users",
	)
	m.Allow(models.RoleTechnician,
		"/dashboard",
		"/requests/kanban",
		"/requests/calendar",
		"/equipment/:id",
	)
	m.Allow(models.RoleUser,
		"/dashboard",
		"/requests/new",
		"/requests",
		"/equipment/:id",
	)
	return m
}

// Allow registers route patterns for a role.
func (m *RouteMatrix) Allow(role models.UserRole, patterns ...string) {
	for _, p := range patterns {
		m.roles[role] = append(m.roles[role], compilePattern(p))
	}
}

// AllowAll registers route patterns for every known role.
func (m *RouteMatrix) AllowAll(patterns ...string) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleTechnician, models.RoleUser} {
		m.Allow(role, patterns...)
	}
}

// AllowPublic registers paths reachable without authentication.
func (m *RouteMatrix) AllowPublic(patterns ...string) {
	for _, p := range patterns {
		m.public = append(m.public, compilePattern(p))
	}
}

// Allowed reports whether the role may reach the given matrix path.
func (m *RouteMatrix) Allowed(role models.UserRole, path string) bool {
	for _, p := range m.roles[role] {
		if p.match(path) {
			return true
		}
	}
	return false
}

// IsPublic reports whether the matrix path needs no session.
func (m *RouteMatrix) IsPublic(path string) bool {
	for _, p := range m.public {
		if p.match(path) {
			return true
		}
	}
	return false
}

// matrixPath normalizes a request path into matrix form: the API prefix is
// stripped and a trailing slash is tolerated.
func (m *RouteMatrix) matrixPath(path string) (string, bool) {
	api := strings.HasPrefix(path, "/api")
	if m.apiPrefix != "" && strings.HasPrefix(path, m.apiPrefix) {
		path = strings.TrimPrefix(path, m.apiPrefix)
		if path == "" {
			path = "/"
		}
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path, api
}

// Guard is the enforcement middleware. Run it after OptionalJWT so claims
// are already attached when present.
//
// Anonymous callers get 401 on API paths and a login redirect on pages.
// Authenticated callers outside their table get 403 on API paths and a
// dashboard redirect on pages.
func (m *RouteMatrix) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path, api := m.matrixPath(c.Request.URL.Path)

		if m.IsPublic(path) {
			c.Next()
			return
		}

		claims, ok := CurrentClaims(c)
		if !ok {
			if api {
				response.Error(c, appErrors.ErrUnauthorized)
				c.Abort()
				return
			}
			c.Redirect(http.StatusTemporaryRedirect, "/login?from="+url.QueryEscape(path))
			c.Abort()
			return
		}

		if !m.Allowed(claims.Role, path) {
			if api {
				response.Error(c, appErrors.ErrForbidden)
				c.Abort()
				return
			}
			c.Redirect(http.StatusTemporaryRedirect, "/dashboard")
			c.Abort()
			return
		}

		c.Next()
	}
}
