package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/middleware"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type stubRequestRepo struct {
	details []models.RequestDetail
	created *models.MaintenanceRequest
}

func (s *stubRequestRepo) FindByID(context.Context, string) (*models.MaintenanceRequest, error) {
	return nil, sql.ErrNoRows
}

func (s *stubRequestRepo) FindDetail(context.Context, string) (*models.RequestDetail, error) {
	return nil, sql.ErrNoRows
}

func (s *stubRequestRepo) List(context.Context, models.RequestFilter, models.RequestScope) ([]models.RequestDetail, int, error) {
	return s.details, len(s.details), nil
}

func (s *stubRequestRepo) Create(_ context.Context, req *models.MaintenanceRequest) error {
	req.ID = "req-created"
	s.created = req
	return nil
}

func (s *stubRequestRepo) Update(context.Context, *models.MaintenanceRequest) error { return nil }

func (s *stubRequestRepo) UpdateStatus(context.Context, string, models.RequestStatus, *string) error {
	return nil
}

func (s *stubRequestRepo) Delete(context.Context, string) error { return nil }

type stubEquipmentRepo struct {
	items map[string]*models.Equipment
}

func (s *stubEquipmentRepo) FindByID(_ context.Context, id string) (*models.Equipment, error) {
	eq, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return eq, nil
}

type stubUserRepo struct{}

func (s *stubUserRepo) FindByID(context.Context, string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func newRequestHandler(repo *stubRequestRepo, equipment *stubEquipmentRepo) *RequestHandler {
	svc := service.NewRequestService(repo, equipment, &stubUserRepo{}, nil, nil, nil, nil)
	return NewRequestHandler(svc)
}

func teamPtr(s string) *string { return &s }

func TestRequestHandlerListRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRequestHandler(&stubRequestRepo{}, &stubEquipmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests", nil)

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestHandlerListSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubRequestRepo{details: []models.RequestDetail{
		{MaintenanceRequest: models.MaintenanceRequest{ID: "req-1", Status: models.StatusNew}},
	}}
	handler := newRequestHandler(repo, &stubEquipmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests?status=NEW", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, string(envelope.Data), "req-1")
}

func TestRequestHandlerCreateScrappedEquipmentConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	equipment := &stubEquipmentRepo{items: map[string]*models.Equipment{
		"eq-1": {ID: "eq-1", IsScrapped: true},
	}}
	handler := newRequestHandler(&stubRequestRepo{}, equipment)

	body := `{"subject":"Broken","request_type":"CORRECTIVE","equipment_id":"eq-1"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRequestHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubRequestRepo{}
	equipment := &stubEquipmentRepo{items: map[string]*models.Equipment{
		"eq-1": {ID: "eq-1", TeamID: teamPtr("team-1")},
	}}
	handler := newRequestHandler(repo, equipment)

	body := `{"subject":"Quarterly service","request_type":"PREVENTIVE","equipment_id":"eq-1"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "team-1", repo.created.TeamID)
	assert.Equal(t, models.StatusNew, repo.created.Status)
}

func TestRequestHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRequestHandler(&stubRequestRepo{}, &stubEquipmentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests/req-404", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-404"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
