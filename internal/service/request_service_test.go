package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

type fakeRequestRepo struct {
	requests map[string]*models.MaintenanceRequest
	details  map[string]*models.RequestDetail

	listDetails []models.RequestDetail
	listFilter  models.RequestFilter
	listScope   models.RequestScope

	created  *models.MaintenanceRequest
	updated  *models.MaintenanceRequest
	statusID string
	statusTo models.RequestStatus
	scrapID  *string
	deleted  string
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id string) (*models.MaintenanceRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequestRepo) FindDetail(_ context.Context, id string) (*models.RequestDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *detail
	return &cp, nil
}

func (f *fakeRequestRepo) List(_ context.Context, filter models.RequestFilter, scope models.RequestScope) ([]models.RequestDetail, int, error) {
	f.listFilter = filter
	f.listScope = scope
	return f.listDetails, len(f.listDetails), nil
}

func (f *fakeRequestRepo) Create(_ context.Context, req *models.MaintenanceRequest) error {
	req.ID = "req-new"
	f.created = req
	return nil
}

func (f *fakeRequestRepo) Update(_ context.Context, req *models.MaintenanceRequest) error {
	f.updated = req
	return nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, id string, status models.RequestStatus, scrapEquipmentID *string) error {
	f.statusID = id
	f.statusTo = status
	f.scrapID = scrapEquipmentID
	return nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

type fakeEquipmentFinder struct {
	items map[string]*models.Equipment
}

func (f *fakeEquipmentFinder) FindByID(_ context.Context, id string) (*models.Equipment, error) {
	eq, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return eq, nil
}

type fakeUserFinder struct {
	users map[string]*models.User
}

func (f *fakeUserFinder) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type fakeNotifier struct {
	assigned      []*models.MaintenanceRequest
	statusChanges []models.RequestStatus
}

func (f *fakeNotifier) NotifyAssigned(_ context.Context, req *models.MaintenanceRequest) {
	f.assigned = append(f.assigned, req)
}

func (f *fakeNotifier) NotifyStatusChange(_ context.Context, _ *models.MaintenanceRequest, _, to models.RequestStatus) {
	f.statusChanges = append(f.statusChanges, to)
}

func strPtr(s string) *string { return &s }

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func techClaims(userID, teamID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleTechnician, TeamID: &teamID}
}

func memberClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleUser}
}

func newRequestService(repo *fakeRequestRepo, equipment *fakeEquipmentFinder, users *fakeUserFinder, notifier *fakeNotifier) *RequestService {
	return NewRequestService(repo, equipment, users, nil, notifier, nil, nil)
}

func TestRequestService_CreateRejectsScrappedEquipment(t *testing.T) {
	repo := &fakeRequestRepo{}
	equipment := &fakeEquipmentFinder{items: map[string]*models.Equipment{
		"eq-1": {ID: "eq-1", Name: "Press", IsScrapped: true},
	}}
	svc := newRequestService(repo, equipment, &fakeUserFinder{}, nil)

	_, err := svc.Create(context.Background(), memberClaims("user-1"), dto.CreateMaintenanceRequest{
		Subject:     "Broken belt",
		RequestType: "CORRECTIVE",
		EquipmentID: "eq-1",
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEquipmentScrapped.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestRequestService_CreateDefaultsTeamFromEquipment(t *testing.T) {
	repo := &fakeRequestRepo{}
	equipment := &fakeEquipmentFinder{items: map[string]*models.Equipment{
		"eq-1": {ID: "eq-1", Name: "Press", TeamID: strPtr("team-1")},
	}}
	notifier := &fakeNotifier{}
	svc := newRequestService(repo, equipment, &fakeUserFinder{users: map[string]*models.User{
		"tech-1": {ID: "tech-1", Role: models.RoleTechnician, TeamID: strPtr("team-1")},
	}}, notifier)

	req, err := svc.Create(context.Background(), memberClaims("user-1"), dto.CreateMaintenanceRequest{
		Subject:      "Quarterly service",
		RequestType:  "PREVENTIVE",
		EquipmentID:  "eq-1",
		TechnicianID: strPtr("tech-1"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, req.Status)
	assert.Equal(t, "team-1", req.TeamID)
	assert.Equal(t, "user-1", req.CreatedByID)
	require.Len(t, notifier.assigned, 1)
}

func TestRequestService_CreateRejectsTechnicianOutsideTeam(t *testing.T) {
	repo := &fakeRequestRepo{}
	equipment := &fakeEquipmentFinder{items: map[string]*models.Equipment{
		"eq-1": {ID: "eq-1", TeamID: strPtr("team-1")},
	}}
	svc := newRequestService(repo, equipment, &fakeUserFinder{users: map[string]*models.User{
		"tech-2": {ID: "tech-2", Role: models.RoleTechnician, TeamID: strPtr("team-2")},
	}}, nil)

	_, err := svc.Create(context.Background(), adminClaims(), dto.CreateMaintenanceRequest{
		Subject:      "Misrouted",
		RequestType:  "CORRECTIVE",
		EquipmentID:  "eq-1",
		TechnicianID: strPtr("tech-2"),
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrTechnicianTeam.Code, appErr.Code)
}

func TestRequestService_CreateRequiresTeamWhenEquipmentHasNone(t *testing.T) {
	repo := &fakeRequestRepo{}
	equipment := &fakeEquipmentFinder{items: map[string]*models.Equipment{
		"eq-1": {ID: "eq-1"},
	}}
	svc := newRequestService(repo, equipment, &fakeUserFinder{}, nil)

	_, err := svc.Create(context.Background(), adminClaims(), dto.CreateMaintenanceRequest{
		Subject:     "No team",
		RequestType: "CORRECTIVE",
		EquipmentID: "eq-1",
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRequestService_UpdateScrapRunsCascade(t *testing.T) {
	repo := &fakeRequestRepo{requests: map[string]*models.MaintenanceRequest{
		"req-1": {ID: "req-1", Subject: "Dead motor", Status: models.StatusInProgress, EquipmentID: "eq-1", TeamID: "team-1"},
	}}
	notifier := &fakeNotifier{}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, notifier)

	req, err := svc.Update(context.Background(), adminClaims(), "req-1", dto.UpdateMaintenanceRequest{
		Status: strPtr("SCRAP"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusScrap, req.Status)
	assert.Equal(t, "req-1", repo.statusID)
	assert.Equal(t, models.StatusScrap, repo.statusTo)
	require.NotNil(t, repo.scrapID)
	assert.Equal(t, "eq-1", *repo.scrapID)
	assert.Equal(t, []models.RequestStatus{models.StatusScrap}, notifier.statusChanges)
}

func TestRequestService_UpdateRepairedLeavesEquipmentAlone(t *testing.T) {
	repo := &fakeRequestRepo{requests: map[string]*models.MaintenanceRequest{
		"req-1": {ID: "req-1", Status: models.StatusInProgress, EquipmentID: "eq-1", TeamID: "team-1"},
	}}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, nil)

	req, err := svc.Update(context.Background(), adminClaims(), "req-1", dto.UpdateMaintenanceRequest{
		Status: strPtr("REPAIRED"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusRepaired, req.Status)
	assert.Nil(t, repo.scrapID)
}

func TestRequestService_UpdateRejectsTerminalTransition(t *testing.T) {
	repo := &fakeRequestRepo{requests: map[string]*models.MaintenanceRequest{
		"req-1": {ID: "req-1", Status: models.StatusRepaired, EquipmentID: "eq-1", TeamID: "team-1"},
	}}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, nil)

	_, err := svc.Update(context.Background(), adminClaims(), "req-1", dto.UpdateMaintenanceRequest{
		Status: strPtr("SCRAP"),
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	assert.Empty(t, repo.statusID)
}

func TestRequestService_UpdateSameStatusSkipsPlanner(t *testing.T) {
	repo := &fakeRequestRepo{requests: map[string]*models.MaintenanceRequest{
		"req-1": {ID: "req-1", Status: models.StatusInProgress, EquipmentID: "eq-1", TeamID: "team-1"},
	}}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, nil)

	req, err := svc.Update(context.Background(), adminClaims(), "req-1", dto.UpdateMaintenanceRequest{
		Status: strPtr("IN_PROGRESS"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, req.Status)
	assert.Empty(t, repo.statusID)
}

func TestRequestService_GetEnforcesVisibility(t *testing.T) {
	repo := &fakeRequestRepo{details: map[string]*models.RequestDetail{
		"req-1": {MaintenanceRequest: models.MaintenanceRequest{
			ID: "req-1", Status: models.StatusNew, TeamID: "team-1", CreatedByID: "user-1",
		}},
	}}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, nil)

	_, err := svc.Get(context.Background(), memberClaims("user-2"), "req-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	detail, err := svc.Get(context.Background(), memberClaims("user-1"), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", detail.ID)

	detail, err = svc.Get(context.Background(), techClaims("tech-1", "team-1"), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", detail.ID)
}

func TestRequestService_ListScopesByRole(t *testing.T) {
	repo := &fakeRequestRepo{}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, nil)

	_, _, err := svc.List(context.Background(), adminClaims(), models.RequestFilter{TeamID: strPtr("team-9")})
	require.NoError(t, err)
	assert.Equal(t, models.RequestScope{}, repo.listScope)
	require.NotNil(t, repo.listFilter.TeamID)

	_, _, err = svc.List(context.Background(), techClaims("tech-1", "team-1"), models.RequestFilter{TeamID: strPtr("team-9")})
	require.NoError(t, err)
	require.NotNil(t, repo.listScope.TechnicianID)
	assert.Equal(t, "tech-1", *repo.listScope.TechnicianID)
	require.NotNil(t, repo.listScope.TeamID)
	assert.Equal(t, "team-1", *repo.listScope.TeamID)
	// Cross-team filtering is an admin privilege.
	assert.Nil(t, repo.listFilter.TeamID)

	_, _, err = svc.List(context.Background(), memberClaims("user-1"), models.RequestFilter{})
	require.NoError(t, err)
	require.NotNil(t, repo.listScope.CreatedByID)
	assert.Equal(t, "user-1", *repo.listScope.CreatedByID)
}

func TestRequestService_ListAnnotatesOverdue(t *testing.T) {
	past := time.Date(2025, 4, 20, 8, 0, 0, 0, time.UTC)
	repo := &fakeRequestRepo{listDetails: []models.RequestDetail{
		{MaintenanceRequest: models.MaintenanceRequest{
			ID: "req-1", Status: models.StatusNew, ScheduledDate: &past,
		}},
	}}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 25, 8, 0, 0, 0, time.UTC) }

	details, _, err := svc.List(context.Background(), adminClaims(), models.RequestFilter{})

	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.True(t, details[0].Overdue)
	assert.Equal(t, 5, details[0].DaysOverdue)
}

func TestRequestService_UpdateInvalidTransitionLeavesFieldsUntouched(t *testing.T) {
	repo := &fakeRequestRepo{requests: map[string]*models.MaintenanceRequest{
		"req-1": {ID: "req-1", Subject: "Old subject", Status: models.StatusRepaired, EquipmentID: "eq-1", TeamID: "team-1"},
	}}
	svc := newRequestService(repo, &fakeEquipmentFinder{}, &fakeUserFinder{}, nil)

	_, err := svc.Update(context.Background(), adminClaims(), "req-1", dto.UpdateMaintenanceRequest{
		Subject: strPtr("New subject"),
		Status:  strPtr("SCRAP"),
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	assert.Nil(t, repo.updated)
	assert.Empty(t, repo.statusID)
}
