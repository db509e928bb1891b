package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

type requestRepository interface {
	FindByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	FindDetail(ctx context.Context, id string) (*models.RequestDetail, error)
	List(ctx context.Context, filter models.RequestFilter, scope models.RequestScope) ([]models.RequestDetail, int, error)
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	Update(ctx context.Context, req *models.MaintenanceRequest) error
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus, scrapEquipmentID *string) error
	Delete(ctx context.Context, id string) error
}

type requestEquipmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
}

type requestUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequestNotifier receives lifecycle events for in-app notifications.
// Implementations must tolerate being called with a nil technician.
type RequestNotifier interface {
	NotifyAssigned(ctx context.Context, req *models.MaintenanceRequest)
	NotifyStatusChange(ctx context.Context, req *models.MaintenanceRequest, from, to models.RequestStatus)
}

// RequestService owns the maintenance request lifecycle: creation rules,
// role-scoped listing, and status changes with their cascade.
type RequestService struct {
	repo      requestRepository
	equipment requestEquipmentRepository
	users     requestUserRepository
	cache     *CacheService
	notifier  RequestNotifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewRequestService(repo requestRepository, equipment requestEquipmentRepository, users requestUserRepository, cache *CacheService, notifier RequestNotifier, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{
		repo:      repo,
		equipment: equipment,
		users:     users,
		cache:     cache,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// scopeFor translates the caller's role into a listing scope.
func scopeFor(claims *models.JWTClaims) models.RequestScope {
	switch claims.Role {
	case models.RoleAdmin:
		return models.RequestScope{}
	case models.RoleTechnician:
		return models.RequestScope{TechnicianID: &claims.UserID, TeamID: claims.TeamID}
	default:
		return models.RequestScope{CreatedByID: &claims.UserID}
	}
}

// List returns requests visible to the caller, annotated with overdue state.
func (s *RequestService) List(ctx context.Context, claims *models.JWTClaims, filter models.RequestFilter) ([]models.RequestDetail, *models.Pagination, error) {
	if claims.Role != models.RoleAdmin {
		// Only admins may filter across arbitrary teams.
		filter.TeamID = nil
	}

	details, total, err := s.repo.List(ctx, filter, scopeFor(claims))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}

	AnnotateOverdue(details, s.now())

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return details, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns one request if the caller may see it.
func (s *RequestService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.RequestDetail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	if !visibleTo(claims, &detail.MaintenanceRequest) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request is outside your scope")
	}

	now := s.now()
	detail.Overdue = IsOverdue(&detail.MaintenanceRequest, now)
	detail.DaysOverdue = DaysOverdue(&detail.MaintenanceRequest, now)
	return detail, nil
}

func visibleTo(claims *models.JWTClaims, req *models.MaintenanceRequest) bool {
	switch claims.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTechnician:
		if req.TechnicianID != nil && *req.TechnicianID == claims.UserID {
			return true
		}
		return claims.TeamID != nil && *claims.TeamID == req.TeamID
	default:
		return req.CreatedByID == claims.UserID
	}
}

// Create opens a new request. Scrapped equipment is rejected, the team
// defaults to the equipment's team, and an assigned technician must belong
// to that team.
func (s *RequestService) Create(ctx context.Context, claims *models.JWTClaims, payload dto.CreateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	eq, err := s.equipment.FindByID(ctx, payload.EquipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}
	if eq.IsScrapped {
		return nil, appErrors.Clone(appErrors.ErrEquipmentScrapped, "cannot create a request for scrapped equipment")
	}

	teamID := ""
	switch {
	case payload.TeamID != nil && *payload.TeamID != "":
		teamID = *payload.TeamID
	case eq.TeamID != nil:
		teamID = *eq.TeamID
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "equipment has no maintenance team and none was given")
	}

	if payload.TechnicianID != nil {
		if err := s.ensureTechnicianInTeam(ctx, *payload.TechnicianID, teamID); err != nil {
			return nil, err
		}
	}

	req := &models.MaintenanceRequest{
		Subject:       payload.Subject,
		Description:   payload.Description,
		Status:        models.StatusNew,
		RequestType:   models.RequestType(payload.RequestType),
		ScheduledDate: payload.ScheduledDate,
		DurationHours: payload.DurationHours,
		EquipmentID:   payload.EquipmentID,
		TeamID:        teamID,
		TechnicianID:  payload.TechnicianID,
		CreatedByID:   claims.UserID,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	s.invalidateInsights(ctx)
	if s.notifier != nil && req.TechnicianID != nil {
		s.notifier.NotifyAssigned(ctx, req)
	}

	s.logger.Info("maintenance request created",
		zap.String("request_id", req.ID),
		zap.String("equipment_id", req.EquipmentID),
		zap.String("type", string(req.RequestType)))
	return req, nil
}

// Update patches a request. Status changes run the lifecycle planner and
// execute its cascade in one transaction.
func (s *RequestService) Update(ctx context.Context, claims *models.JWTClaims, id string, payload dto.UpdateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	if !visibleTo(claims, req) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request is outside your scope")
	}

	if payload.Subject != nil {
		req.Subject = *payload.Subject
	}
	if payload.Description != nil {
		req.Description = *payload.Description
	}
	if payload.ScheduledDate != nil {
		req.ScheduledDate = payload.ScheduledDate
	}
	if payload.DurationHours != nil {
		req.DurationHours = payload.DurationHours
	}
	if payload.TechnicianID != nil {
		if *payload.TechnicianID == "" {
			req.TechnicianID = nil
		} else {
			if err := s.ensureTechnicianInTeam(ctx, *payload.TechnicianID, req.TeamID); err != nil {
				return nil, err
			}
			req.TechnicianID = payload.TechnicianID
		}
	}

	// Plan the status change before persisting anything so an invalid
	// transition rejects the whole patch.
	var plan *StatusChangePlan
	if payload.Status != nil && models.RequestStatus(*payload.Status) != req.Status {
		var err error
		plan, err = PlanStatusChange(req, models.RequestStatus(*payload.Status))
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}

	if plan != nil {
		var scrapID *string
		for _, f := range plan.FollowUps {
			if f.ScrapEquipment != "" {
				id := f.ScrapEquipment
				scrapID = &id
			}
		}
		if err := s.repo.UpdateStatus(ctx, req.ID, plan.To, scrapID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply status change")
		}

		from := req.Status
		req.Status = plan.To
		if s.notifier != nil {
			s.notifier.NotifyStatusChange(ctx, req, from, plan.To)
		}
		s.logger.Info("request status changed",
			zap.String("request_id", req.ID),
			zap.String("from", string(from)),
			zap.String("to", string(plan.To)))
	}

	s.invalidateInsights(ctx)
	return req, nil
}

// Delete removes a request entirely.
func (s *RequestService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete request")
	}
	s.invalidateInsights(ctx)
	return nil
}

func (s *RequestService) ensureTechnicianInTeam(ctx context.Context, technicianID, teamID string) error {
	tech, err := s.users.FindByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "technician not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load technician")
	}
	if tech.Role != models.RoleTechnician {
		return appErrors.Clone(appErrors.ErrTechnicianTeam, "assignee is not a technician")
	}
	if !tech.InTeam(teamID) {
		return appErrors.Clone(appErrors.ErrTechnicianTeam, "technician does not belong to the assigned team")
	}
	return nil
}

func (s *RequestService) invalidateInsights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "insights:*"); err != nil {
		s.logger.Warn("failed to invalidate insights cache", zap.Error(err))
	}
}
