package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

type equipmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentSummary, int, error)
	Create(ctx context.Context, eq *models.Equipment) error
	Update(ctx context.Context, eq *models.Equipment) error
	Delete(ctx context.Context, id string) error
}

type equipmentHistoryRepository interface {
	HistoryByEquipment(ctx context.Context, equipmentID string) ([]models.RequestHistoryEntry, error)
}

// EquipmentDetail pairs an asset with its maintenance history.
type EquipmentDetail struct {
	models.Equipment
	History []models.RequestHistoryEntry `json:"history"`
}

// EquipmentService manages equipment assets.
type EquipmentService struct {
	repo      equipmentRepository
	requests  equipmentHistoryRepository
	teams     userTeamRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewEquipmentService(repo equipmentRepository, requests equipmentHistoryRepository, teams userTeamRepository, validate *validator.Validate, logger *zap.Logger) *EquipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EquipmentService{repo: repo, requests: requests, teams: teams, validator: validate, logger: logger}
}

// List returns equipment summaries with pagination metadata.
func (s *EquipmentService) List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentSummary, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equipment")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns one asset with its maintenance history.
func (s *EquipmentService) Get(ctx context.Context, id string) (*EquipmentDetail, error) {
	eq, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.requests.HistoryByEquipment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment history")
	}

	return &EquipmentDetail{Equipment: *eq, History: history}, nil
}

// Create registers a new asset. An assigned team must exist.
func (s *EquipmentService) Create(ctx context.Context, req dto.EquipmentRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}

	if req.TeamID != nil {
		if err := s.ensureTeamExists(ctx, *req.TeamID); err != nil {
			return nil, err
		}
	}

	eq := &models.Equipment{
		Name:             req.Name,
		SerialNumber:     req.SerialNumber,
		Department:       req.Department,
		Location:         req.Location,
		AssignedEmployee: req.AssignedEmployee,
		PurchaseDate:     req.PurchaseDate,
		WarrantyExpiry:   req.WarrantyExpiry,
		TeamID:           req.TeamID,
	}
	if err := s.repo.Create(ctx, eq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create equipment")
	}

	s.logger.Info("equipment created", zap.String("equipment_id", eq.ID), zap.String("name", eq.Name))
	return eq, nil
}

// Update modifies an asset. Scrapped assets stay editable for record
// keeping, but the scrapped flag itself only flips through the request
// lifecycle cascade.
func (s *EquipmentService) Update(ctx context.Context, id string, req dto.EquipmentRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}

	eq, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TeamID != nil {
		if err := s.ensureTeamExists(ctx, *req.TeamID); err != nil {
			return nil, err
		}
	}

	eq.Name = req.Name
	eq.SerialNumber = req.SerialNumber
	eq.Department = req.Department
	eq.Location = req.Location
	eq.AssignedEmployee = req.AssignedEmployee
	eq.PurchaseDate = req.PurchaseDate
	eq.WarrantyExpiry = req.WarrantyExpiry
	eq.TeamID = req.TeamID

	if err := s.repo.Update(ctx, eq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update equipment")
	}
	return eq, nil
}

// Delete removes an asset.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete equipment")
	}
	return nil
}

func (s *EquipmentService) find(ctx context.Context, id string) (*models.Equipment, error) {
	eq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}
	return eq, nil
}

func (s *EquipmentService) ensureTeamExists(ctx context.Context, teamID string) error {
	if s.teams == nil {
		return nil
	}
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}
	return nil
}
