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

type teamRepository interface {
	FindByID(ctx context.Context, id string) (*models.MaintenanceTeam, error)
	ListSummaries(ctx context.Context) ([]models.TeamSummary, error)
	ListMembers(ctx context.Context, teamID string) ([]models.User, error)
	Create(ctx context.Context, team *models.MaintenanceTeam) error
	Update(ctx context.Context, team *models.MaintenanceTeam) error
	Delete(ctx context.Context, id string) error
}

// TeamService manages maintenance teams and their rosters.
type TeamService struct {
	repo      teamRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewTeamService(repo teamRepository, validate *validator.Validate, logger *zap.Logger) *TeamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeamService{repo: repo, validator: validate, logger: logger}
}

// List returns all teams with aggregate counts.
func (s *TeamService) List(ctx context.Context) ([]models.TeamSummary, error) {
	teams, err := s.repo.ListSummaries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teams")
	}
	return teams, nil
}

// Get returns a team with its member roster.
func (s *TeamService) Get(ctx context.Context, id string) (*models.TeamDetail, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}

	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list team members")
	}

	detail := &models.TeamDetail{MaintenanceTeam: *team, Members: make([]models.UserInfo, 0, len(members))}
	for _, m := range members {
		detail.Members = append(detail.Members, models.UserInfo{
			ID:       m.ID,
			Email:    m.Email,
			FullName: m.FullName,
			Role:     m.Role,
			TeamID:   m.TeamID,
		})
	}
	return detail, nil
}

// Create adds a new team.
func (s *TeamService) Create(ctx context.Context, req dto.TeamRequest) (*models.MaintenanceTeam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team payload")
	}

	team := &models.MaintenanceTeam{Name: req.Name}
	if err := s.repo.Create(ctx, team); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create team")
	}
	s.logger.Info("team created", zap.String("team_id", team.ID), zap.String("name", team.Name))
	return team, nil
}

// Update renames a team.
func (s *TeamService) Update(ctx context.Context, id string, req dto.TeamRequest) (*models.MaintenanceTeam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team payload")
	}

	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}

	team.Name = req.Name
	if err := s.repo.Update(ctx, team); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update team")
	}
	return team, nil
}

// Delete removes a team, detaching members and equipment.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete team")
	}
	return nil
}
