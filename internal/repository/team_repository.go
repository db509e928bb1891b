package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

// TeamRepository provides database access for maintenance teams.
type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// FindByID returns a team by identifier.
func (r *TeamRepository) FindByID(ctx context.Context, id string) (*models.MaintenanceTeam, error) {
	const query = `SELECT id, name, created_at, updated_at FROM maintenance_teams WHERE id = $1 LIMIT 1`
	var team models.MaintenanceTeam
	if err := r.db.GetContext(ctx, &team, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find team by id: %w", err)
	}
	return &team, nil
}

// ListSummaries returns all teams with member, equipment and request counts.
func (r *TeamRepository) ListSummaries(ctx context.Context) ([]models.TeamSummary, error) {
	const query = `SELECT t.id, t.name, t.created_at, t.updated_at,
		(SELECT COUNT(*) FROM users u WHERE u.team_id = t.id AND u.active = TRUE) AS member_count,
		(SELECT COUNT(*) FROM equipment e WHERE e.team_id = t.id) AS equipment_count,
		(SELECT COUNT(*) FROM maintenance_requests mr WHERE mr.team_id = t.id) AS request_count
		FROM maintenance_teams t ORDER BY t.name ASC`
	var teams []models.TeamSummary
	if err := r.db.SelectContext(ctx, &teams, query); err != nil {
		return nil, fmt.Errorf("list team summaries: %w", err)
	}
	return teams, nil
}

// ListMembers returns the active users attached to a team.
func (r *TeamRepository) ListMembers(ctx context.Context, teamID string) ([]models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, role, team_id, active, last_login, created_at, updated_at FROM users WHERE team_id = $1 AND active = TRUE ORDER BY full_name ASC`
	var members []models.User
	if err := r.db.SelectContext(ctx, &members, query, teamID); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return members, nil
}

// Create inserts a new team.
func (r *TeamRepository) Create(ctx context.Context, team *models.MaintenanceTeam) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	team.UpdatedAt = now

	const query = `INSERT INTO maintenance_teams (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, team); err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// Update renames a team.
func (r *TeamRepository) Update(ctx context.Context, team *models.MaintenanceTeam) error {
	team.UpdatedAt = time.Now().UTC()
	const query = `UPDATE maintenance_teams SET name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, team); err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	return nil
}

// Delete removes a team. Members and equipment are detached, not removed.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete team: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE users SET team_id = NULL, updated_at = $2 WHERE team_id = $1`, id, now); err != nil {
		return fmt.Errorf("detach team members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE equipment SET team_id = NULL, updated_at = $2 WHERE team_id = $1`, id, now); err != nil {
		return fmt.Errorf("detach team equipment: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM maintenance_teams WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete team: %w", err)
	}
	return nil
}
