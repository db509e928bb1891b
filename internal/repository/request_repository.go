package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

// RequestRepository provides database access for maintenance requests.
type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, subject, description, status, request_type, scheduled_date, duration_hours, equipment_id, team_id, technician_id, created_by_id, created_at, updated_at`

const requestDetailSelect = `SELECT mr.id, mr.subject, mr.description, mr.status, mr.request_type, mr.scheduled_date, mr.duration_hours, mr.equipment_id, mr.team_id, mr.technician_id, mr.created_by_id, mr.created_at, mr.updated_at,
	e.name AS equipment_name, t.name AS team_name, tech.full_name AS technician_name, cb.full_name AS created_by_name
	FROM maintenance_requests mr
	JOIN equipment e ON e.id = mr.equipment_id
	JOIN maintenance_teams t ON t.id = mr.team_id
	LEFT JOIN users tech ON tech.id = mr.technician_id
	JOIN users cb ON cb.id = mr.created_by_id`

// FindByID returns a request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests WHERE id = $1 LIMIT 1`
	var req models.MaintenanceRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &req, nil
}

// FindDetail returns a request joined with equipment, team and user names.
func (r *RequestRepository) FindDetail(ctx context.Context, id string) (*models.RequestDetail, error) {
	query := requestDetailSelect + ` WHERE mr.id = $1 LIMIT 1`
	var detail models.RequestDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request detail: %w", err)
	}
	return &detail, nil
}

// List returns request details filtered, scoped to the caller and paginated.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter, scope models.RequestScope) ([]models.RequestDetail, int, error) {
	baseQuery := ` FROM maintenance_requests mr
	JOIN equipment e ON e.id = mr.equipment_id
	JOIN maintenance_teams t ON t.id = mr.team_id
	LEFT JOIN users tech ON tech.id = mr.technician_id
	JOIN users cb ON cb.id = mr.created_by_id
	WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("mr.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.RequestType != nil {
		conditions = append(conditions, fmt.Sprintf("mr.request_type = $%d", len(args)+1))
		args = append(args, *filter.RequestType)
	}
	if filter.EquipmentID != nil {
		conditions = append(conditions, fmt.Sprintf("mr.equipment_id = $%d", len(args)+1))
		args = append(args, *filter.EquipmentID)
	}
	if filter.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("mr.team_id = $%d", len(args)+1))
		args = append(args, *filter.TeamID)
	}
	if filter.TechnicianID != nil {
		conditions = append(conditions, fmt.Sprintf("mr.technician_id = $%d", len(args)+1))
		args = append(args, *filter.TechnicianID)
	}
	if filter.CreatedFrom != nil {
		conditions = append(conditions, fmt.Sprintf("mr.created_at >= $%d", len(args)+1))
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		conditions = append(conditions, fmt.Sprintf("mr.created_at <= $%d", len(args)+1))
		args = append(args, *filter.CreatedTo)
	}

	switch {
	case scope.TechnicianID != nil && scope.TeamID != nil:
		conditions = append(conditions, fmt.Sprintf("(mr.technician_id = $%d OR mr.team_id = $%d)", len(args)+1, len(args)+2))
		args = append(args, *scope.TechnicianID, *scope.TeamID)
	case scope.TechnicianID != nil:
		conditions = append(conditions, fmt.Sprintf("mr.technician_id = $%d", len(args)+1))
		args = append(args, *scope.TechnicianID)
	case scope.CreatedByID != nil:
		conditions = append(conditions, fmt.Sprintf("mr.created_by_id = $%d", len(args)+1))
		args = append(args, *scope.CreatedByID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT mr.id, mr.subject, mr.description, mr.status, mr.request_type, mr.scheduled_date, mr.duration_hours, mr.equipment_id, mr.team_id, mr.technician_id, mr.created_by_id, mr.created_at, mr.updated_at,
	e.name AS equipment_name, t.name AS team_name, tech.full_name AS technician_name, cb.full_name AS created_by_name
	%s ORDER BY mr.created_at DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)

	var details []models.RequestDetail
	if err := r.db.SelectContext(ctx, &details, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*)%s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	return details, total, nil
}

// ListOpenScheduled returns open requests that carry a scheduled date. Used
// by the overdue scanner.
func (r *RequestRepository) ListOpenScheduled(ctx context.Context) ([]models.MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests WHERE status IN ('NEW', 'IN_PROGRESS') AND scheduled_date IS NOT NULL ORDER BY scheduled_date ASC`
	var requests []models.MaintenanceRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list open scheduled requests: %w", err)
	}
	return requests, nil
}

// HistoryByEquipment returns the maintenance history slice the health
// evaluator consumes, newest first.
func (r *RequestRepository) HistoryByEquipment(ctx context.Context, equipmentID string) ([]models.RequestHistoryEntry, error) {
	const query = `SELECT request_type, status, created_at, duration_hours FROM maintenance_requests WHERE equipment_id = $1 ORDER BY created_at DESC`
	var history []models.RequestHistoryEntry
	if err := r.db.SelectContext(ctx, &history, query, equipmentID); err != nil {
		return nil, fmt.Errorf("request history by equipment: %w", err)
	}
	return history, nil
}

// HistoryAll returns every equipment's maintenance history in one pass,
// keyed by equipment id.
func (r *RequestRepository) HistoryAll(ctx context.Context) (map[string][]models.RequestHistoryEntry, error) {
	const query = `SELECT equipment_id, request_type, status, created_at, duration_hours FROM maintenance_requests ORDER BY equipment_id, created_at DESC`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("request history all: %w", err)
	}
	defer rows.Close()

	histories := make(map[string][]models.RequestHistoryEntry)
	for rows.Next() {
		var equipmentID string
		var entry models.RequestHistoryEntry
		if err := rows.Scan(&equipmentID, &entry.RequestType, &entry.Status, &entry.CreatedAt, &entry.DurationHours); err != nil {
			return nil, fmt.Errorf("scan request history: %w", err)
		}
		histories[equipmentID] = append(histories[equipmentID], entry)
	}
	return histories, rows.Err()
}

// CountByStatus returns the status breakdown across all requests.
func (r *RequestRepository) CountByStatus(ctx context.Context) ([]dto.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM maintenance_requests GROUP BY status ORDER BY status`
	var counts []dto.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	return counts, nil
}

// UpcomingScheduled returns open requests scheduled inside [from, to].
func (r *RequestRepository) UpcomingScheduled(ctx context.Context, from, to time.Time) ([]dto.UpcomingMaintenance, error) {
	const query = `SELECT mr.id AS request_id, mr.subject, mr.equipment_id, e.name AS equipment_name, t.name AS team_name, mr.scheduled_date
	FROM maintenance_requests mr
	JOIN equipment e ON e.id = mr.equipment_id
	JOIN maintenance_teams t ON t.id = mr.team_id
	WHERE mr.status IN ('NEW', 'IN_PROGRESS') AND mr.scheduled_date BETWEEN $1 AND $2
	ORDER BY mr.scheduled_date ASC`
	var upcoming []dto.UpcomingMaintenance
	if err := r.db.SelectContext(ctx, &upcoming, query, from, to); err != nil {
		return nil, fmt.Errorf("upcoming scheduled requests: %w", err)
	}
	return upcoming, nil
}

func reportConditions(filter dto.ReportFilter, args *[]interface{}) []string {
	var conditions []string
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("mr.created_at >= $%d", len(*args)+1))
		*args = append(*args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("mr.created_at <= $%d", len(*args)+1))
		*args = append(*args, *filter.To)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("mr.status = $%d", len(*args)+1))
		*args = append(*args, *filter.Status)
	}
	if filter.RequestType != nil {
		conditions = append(conditions, fmt.Sprintf("mr.request_type = $%d", len(*args)+1))
		*args = append(*args, *filter.RequestType)
	}
	if filter.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("mr.team_id = $%d", len(*args)+1))
		*args = append(*args, *filter.TeamID)
	}
	return conditions
}

// ListForReport returns the request register slice a report or export covers,
// oldest first, capped at limit rows.
func (r *RequestRepository) ListForReport(ctx context.Context, filter dto.ReportFilter, limit int) ([]models.RequestDetail, error) {
	var args []interface{}
	query := requestDetailSelect
	if conditions := reportConditions(filter, &args); len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY mr.created_at ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var details []models.RequestDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list requests for report: %w", err)
	}
	return details, nil
}

// TeamPerformance aggregates throughput and repair time per team.
func (r *RequestRepository) TeamPerformance(ctx context.Context, filter dto.ReportFilter) ([]dto.TeamPerformance, error) {
	var args []interface{}
	query := `SELECT t.id AS team_id, t.name AS team_name,
	COUNT(mr.id) AS total_requests,
	COUNT(mr.id) FILTER (WHERE mr.status = 'REPAIRED') AS repaired_requests,
	COUNT(mr.id) FILTER (WHERE mr.status IN ('NEW', 'IN_PROGRESS')) AS open_requests,
	COALESCE(AVG(mr.duration_hours) FILTER (WHERE mr.status = 'REPAIRED'), 0) AS average_duration_hours
	FROM maintenance_teams t
	LEFT JOIN maintenance_requests mr ON mr.team_id = t.id`
	if conditions := reportConditions(filter, &args); len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += ` GROUP BY t.id, t.name ORDER BY repaired_requests DESC, t.name ASC`

	var rows []dto.TeamPerformance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("team performance report: %w", err)
	}
	return rows, nil
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO maintenance_requests (id, subject, description, status, request_type, scheduled_date, duration_hours, equipment_id, team_id, technician_id, created_by_id, created_at, updated_at) VALUES (:id, :subject, :description, :status, :request_type, :scheduled_date, :duration_hours, :equipment_id, :team_id, :technician_id, :created_by_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// Update updates mutable fields of a request. Status changes go through
// UpdateStatus so the cascade stays transactional.
func (r *RequestRepository) Update(ctx context.Context, req *models.MaintenanceRequest) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE maintenance_requests SET subject = :subject, description = :description, request_type = :request_type, scheduled_date = :scheduled_date, duration_hours = :duration_hours, technician_id = :technician_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

// UpdateStatus applies a status change and, when scrapEquipmentID is set,
// retires the equipment in the same transaction.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus, scrapEquipmentID *string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE maintenance_requests SET status = $2, updated_at = $3 WHERE id = $1`, id, status, now); err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if scrapEquipmentID != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE equipment SET is_scrapped = TRUE, updated_at = $2 WHERE id = $1`, *scrapEquipmentID, now); err != nil {
			return fmt.Errorf("scrap equipment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status update: %w", err)
	}
	return nil
}

// Delete removes a request.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM maintenance_requests WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}
