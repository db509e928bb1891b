package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

// EquipmentRepository provides database access for equipment assets.
type EquipmentRepository struct {
	db *sqlx.DB
}

func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

const equipmentColumns = `id, name, serial_number, department, location, assigned_employee, purchase_date, warranty_expiry, is_scrapped, team_id, created_at, updated_at`

// FindByID returns an equipment record by identifier.
func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1 LIMIT 1`
	var eq models.Equipment
	if err := r.db.GetContext(ctx, &eq, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find equipment by id: %w", err)
	}
	return &eq, nil
}

// List returns equipment summaries based on filters with total count.
func (r *EquipmentRepository) List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentSummary, int, error) {
	baseQuery := `FROM equipment e LEFT JOIN maintenance_teams t ON t.id = e.team_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("e.team_id = $%d", len(args)+1))
		args = append(args, *filter.TeamID)
	}
	if filter.IsScrapped != nil {
		conditions = append(conditions, fmt.Sprintf("e.is_scrapped = $%d", len(args)+1))
		args = append(args, *filter.IsScrapped)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.name) LIKE $%d OR LOWER(e.serial_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"department": true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
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

	listQuery := fmt.Sprintf(`SELECT e.id, e.name, e.serial_number, e.department, e.location, e.assigned_employee, e.purchase_date, e.warranty_expiry, e.is_scrapped, e.team_id, e.created_at, e.updated_at, t.name AS team_name,
		(SELECT COUNT(*) FROM maintenance_requests mr WHERE mr.equipment_id = e.id) AS request_count
		%s ORDER BY e.%s %s LIMIT %d OFFSET %d`, baseQuery, sortBy, sortOrder, pageSize, offset)

	var items []models.EquipmentSummary
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list equipment: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count equipment: %w", err)
	}

	return items, total, nil
}

// ListAllIDs returns every equipment id with its name, scrapped included.
func (r *EquipmentRepository) ListAllIDs(ctx context.Context) (map[string]string, error) {
	const query = `SELECT id, name FROM equipment`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list equipment ids: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan equipment id: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// Create inserts a new equipment record.
func (r *EquipmentRepository) Create(ctx context.Context, eq *models.Equipment) error {
	if eq.ID == "" {
		eq.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if eq.CreatedAt.IsZero() {
		eq.CreatedAt = now
	}
	eq.UpdatedAt = now

	const query = `INSERT INTO equipment (id, name, serial_number, department, location, assigned_employee, purchase_date, warranty_expiry, is_scrapped, team_id, created_at, updated_at) VALUES (:id, :name, :serial_number, :department, :location, :assigned_employee, :purchase_date, :warranty_expiry, :is_scrapped, :team_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, eq); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// Update updates mutable fields of an equipment record.
func (r *EquipmentRepository) Update(ctx context.Context, eq *models.Equipment) error {
	eq.UpdatedAt = time.Now().UTC()
	const query = `UPDATE equipment SET name = :name, serial_number = :serial_number, department = :department, location = :location, assigned_employee = :assigned_employee, purchase_date = :purchase_date, warranty_expiry = :warranty_expiry, team_id = :team_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, eq); err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return nil
}

// Delete removes an equipment record.
func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM equipment WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return nil
}

// CountByScrapped returns total and scrapped equipment counts.
func (r *EquipmentRepository) CountByScrapped(ctx context.Context) (total, scrapped int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_scrapped) AS scrapped FROM equipment`
	row := r.db.QueryRowxContext(ctx, query)
	if err := row.Scan(&total, &scrapped); err != nil {
		return 0, 0, fmt.Errorf("count equipment by scrapped: %w", err)
	}
	return total, scrapped, nil
}
