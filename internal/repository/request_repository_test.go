package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func requestRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "subject", "description", "status", "request_type", "scheduled_date", "duration_hours", "equipment_id", "team_id", "technician_id", "created_by_id", "created_at", "updated_at"}).
		AddRow("req-1", "Pump leaking", "Oil on floor", string(models.StatusNew), string(models.TypeCorrective), now, nil, "eq-1", "team-1", nil, "u-1", now, now)
}

func TestRequestFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject, description, status, request_type, scheduled_date, duration_hours, equipment_id, team_id, technician_id, created_by_id, created_at, updated_at FROM maintenance_requests WHERE id = $1 LIMIT 1")).
		WithArgs("req-1").
		WillReturnRows(requestRows(now))

	req, err := repo.FindByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "Pump leaking", req.Subject)
	assert.Equal(t, models.StatusNew, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestList_TechnicianScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "subject", "description", "status", "request_type", "scheduled_date", "duration_hours", "equipment_id", "team_id", "technician_id", "created_by_id", "created_at", "updated_at", "equipment_name", "team_name", "technician_name", "created_by_name"}).
		AddRow("req-1", "Pump leaking", "Oil on floor", string(models.StatusNew), string(models.TypeCorrective), now, nil, "eq-1", "team-1", "tech-1", "u-1", now, now, "Pump A", "Mechanical", "Tess Tech", "Uma User")

	mock.ExpectQuery(regexp.QuoteMeta("(mr.technician_id = $1 OR mr.team_id = $2)")).
		WithArgs("tech-1", "team-1").
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("tech-1", "team-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	techID, teamID := "tech-1", "team-1"
	details, total, err := repo.List(context.Background(), models.RequestFilter{}, models.RequestScope{TechnicianID: &techID, TeamID: &teamID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, details, 1)
	assert.Equal(t, "Pump A", details[0].EquipmentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestUpdateStatus_ScrapCascade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE maintenance_requests SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("req-1", models.StatusScrap, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE equipment SET is_scrapped = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("eq-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	equipmentID := "eq-1"
	err := repo.UpdateStatus(context.Background(), "req-1", models.StatusScrap, &equipmentID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestUpdateStatus_NoCascade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE maintenance_requests SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("req-1", models.StatusRepaired, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), "req-1", models.StatusRepaired, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryByEquipment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"request_type", "status", "created_at", "duration_hours"}).
		AddRow(string(models.TypePreventive), string(models.StatusRepaired), now, 2.5).
		AddRow(string(models.TypeCorrective), string(models.StatusNew), now.Add(-24*time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT request_type, status, created_at, duration_hours FROM maintenance_requests WHERE equipment_id = $1 ORDER BY created_at DESC")).
		WithArgs("eq-1").
		WillReturnRows(rows)

	history, err := repo.HistoryByEquipment(context.Background(), "eq-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TypePreventive, history[0].RequestType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO maintenance_requests").WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.MaintenanceRequest{
		Subject:     "Belt replacement",
		Status:      models.StatusNew,
		RequestType: models.TypePreventive,
		EquipmentID: "eq-1",
		TeamID:      "team-1",
		CreatedByID: "u-1",
	}
	err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
