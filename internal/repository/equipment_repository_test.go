package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

func TestEquipmentFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "serial_number", "department", "location", "assigned_employee", "purchase_date", "warranty_expiry", "is_scrapped", "team_id", "created_at", "updated_at"}).
		AddRow("eq-1", "CNC Mill", "SN-100", "Production", "Hall 2", nil, nil, nil, false, "team-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, serial_number, department, location, assigned_employee, purchase_date, warranty_expiry, is_scrapped, team_id, created_at, updated_at FROM equipment WHERE id = $1 LIMIT 1")).
		WithArgs("eq-1").
		WillReturnRows(rows)

	eq, err := repo.FindByID(context.Background(), "eq-1")
	require.NoError(t, err)
	assert.Equal(t, "CNC Mill", eq.Name)
	assert.False(t, eq.IsScrapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentList_FiltersScrapped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "name", "serial_number", "department", "location", "assigned_employee", "purchase_date", "warranty_expiry", "is_scrapped", "team_id", "created_at", "updated_at", "team_name", "request_count"}).
		AddRow("eq-1", "CNC Mill", "SN-100", "Production", "Hall 2", nil, nil, nil, false, "team-1", now, now, "Mechanical", 3)
	mock.ExpectQuery(regexp.QuoteMeta("e.is_scrapped = $1")).
		WithArgs(false).
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	scrapped := false
	items, total, err := repo.List(context.Background(), models.EquipmentFilter{IsScrapped: &scrapped})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].RequestCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	mock.ExpectExec("INSERT INTO equipment").WillReturnResult(sqlmock.NewResult(1, 1))

	eq := &models.Equipment{Name: "Forklift", SerialNumber: "SN-7", Department: "Logistics"}
	err := repo.Create(context.Background(), eq)
	require.NoError(t, err)
	assert.NotEmpty(t, eq.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentCountByScrapped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	rows := sqlmock.NewRows([]string{"total", "scrapped"}).AddRow(12, 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_scrapped) AS scrapped FROM equipment")).
		WillReturnRows(rows)

	total, scrapped, err := repo.CountByScrapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Equal(t, 2, scrapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}
