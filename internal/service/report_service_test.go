package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

type fakeReportRequests struct {
	rows        []models.RequestDetail
	performance []dto.TeamPerformance
	histories   map[string][]models.RequestHistoryEntry
	lastLimit   int
}

func (f *fakeReportRequests) ListForReport(_ context.Context, _ dto.ReportFilter, limit int) ([]models.RequestDetail, error) {
	f.lastLimit = limit
	return f.rows, nil
}

func (f *fakeReportRequests) TeamPerformance(_ context.Context, _ dto.ReportFilter) ([]dto.TeamPerformance, error) {
	return f.performance, nil
}

func (f *fakeReportRequests) HistoryAll(_ context.Context) (map[string][]models.RequestHistoryEntry, error) {
	return f.histories, nil
}

type fakeReportEquipment struct {
	names map[string]string
}

func (f *fakeReportEquipment) ListAllIDs(_ context.Context) (map[string]string, error) {
	return f.names, nil
}

func reportRow(id string, status models.RequestStatus, reqType models.RequestType, scheduled *time.Time, duration *float64) models.RequestDetail {
	return models.RequestDetail{
		MaintenanceRequest: models.MaintenanceRequest{
			ID:            id,
			Subject:       "Service " + id,
			Status:        status,
			RequestType:   reqType,
			ScheduledDate: scheduled,
			DurationHours: duration,
			CreatedAt:     time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
		},
		EquipmentName: "Press",
		TeamName:      "Mechanics",
		CreatedByName: "Alex",
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestReportService_SummaryAggregatesRegister(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	overdueDate := now.Add(-2 * 24 * time.Hour)
	requests := &fakeReportRequests{rows: []models.RequestDetail{
		reportRow("r1", models.StatusNew, models.TypeCorrective, &overdueDate, nil),
		reportRow("r2", models.StatusInProgress, models.TypePreventive, nil, nil),
		reportRow("r3", models.StatusRepaired, models.TypeCorrective, nil, floatPtr(3)),
		reportRow("r4", models.StatusRepaired, models.TypePreventive, nil, floatPtr(5)),
	}}
	svc := NewReportService(requests, &fakeReportEquipment{}, ReportsConfig{}, nil)
	svc.now = func() time.Time { return now }

	summary, err := svc.Summary(context.Background(), dto.ReportFilter{})

	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalRequests)
	assert.Equal(t, 2, summary.OpenRequests)
	assert.Equal(t, 1, summary.OverdueRequests)
	assert.Equal(t, 2, summary.PreventiveCount)
	assert.Equal(t, 2, summary.CorrectiveCount)
	assert.InDelta(t, 0.5, summary.CompletionRate, 1e-9)
	assert.InDelta(t, 4.0, summary.AverageDurationHours, 1e-9)
	require.Len(t, summary.StatusBreakdown, 3)
	assert.Equal(t, "IN_PROGRESS", summary.StatusBreakdown[0].Status)
}

func TestReportService_HealthRankingOrdersByRisk(t *testing.T) {
	now := time.Now()
	requests := &fakeReportRequests{histories: map[string][]models.RequestHistoryEntry{
		"eq-low": {historyEntry(models.TypePreventive, now.Add(-40*24*time.Hour))},
		"eq-high": {
			historyEntry(models.TypeCorrective, now.Add(-1*24*time.Hour)),
			historyEntry(models.TypeCorrective, now.Add(-5*24*time.Hour)),
			historyEntry(models.TypeCorrective, now.Add(-9*24*time.Hour)),
		},
		"eq-medium": {historyEntry(models.TypeCorrective, now.Add(-2*24*time.Hour))},
	}}
	equipment := &fakeReportEquipment{names: map[string]string{
		"eq-low": "Lathe", "eq-high": "Press", "eq-medium": "Drill",
	}}
	svc := NewReportService(requests, equipment, ReportsConfig{}, nil)

	ranking, err := svc.HealthRanking(context.Background())

	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "eq-high", ranking[0].EquipmentID)
	assert.Equal(t, string(dto.RiskHigh), ranking[0].RiskLevel)
	assert.Equal(t, "eq-medium", ranking[1].EquipmentID)
	assert.Equal(t, "eq-low", ranking[2].EquipmentID)
}

func TestReportService_ExportCSV(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	overdueDate := now.Add(-3 * 24 * time.Hour)
	requests := &fakeReportRequests{rows: []models.RequestDetail{
		reportRow("r1", models.StatusNew, models.TypeCorrective, &overdueDate, nil),
	}}
	svc := NewReportService(requests, &fakeReportEquipment{}, ReportsConfig{MaxExport: 500}, nil)
	svc.now = func() time.Time { return now }

	result, err := svc.Export(context.Background(), dto.ReportFilter{}, FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "maintenance-requests-2025-05-01.csv", result.Filename)
	assert.Equal(t, 500, requests.lastLimit)

	content := string(result.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Subject")
	assert.Contains(t, lines[1], "Service r1")
	assert.Contains(t, lines[1], "yes (3d)")
}

func TestReportService_ExportRejectsUnknownFormat(t *testing.T) {
	svc := NewReportService(&fakeReportRequests{}, &fakeReportEquipment{}, ReportsConfig{}, nil)

	_, err := svc.Export(context.Background(), dto.ReportFilter{}, ExportFormat("docx"))

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	_, err = ParseExportFormat("html")
	assert.Error(t, err)
}
