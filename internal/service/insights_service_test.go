package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	sets    int
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	m.entries = make(map[string][]byte)
	return nil
}

type fakeInsightsRequests struct {
	histories map[string][]models.RequestHistoryEntry
	counts    []dto.StatusCount
	upcoming  []dto.UpcomingMaintenance
	open      []models.MaintenanceRequest
	calls     int
}

func (f *fakeInsightsRequests) HistoryAll(_ context.Context) (map[string][]models.RequestHistoryEntry, error) {
	f.calls++
	return f.histories, nil
}

func (f *fakeInsightsRequests) HistoryByEquipment(_ context.Context, equipmentID string) ([]models.RequestHistoryEntry, error) {
	return f.histories[equipmentID], nil
}

func (f *fakeInsightsRequests) CountByStatus(_ context.Context) ([]dto.StatusCount, error) {
	return f.counts, nil
}

func (f *fakeInsightsRequests) UpcomingScheduled(_ context.Context, _, _ time.Time) ([]dto.UpcomingMaintenance, error) {
	return f.upcoming, nil
}

func (f *fakeInsightsRequests) ListOpenScheduled(_ context.Context) ([]models.MaintenanceRequest, error) {
	return f.open, nil
}

type fakeInsightsEquipment struct {
	names    map[string]string
	byID     map[string]*models.Equipment
	total    int
	scrapped int
}

func (f *fakeInsightsEquipment) FindByID(_ context.Context, id string) (*models.Equipment, error) {
	eq, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return eq, nil
}

func (f *fakeInsightsEquipment) ListAllIDs(_ context.Context) (map[string]string, error) {
	return f.names, nil
}

func (f *fakeInsightsEquipment) CountByScrapped(_ context.Context) (int, int, error) {
	return f.total, f.scrapped, nil
}

func TestInsightsService_OverviewComposesDashboard(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	overdueDate := now.Add(-3 * 24 * time.Hour)

	requests := &fakeInsightsRequests{
		histories: map[string][]models.RequestHistoryEntry{
			"eq-risky": {
				historyEntry(models.TypeCorrective, now.Add(-1*24*time.Hour)),
				historyEntry(models.TypeCorrective, now.Add(-4*24*time.Hour)),
				historyEntry(models.TypeCorrective, now.Add(-9*24*time.Hour)),
			},
			"eq-stable": {
				historyEntry(models.TypePreventive, now.Add(-20*24*time.Hour)),
			},
		},
		counts: []dto.StatusCount{
			{Status: "NEW", Count: 2},
			{Status: "REPAIRED", Count: 3},
		},
		open: []models.MaintenanceRequest{
			{ID: "req-1", Status: models.StatusNew, ScheduledDate: &overdueDate},
			{ID: "req-2", Status: models.StatusNew},
		},
	}
	equipment := &fakeInsightsEquipment{
		names: map[string]string{"eq-risky": "Old press", "eq-stable": "New lathe"},
		total: 5, scrapped: 1,
	}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewInsightsService(requests, equipment, cache, InsightsConfig{CacheTTL: time.Minute}, nil)
	svc.now = func() time.Time { return now }

	overview, hit, err := svc.Overview(context.Background())

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 5, overview.TotalEquipment)
	assert.Equal(t, 1, overview.ScrappedEquipment)
	assert.Equal(t, 5, overview.TotalRequests)
	assert.Equal(t, 1, overview.OverdueRequests)
	assert.InDelta(t, 0.25, overview.PreventiveRatio, 1e-9)
	require.Len(t, overview.HighRiskEquipment, 1)
	assert.Equal(t, "eq-risky", overview.HighRiskEquipment[0].EquipmentID)
	assert.Equal(t, "Old press", overview.HighRiskEquipment[0].EquipmentName)
}

func TestInsightsService_OverviewServesFromCache(t *testing.T) {
	requests := &fakeInsightsRequests{counts: []dto.StatusCount{{Status: "NEW", Count: 1}}}
	equipment := &fakeInsightsEquipment{names: map[string]string{}, total: 1}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewInsightsService(requests, equipment, cache, InsightsConfig{CacheTTL: time.Minute}, nil)

	_, hit, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, requests.calls)
}

func TestInsightsService_EquipmentHealthUnknownAsset(t *testing.T) {
	svc := NewInsightsService(&fakeInsightsRequests{}, &fakeInsightsEquipment{}, nil, InsightsConfig{}, nil)

	_, _, err := svc.EquipmentHealth(context.Background(), "eq-missing")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestInsightsService_HealthSummaryNamesAsset(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	requests := &fakeInsightsRequests{
		histories: map[string][]models.RequestHistoryEntry{
			"eq-1": {historyEntry(models.TypeCorrective, now.Add(-2*24*time.Hour))},
		},
	}
	equipment := &fakeInsightsEquipment{
		byID: map[string]*models.Equipment{"eq-1": {ID: "eq-1", Name: "Compressor"}},
	}
	svc := NewInsightsService(requests, equipment, nil, InsightsConfig{}, nil)
	svc.evaluator = evaluatorAt(now)

	summary, err := svc.HealthSummary(context.Background(), "eq-1")

	require.NoError(t, err)
	assert.Contains(t, summary, "Risk Level: MEDIUM")
	assert.Contains(t, summary, "Total corrective: 1")
}
