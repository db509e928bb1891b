package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

type insightsRequestRepository interface {
	HistoryAll(ctx context.Context) (map[string][]models.RequestHistoryEntry, error)
	HistoryByEquipment(ctx context.Context, equipmentID string) ([]models.RequestHistoryEntry, error)
	CountByStatus(ctx context.Context) ([]dto.StatusCount, error)
	UpcomingScheduled(ctx context.Context, from, to time.Time) ([]dto.UpcomingMaintenance, error)
	ListOpenScheduled(ctx context.Context) ([]models.MaintenanceRequest, error)
}

type insightsEquipmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
	ListAllIDs(ctx context.Context) (map[string]string, error)
	CountByScrapped(ctx context.Context) (total, scrapped int, err error)
}

// InsightsConfig tunes the dashboard composition.
type InsightsConfig struct {
	CacheTTL       time.Duration
	UpcomingWindow time.Duration
}

const (
	insightsOverviewKey    = "insights:overview"
	insightsEquipmentKeyFn = "insights:equipment:"
)

// InsightsService composes the maintenance dashboard: fleet risk from the
// health evaluator, status breakdowns and the upcoming schedule, cached in
// Redis between mutations.
type InsightsService struct {
	requests  insightsRequestRepository
	equipment insightsEquipmentRepository
	evaluator *HealthEvaluator
	cache     *CacheService
	config    InsightsConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewInsightsService(requests insightsRequestRepository, equipment insightsEquipmentRepository, cache *CacheService, config InsightsConfig, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.UpcomingWindow <= 0 {
		config.UpcomingWindow = 7 * 24 * time.Hour
	}
	return &InsightsService{
		requests:  requests,
		equipment: equipment,
		evaluator: NewHealthEvaluator(),
		cache:     cache,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Overview composes the admin dashboard payload. The second return value
// reports whether the payload came from cache.
func (s *InsightsService) Overview(ctx context.Context) (*dto.InsightsOverview, bool, error) {
	var cached dto.InsightsOverview
	if hit, err := s.cache.Get(ctx, insightsOverviewKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	now := s.now()

	totalEquipment, scrapped, err := s.equipment.CountByScrapped(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count equipment")
	}

	statusCounts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count requests")
	}
	totalRequests := 0
	for _, sc := range statusCounts {
		totalRequests += sc.Count
	}

	open, err := s.requests.ListOpenScheduled(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load open requests")
	}
	overdue := CountOverdue(open, now)

	histories, err := s.requests.HistoryAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request history")
	}
	names, err := s.equipment.ListAllIDs(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equipment")
	}

	preventive, corrective := 0, 0
	var highRisk []dto.EquipmentHealth
	for equipmentID, history := range histories {
		health := s.evaluator.Evaluate(equipmentID, history)
		health.EquipmentName = names[equipmentID]
		preventive += health.Metrics.TotalPreventiveRequests
		corrective += health.Metrics.TotalCorrectiveRequests
		if health.RiskLevel == dto.RiskHigh {
			highRisk = append(highRisk, *health)
		}
	}

	var preventiveRatio float64
	if preventive+corrective > 0 {
		preventiveRatio = float64(preventive) / float64(preventive+corrective)
	}

	upcoming, err := s.requests.UpcomingScheduled(ctx, now, now.Add(s.config.UpcomingWindow))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming schedule")
	}

	overview := &dto.InsightsOverview{
		TotalEquipment:      totalEquipment,
		ScrappedEquipment:   scrapped,
		TotalRequests:       totalRequests,
		OverdueRequests:     overdue,
		StatusBreakdown:     statusCounts,
		PreventiveRatio:     preventiveRatio,
		HighRiskEquipment:   highRisk,
		UpcomingMaintenance: upcoming,
		GeneratedAt:         now.UTC(),
	}

	if err := s.cache.Set(ctx, insightsOverviewKey, overview, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache insights overview", zap.Error(err))
	}
	return overview, false, nil
}

// EquipmentHealth evaluates one asset, cached per equipment.
func (s *InsightsService) EquipmentHealth(ctx context.Context, equipmentID string) (*dto.EquipmentHealth, bool, error) {
	key := insightsEquipmentKeyFn + equipmentID
	var cached dto.EquipmentHealth
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	eq, err := s.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}

	history, err := s.requests.HistoryByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment history")
	}

	health := s.evaluator.Evaluate(equipmentID, history)
	health.EquipmentName = eq.Name

	if err := s.cache.Set(ctx, key, health, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache equipment health", zap.Error(err))
	}
	return health, false, nil
}

// HealthSummary renders the plain-text digest for one asset.
func (s *InsightsService) HealthSummary(ctx context.Context, equipmentID string) (string, error) {
	health, _, err := s.EquipmentHealth(ctx, equipmentID)
	if err != nil {
		return "", err
	}
	return s.evaluator.Summary(health), nil
}
